package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Neo52000/ma-papeterie-sub003/internal/apierror"
	"github.com/Neo52000/ma-papeterie-sub003/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub003/internal/service"
)

type RulesetsHandler struct{ svc service.RulesetService }

func NewRulesetsHandler(svc service.RulesetService) *RulesetsHandler {
	return &RulesetsHandler{svc: svc}
}

// Create godoc
// @Summary      Créer un jeu de règles
// @Description  Crée un jeu de règles de tarification, avec ses règles initiales en option. Les paramètres sont validés selon le type de règle.
// @Tags         rulesets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateRulesetRequest true "Jeu de règles"
// @Success      201 {object} dto.RulesetResponse
// @Failure      422 {object} apierror.APIError
// @Router       /v1/rulesets [post]
func (h *RulesetsHandler) Create(c *gin.Context) {
	var req dto.CreateRulesetRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Consulter un jeu de règles
// @Tags         rulesets
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID du jeu de règles"
// @Success      200 {object} dto.RulesetResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/rulesets/{id} [get]
func (h *RulesetsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      Lister les jeux de règles
// @Tags         rulesets
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.RulesetListResponse
// @Router       /v1/rulesets [get]
func (h *RulesetsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Modifier un jeu de règles
// @Description  Renomme, décrit ou active/désactive un jeu de règles. Les simulations passées ne sont pas affectées.
// @Tags         rulesets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "UUID du jeu de règles"
// @Param        body body dto.UpdateRulesetRequest true "Modifications"
// @Success      200 {object} dto.RulesetResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/rulesets/{id} [put]
func (h *RulesetsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	var req dto.UpdateRulesetRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary      Désactiver un jeu de règles
// @Description  Désactivation douce : le jeu reste consultable et référencé par les simulations passées.
// @Tags         rulesets
// @Security     BearerAuth
// @Param        id path string true "UUID du jeu de règles"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/rulesets/{id} [delete]
func (h *RulesetsHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddRule godoc
// @Summary      Ajouter une règle
// @Tags         rulesets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string          true "UUID du jeu de règles"
// @Param        body body dto.RuleRequest true "Règle"
// @Success      201 {object} dto.RuleResponse
// @Failure      422 {object} apierror.APIError
// @Router       /v1/rulesets/{id}/rules [post]
func (h *RulesetsHandler) AddRule(c *gin.Context) {
	rulesetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	var req dto.RuleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddRule(c.Request.Context(), rulesetID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateRule godoc
// @Summary      Modifier une règle
// @Tags         rulesets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string          true "UUID du jeu de règles"
// @Param        rule_id path string          true "UUID de la règle"
// @Param        body    body dto.RuleRequest true "Règle"
// @Success      200 {object} dto.RuleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/rulesets/{id}/rules/{rule_id} [put]
func (h *RulesetsHandler) UpdateRule(c *gin.Context) {
	rulesetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	ruleID, err := uuid.Parse(c.Param("rule_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de règle invalide"))
		return
	}
	var req dto.RuleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateRule(c.Request.Context(), rulesetID, ruleID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeactivateRule godoc
// @Summary      Désactiver une règle
// @Tags         rulesets
// @Security     BearerAuth
// @Param        id      path string true "UUID du jeu de règles"
// @Param        rule_id path string true "UUID de la règle"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/rulesets/{id}/rules/{rule_id} [delete]
func (h *RulesetsHandler) DeactivateRule(c *gin.Context) {
	rulesetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	ruleID, err := uuid.Parse(c.Param("rule_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de règle invalide"))
		return
	}
	if err := h.svc.DeactivateRule(c.Request.Context(), rulesetID, ruleID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
