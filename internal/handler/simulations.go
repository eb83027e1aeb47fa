package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Neo52000/ma-papeterie-sub003/internal/apierror"
	"github.com/Neo52000/ma-papeterie-sub003/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub003/internal/middleware"
	"github.com/Neo52000/ma-papeterie-sub003/internal/service"
	"github.com/Neo52000/ma-papeterie-sub003/internal/worker"
)

type SimulationsHandler struct {
	svc      service.SimulationService
	apply    service.ApplyService
	rollback service.RollbackService
	queue    *worker.Dispatcher
}

func NewSimulationsHandler(
	svc service.SimulationService,
	apply service.ApplyService,
	rollback service.RollbackService,
	queue *worker.Dispatcher,
) *SimulationsHandler {
	return &SimulationsHandler{svc: svc, apply: apply, rollback: rollback, queue: queue}
}

// Run godoc
// @Summary      Lancer une simulation
// @Description  Évalue le jeu de règles sur le catalogue actif sans toucher aux prix. Avec ?async=true, la simulation part en file d'attente et répond 202.
// @Tags         simulations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        async query bool                     false "Exécution en arrière-plan"
// @Param        body  body  dto.RunSimulationRequest true  "Paramètres de simulation"
// @Success      201 {object} dto.SimulationResponse
// @Success      202
// @Failure      422 {object} apierror.APIError
// @Router       /v1/simulations [post]
func (h *SimulationsHandler) Run(c *gin.Context) {
	var req dto.RunSimulationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor := middleware.Actor(c)

	if c.Query("async") == "true" {
		payload := worker.SimulationJobPayload{
			RulesetID:   req.RulesetID,
			Category:    req.Category,
			RequestedBy: actor,
		}
		if err := h.queue.EnqueueSimulation(c.Request.Context(), payload); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}

	resp, err := h.svc.Simulate(c.Request.Context(), req, actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Consulter une simulation
// @Description  Retourne la simulation avec le détail des changements proposés.
// @Tags         simulations
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la simulation"
// @Success      200 {object} dto.SimulationResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/simulations/{id} [get]
func (h *SimulationsHandler) Get(c *gin.Context) {
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
// @Summary      Lister les simulations
// @Tags         simulations
// @Produce      json
// @Security     BearerAuth
// @Param        status     query string false "completed | applied | rolled_back"
// @Param        ruleset_id query string false "UUID du jeu de règles"
// @Param        page       query int    false "Page (défaut 1)"
// @Param        limit      query int    false "Taille de page (défaut 50)"
// @Success      200 {object} dto.SimulationListResponse
// @Router       /v1/simulations [get]
func (h *SimulationsHandler) List(c *gin.Context) {
	var filter dto.SimulationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Apply godoc
// @Summary      Appliquer une simulation
// @Description  Applique les prix simulés au catalogue en une transaction et journalise chaque changement. Les produits dont le prix a bougé entre-temps sont ignorés.
// @Tags         simulations
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la simulation"
// @Success      200 {object} dto.ApplyResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/simulations/{id}/apply [post]
func (h *SimulationsHandler) Apply(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	resp, err := h.apply.Apply(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Rollback godoc
// @Summary      Annuler une simulation appliquée
// @Description  Restaure les anciens prix depuis le journal et ajoute les entrées miroir. Le journal n'est jamais réécrit.
// @Tags         simulations
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la simulation"
// @Success      200 {object} dto.RollbackResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/simulations/{id}/rollback [post]
func (h *SimulationsHandler) Rollback(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	resp, err := h.rollback.Rollback(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReportPDF godoc
// @Summary      Rapport PDF d'une simulation
// @Description  Génère et renvoie le rapport de revue de la simulation.
// @Tags         simulations
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "UUID de la simulation"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/simulations/{id}/report.pdf [get]
func (h *SimulationsHandler) ReportPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	path, err := h.svc.ReportPDF(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.FileAttachment(path, "simulation_"+id.String()+".pdf")
}
