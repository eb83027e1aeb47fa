package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Neo52000/ma-papeterie-sub003/internal/apierror"
	"github.com/Neo52000/ma-papeterie-sub003/internal/service"
)

type PriceLogsHandler struct{ svc service.PriceLogService }

func NewPriceLogsHandler(svc service.PriceLogService) *PriceLogsHandler {
	return &PriceLogsHandler{svc: svc}
}

// ListByProduct godoc
// @Summary      Historique de prix d'un produit
// @Description  Journal chronologique en ajout seul : applications et annulations, les plus récentes d'abord.
// @Tags         price-logs
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "UUID du produit"
// @Param        page  query int    false "Page (défaut 1)"
// @Param        limit query int    false "Taille de page (défaut 50)"
// @Success      200 {object} dto.PriceLogListResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id}/price-logs [get]
func (h *PriceLogsHandler) ListByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.ListByProduct(c.Request.Context(), productID, page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
