package handler

import (
	"net/http"

	"cajacontrol/internal/apierror"
	"cajacontrol/internal/dto"
	"cajacontrol/internal/middleware"
	"cajacontrol/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler {
	return &VentasHandler{svc: svc}
}

// Registrar godoc
// @Summary Ingresa una venta liquidada y la atribuye al turno
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarVentaRequest true "Venta liquidada"
// @Success 201 {object} dto.VentaResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/ventas [post]
func (h *VentasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *VentasHandler) ListarPorTurno(c *gin.Context) {
	turnoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ListarPorTurno(c.Request.Context(), turnoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar ventas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
