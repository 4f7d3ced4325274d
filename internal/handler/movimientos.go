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

type MovimientosHandler struct{ svc service.MovimientoService }

func NewMovimientosHandler(svc service.MovimientoService) *MovimientosHandler {
	return &MovimientosHandler{svc: svc}
}

// Crear godoc
// @Summary Registra un ingreso o egreso manual sobre el turno
// @Tags movimientos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearMovimientoRequest true "Datos del movimiento"
// @Success 201 {object} dto.MovimientoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/movimientos [post]
func (h *MovimientosHandler) Crear(c *gin.Context) {
	var req dto.CrearMovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MovimientosHandler) ListarPorTurno(c *gin.Context) {
	turnoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ListarPorTurno(c.Request.Context(), turnoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar movimientos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Autorizar godoc
// @Summary Autoriza un movimiento pendiente sobre el umbral
// @Tags movimientos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de movimiento"
// @Success 200 {object} dto.MovimientoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 403 {object} apierror.APIError
// @Router /v1/movimientos/{id}/autorizar [post]
func (h *MovimientosHandler) Autorizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Autorizar(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MovimientosHandler) Rechazar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.RechazarMovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Rechazar(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MovimientosHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Gastos ────────────────────────────────────────────────────────────────────

// CrearGasto godoc
// @Summary Registra un gasto operativo del turno
// @Tags gastos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearGastoRequest true "Datos del gasto"
// @Success 201 {object} dto.GastoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/gastos [post]
func (h *MovimientosHandler) CrearGasto(c *gin.Context) {
	var req dto.CrearGastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearGasto(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MovimientosHandler) ListarGastosPorTurno(c *gin.Context) {
	turnoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ListarGastosPorTurno(c.Request.Context(), turnoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar gastos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
