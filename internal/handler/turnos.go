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

type TurnosHandler struct{ svc service.TurnoService }

func NewTurnosHandler(svc service.TurnoService) *TurnosHandler { return &TurnosHandler{svc: svc} }

// Abrir godoc
// @Summary Abre un turno de cajero dentro de una sesion
// @Tags turnos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirTurnoRequest true "Datos del relevo"
// @Success 201 {object} dto.TurnoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/turnos [post]
func (h *TurnosHandler) Abrir(c *gin.Context) {
	var req dto.AbrirTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TurnosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TurnosHandler) ActivoPorSesion(c *gin.Context) {
	sesionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObtenerActivoPorSesion(c.Request.Context(), sesionID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TurnosHandler) ListarPorSesion(c *gin.Context) {
	sesionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ListarPorSesion(c.Request.Context(), sesionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar turnos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Suspender godoc
// @Summary Suspende temporalmente un turno activo
// @Tags turnos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de turno"
// @Param body body dto.SuspenderTurnoRequest true "Motivo"
// @Success 200 {object} dto.TurnoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/turnos/{id}/suspender [post]
func (h *TurnosHandler) Suspender(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.SuspenderTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Suspender(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TurnosHandler) Reanudar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Reanudar(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary Cierra un turno con el conteo fisico del cajero
// @Tags turnos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de turno"
// @Param body body dto.CerrarTurnoRequest true "Conteo de cierre"
// @Success 200 {object} dto.TurnoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/turnos/{id}/cerrar [post]
func (h *TurnosHandler) Cerrar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.CerrarTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
