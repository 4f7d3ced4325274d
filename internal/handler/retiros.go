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

type RetirosHandler struct{ svc service.RetiroService }

func NewRetirosHandler(svc service.RetiroService) *RetirosHandler {
	return &RetirosHandler{svc: svc}
}

// Crear godoc
// @Summary Solicita un retiro de efectivo de la caja
// @Tags retiros
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearRetiroRequest true "Datos del retiro"
// @Success 201 {object} dto.RetiroResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/retiros [post]
func (h *RetirosHandler) Crear(c *gin.Context) {
	var req dto.CrearRetiroRequest
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

func (h *RetirosHandler) ListarPorSesion(c *gin.Context) {
	sesionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ListarPorSesion(c.Request.Context(), sesionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar retiros"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RetirosHandler) Autorizar(c *gin.Context) {
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

func (h *RetirosHandler) Rechazar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.RechazarRetiroRequest
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

func (h *RetirosHandler) Completar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Completar(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RetirosHandler) Cancelar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.Cancelar(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
