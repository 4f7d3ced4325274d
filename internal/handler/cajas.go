package handler

import (
	"net/http"
	"strconv"

	"cajacontrol/internal/apierror"
	"cajacontrol/internal/dto"
	"cajacontrol/internal/middleware"
	"cajacontrol/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajasHandler struct {
	svc         service.SesionService
	storagePath string
}

func NewCajasHandler(svc service.SesionService, storagePath string) *CajasHandler {
	return &CajasHandler{svc: svc, storagePath: storagePath}
}

// ── Cajas ─────────────────────────────────────────────────────────────────────

// CrearCaja godoc
// @Summary Registra una caja fisica
// @Tags cajas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearCajaRequest true "Datos de la caja"
// @Success 201 {object} dto.CajaResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/cajas [post]
func (h *CajasHandler) CrearCaja(c *gin.Context) {
	var req dto.CrearCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearCaja(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CajasHandler) ListarCajas(c *gin.Context) {
	resp, err := h.svc.ListarCajas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar cajas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Sesiones ──────────────────────────────────────────────────────────────────

// AbrirSesion godoc
// @Summary Abre una sesion de caja para el dia
// @Tags sesiones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirSesionRequest true "Datos de apertura"
// @Success 201 {object} dto.SesionResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/sesiones [post]
func (h *CajasHandler) AbrirSesion(c *gin.Context) {
	var req dto.AbrirSesionRequest
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

// ObtenerSesion godoc
// @Summary Reporte de una sesion con totales y efectivo esperado
// @Tags sesiones
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Success 200 {object} dto.SesionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/sesiones/{id} [get]
func (h *CajasHandler) ObtenerSesion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajasHandler) Historial(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	sesiones, total, err := h.svc.Historial(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al consultar el historial"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": sesiones,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// ── Arqueo ────────────────────────────────────────────────────────────────────

// CrearArqueo godoc
// @Summary Registra el conteo fisico y concilia la sesion
// @Tags arqueos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearArqueoRequest true "Conteo por denominacion"
// @Success 201 {object} dto.ArqueoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/arqueos [post]
func (h *CajasHandler) CrearArqueo(c *gin.Context) {
	var req dto.CrearArqueoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearArqueo(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AprobarArqueo godoc
// @Summary Aprueba un arqueo fuera de tolerancia y cierra la sesion
// @Tags arqueos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de arqueo"
// @Param body body dto.AprobarArqueoRequest true "Justificacion del aprobador"
// @Success 200 {object} dto.ArqueoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 403 {object} apierror.APIError
// @Router /v1/arqueos/{id}/aprobar [post]
func (h *CajasHandler) AprobarArqueo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.AprobarArqueoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AprobarArqueo(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajasHandler) ObtenerArqueo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObtenerArqueo(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActaArqueo godoc
// @Summary Descarga el acta PDF de un arqueo
// @Tags arqueos
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "ID de arqueo"
// @Success 200 {file} file
// @Failure 404 {object} apierror.APIError
// @Router /v1/arqueos/{id}/acta [get]
func (h *CajasHandler) ActaArqueo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	path, err := h.svc.GenerarActaArqueo(c.Request.Context(), id, h.storagePath)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.FileAttachment(path, "arqueo_"+id.String()+".pdf")
}
