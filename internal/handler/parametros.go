package handler

import (
	"net/http"

	"cajacontrol/internal/apierror"
	"cajacontrol/internal/dto"
	"cajacontrol/internal/service"

	"github.com/gin-gonic/gin"
)

type ParametrosHandler struct{ svc service.ParametroService }

func NewParametrosHandler(svc service.ParametroService) *ParametrosHandler {
	return &ParametrosHandler{svc: svc}
}

func (h *ParametrosHandler) Obtener(c *gin.Context) {
	u := h.svc.Umbrales(c.Request.Context())
	c.JSON(http.StatusOK, dto.UmbralesResponse{
		UmbralAutorizacionMovimiento: u.UmbralAutorizacionMovimiento,
		ToleranciaArqueo:             u.ToleranciaArqueo,
	})
}

// Actualizar godoc
// @Summary Actualiza un parametro ajustable del motor
// @Tags parametros
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ActualizarParametroRequest true "Clave y nuevo valor"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Router /v1/parametros [put]
func (h *ParametrosHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarParametroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Actualizar(c.Request.Context(), req.Clave, req.Valor); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
