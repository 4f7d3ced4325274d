package handler

import (
	"net/http"

	"cajacontrol/internal/apierror"
	"cajacontrol/internal/middleware"
	"cajacontrol/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AlertasHandler struct{ svc service.AlertaService }

func NewAlertasHandler(svc service.AlertaService) *AlertasHandler {
	return &AlertasHandler{svc: svc}
}

// EvaluarTurno godoc
// @Summary Evalua todos los umbrales de alerta sobre un turno
// @Tags alertas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de turno"
// @Success 200 {array} dto.Alerta
// @Failure 404 {object} apierror.APIError
// @Router /v1/turnos/{id}/alertas [get]
func (h *AlertasHandler) EvaluarTurno(c *gin.Context) {
	turnoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	alertas, err := h.svc.EvaluarTurno(c.Request.Context(), turnoID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("turno no encontrado"))
		return
	}
	c.JSON(http.StatusOK, alertas)
}

// Evaluar runs the monitor over every open shift on demand, the same sweep
// the background cron performs.
func (h *AlertasHandler) Evaluar(c *gin.Context) {
	alertas, err := h.svc.EvaluarActivos(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al evaluar alertas"))
		return
	}
	c.JSON(http.StatusOK, alertas)
}

func (h *AlertasHandler) MisNotificaciones(c *gin.Context) {
	actor := middleware.GetActor(c)
	soloNoLeidas := c.Query("solo_no_leidas") == "true"
	notifs, err := h.svc.ListarNotificaciones(c.Request.Context(), actor.ID, soloNoLeidas)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar notificaciones"))
		return
	}
	c.JSON(http.StatusOK, notifs)
}

func (h *AlertasHandler) MarcarLeida(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.MarcarLeida(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
