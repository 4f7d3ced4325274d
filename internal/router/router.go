package router

import (
	"context"
	"time"

	"cajacontrol/internal/config"
	"cajacontrol/internal/dto"
	"cajacontrol/internal/handler"
	"cajacontrol/internal/middleware"
	"cajacontrol/internal/model"
	"cajacontrol/internal/repository"
	"cajacontrol/internal/service"
	"cajacontrol/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// New wires all dependencies and returns the configured Gin engine plus the
// alert monitor, which the caller hands to the background sweep.
// Dependency graph: handler -> service -> repository -> db/redis.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, *service.AlertaMonitor) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	turnoRepo := repository.NewTurnoRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	retiroRepo := repository.NewRetiroRepository(db)
	arqueoRepo := repository.NewArqueoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	notifRepo := repository.NewNotificacionRepository(db)
	parametroRepo := repository.NewParametroRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	calculos := service.NewCalculosCaja(ventaRepo, movimientoRepo, retiroRepo)
	parametroSvc := service.NewParametroService(parametroRepo,
		time.Duration(cfg.ParametroCacheTTLSec)*time.Second)

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	sesionSvc := service.NewSesionService(cajaRepo, arqueoRepo, turnoRepo, parametroSvc)
	turnoSvc := service.NewTurnoService(turnoRepo, cajaRepo, calculos)
	movimientoSvc := service.NewMovimientoService(movimientoRepo, turnoRepo, cajaRepo, notifRepo, calculos, parametroSvc)
	retiroSvc := service.NewRetiroService(retiroRepo, turnoRepo, cajaRepo, calculos)
	ventaSvc := service.NewVentaService(ventaRepo, turnoRepo, cajaRepo)
	alertaSvc := service.NewAlertaService(turnoRepo, notifRepo, calculos, parametroSvc)

	// Critical findings fan out to the supervision inbox via the worker pool.
	if cfg.AlertasEmail != "" {
		dispatcher := worker.NewDispatcher(rdb)
		alertaSvc.OnAlerta(func(a dto.Alerta) {
			if a.Severidad != model.SeveridadCritical {
				return
			}
			payload := worker.NotificacionJobPayload{
				ToEmail:   cfg.AlertasEmail,
				Tipo:      a.Tipo,
				Severidad: a.Severidad,
				TurnoID:   a.TurnoID,
				Mensaje:   a.Mensaje,
			}
			if err := dispatcher.EnqueueNotificacion(context.Background(), payload); err != nil {
				log.Error().Err(err).Str("tipo", a.Tipo).Msg("no se pudo encolar la notificación")
			}
		})
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	cajasH := handler.NewCajasHandler(sesionSvc, cfg.PDFStoragePath)
	turnosH := handler.NewTurnosHandler(turnoSvc)
	movimientosH := handler.NewMovimientosHandler(movimientoSvc)
	retirosH := handler.NewRetirosHandler(retiroSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	alertasH := handler.NewAlertasHandler(alertaSvc)
	parametrosH := handler.NewParametrosHandler(parametroSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	todos := middleware.RequireRole(model.RolCajero, model.RolSupervisor, model.RolAdministrador)
	supervision := middleware.RequireRole(model.RolSupervisor, model.RolAdministrador)
	admin := middleware.RequireRole(model.RolAdministrador)

	v1 := r.Group("/v1", jwtMW)
	{
		cajas := v1.Group("/cajas")
		{
			cajas.GET("", todos, cajasH.ListarCajas)
			cajas.POST("", admin, cajasH.CrearCaja)
		}

		sesiones := v1.Group("/sesiones")
		{
			sesiones.POST("", todos, cajasH.AbrirSesion)
			sesiones.GET("/historial", supervision, cajasH.Historial)
			sesiones.GET("/:id", todos, cajasH.ObtenerSesion)
			sesiones.GET("/:id/turnos", todos, turnosH.ListarPorSesion)
			sesiones.GET("/:id/turno-activo", todos, turnosH.ActivoPorSesion)
			sesiones.GET("/:id/retiros", todos, retirosH.ListarPorSesion)
		}

		turnos := v1.Group("/turnos")
		{
			turnos.POST("", todos, turnosH.Abrir)
			turnos.GET("/:id", todos, turnosH.Obtener)
			turnos.POST("/:id/suspender", todos, turnosH.Suspender)
			turnos.POST("/:id/reanudar", todos, turnosH.Reanudar)
			turnos.POST("/:id/cerrar", todos, turnosH.Cerrar)
			turnos.GET("/:id/alertas", supervision, alertasH.EvaluarTurno)
			turnos.GET("/:id/movimientos", todos, movimientosH.ListarPorTurno)
			turnos.GET("/:id/gastos", todos, movimientosH.ListarGastosPorTurno)
			turnos.GET("/:id/ventas", todos, ventasH.ListarPorTurno)
		}

		movimientos := v1.Group("/movimientos")
		{
			movimientos.POST("", todos, movimientosH.Crear)
			movimientos.POST("/:id/autorizar", supervision, movimientosH.Autorizar)
			movimientos.POST("/:id/rechazar", supervision, movimientosH.Rechazar)
			movimientos.DELETE("/:id", supervision, movimientosH.Eliminar)
		}

		v1.POST("/gastos", todos, movimientosH.CrearGasto)

		retiros := v1.Group("/retiros")
		{
			retiros.POST("", todos, retirosH.Crear)
			retiros.POST("/:id/autorizar", supervision, retirosH.Autorizar)
			retiros.POST("/:id/rechazar", supervision, retirosH.Rechazar)
			retiros.POST("/:id/completar", todos, retirosH.Completar)
			retiros.DELETE("/:id", todos, retirosH.Cancelar)
		}

		arqueos := v1.Group("/arqueos")
		{
			arqueos.POST("", todos, cajasH.CrearArqueo)
			arqueos.GET("/:id", todos, cajasH.ObtenerArqueo)
			arqueos.POST("/:id/aprobar", supervision, cajasH.AprobarArqueo)
			arqueos.GET("/:id/acta", supervision, cajasH.ActaArqueo)
		}

		v1.POST("/ventas", todos, ventasH.Registrar)

		v1.GET("/alertas", supervision, alertasH.Evaluar)

		notificaciones := v1.Group("/notificaciones")
		{
			notificaciones.GET("", todos, alertasH.MisNotificaciones)
			notificaciones.PATCH("/:id/leida", todos, alertasH.MarcarLeida)
		}

		parametros := v1.Group("/parametros")
		{
			parametros.GET("", supervision, parametrosH.Obtener)
			parametros.PUT("", admin, parametrosH.Actualizar)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, alertaSvc
}
