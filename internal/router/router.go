package router

import (
	"time"

	"fisiogest/internal/config"
	"fisiogest/internal/handler"
	"fisiogest/internal/middleware"
	"fisiogest/internal/repository"
	"fisiogest/internal/service"
	"fisiogest/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
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
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	pacienteRepo := repository.NewPacienteRepository(db)
	sesionRepo := repository.NewSesionRepository(db)
	pagoPersonalRepo := repository.NewPagoPersonalRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// Worker dispatcher — injected into services that enqueue async jobs; it is
	// also the audit sink.
	dispatcher := worker.NewDispatcher(rdb)

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	estadisticasSvc := service.NewEstadisticasService(sesionRepo, pacienteRepo)
	pacienteSvc := service.NewPacienteService(pacienteRepo, sesionRepo, estadisticasSvc)
	sesionSvc := service.NewSesionService(sesionRepo, pacienteRepo, estadisticasSvc, dispatcher, dispatcher)
	pagoPersonalSvc := service.NewPagoPersonalService(pagoPersonalRepo, rdb, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	pacientesH := handler.NewPacientesHandler(pacienteSvc, estadisticasSvc)
	sesionesH := handler.NewSesionesHandler(sesionSvc)
	pagosH := handler.NewPagosPersonalHandler(pagoPersonalSvc)
	auditoriaH := handler.NewAuditoriaHandler(auditoriaRepo)

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
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: admin, fisioterapeuta, recepcion — declared per-endpoint
		sesiones := v1.Group("/sesiones")
		{
			sesiones.POST("", middleware.RequireRole("admin", "fisioterapeuta", "recepcion"), sesionesH.Registrar)
			sesiones.PUT("/:id", middleware.RequireRole("admin", "fisioterapeuta"), sesionesH.Actualizar)
			sesiones.POST("/:id/pago", middleware.RequireRole("admin", "fisioterapeuta", "recepcion"), sesionesH.RegistrarPago)
			sesiones.POST("/:id/cancelar", middleware.RequireRole("admin", "fisioterapeuta", "recepcion"), sesionesH.Cancelar)
			sesiones.GET("/planilla-diaria", middleware.RequireRole("admin", "fisioterapeuta", "recepcion"), sesionesH.PlanillaDiaria)
			sesiones.GET("/pagos-pendientes", middleware.RequireRole("admin", "fisioterapeuta", "recepcion"), sesionesH.PagosPendientes)
		}

		pacientes := v1.Group("/pacientes")
		{
			pacientes.POST("", middleware.RequireRole("admin", "fisioterapeuta", "recepcion"), pacientesH.Crear)
			pacientes.GET("", middleware.RequireRole("admin", "fisioterapeuta", "recepcion"), pacientesH.Listar)
			pacientes.GET("/:id", middleware.RequireRole("admin", "fisioterapeuta", "recepcion"), pacientesH.Obtener)
			pacientes.GET("/:id/historial", middleware.RequireRole("admin", "fisioterapeuta"), pacientesH.Historial)
			pacientes.POST("/:id/estadisticas/refrescar", middleware.RequireRole("admin", "fisioterapeuta"), pacientesH.RefrescarEstadisticas)
		}

		// Payroll ledger — admin only
		pagos := v1.Group("/pagos-personal", middleware.RequireRole("admin"))
		{
			pagos.POST("", pagosH.Upsert)
			pagos.POST("/masivo", pagosH.UpsertMasivo)
			pagos.GET("/planilla", pagosH.PlanillaMensual)
			pagos.GET("/estadisticas", pagosH.Estadisticas)
			pagos.PUT("/:id", pagosH.Actualizar)
			pagos.DELETE("/:id", pagosH.Eliminar)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("admin"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}

		// Audit log — admin only, read side of the worker queue
		v1.GET("/auditoria", middleware.RequireRole("admin"), auditoriaH.Listar)
	}

	return r
}
