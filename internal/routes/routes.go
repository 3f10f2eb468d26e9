package routes

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barberflow/internal/auth"
	"github.com/BruksfildServices01/barberflow/internal/cache"
	"github.com/BruksfildServices01/barberflow/internal/config"
	"github.com/BruksfildServices01/barberflow/internal/handlers"
	infraRepo "github.com/BruksfildServices01/barberflow/internal/infra/repository"
	"github.com/BruksfildServices01/barberflow/internal/middleware"
	"github.com/BruksfildServices01/barberflow/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barberflow/internal/usecase/appointment"
)

// Deps are the process-wide singletons the API is built from. Cache may
// be nil.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Tokens *auth.Tokens
	Cache  *cache.Cache
	Audit  ucAppointment.Auditor
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// INFRA
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(d.DB)
	clock := timezone.ClockIn(d.Config.Timezone)

	// ======================================================
	// USE CASES
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(appointmentRepo, d.Audit)
	listAppointmentsUC := ucAppointment.NewListAppointments(appointmentRepo)
	listClientAppointmentsUC := ucAppointment.NewListClientAppointments(appointmentRepo)
	updateAppointmentUC := ucAppointment.NewUpdateAppointment(appointmentRepo, d.Audit)
	barberAgendaUC := ucAppointment.NewBarberAgenda(appointmentRepo, clock)
	webhookCreateUC := ucAppointment.NewWebhookCreateAppointment(appointmentRepo, d.Audit)
	webhookStatusUC := ucAppointment.NewWebhookSetStatus(appointmentRepo, d.Audit)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.DB, d.Tokens)
	userHandler := handlers.NewUserHandler(d.DB)
	barberHandler := handlers.NewBarberHandler(d.DB, barberAgendaUC)
	serviceHandler := handlers.NewServiceHandler(d.DB, d.Cache)
	productHandler := handlers.NewProductHandler(d.DB, d.Audit)
	financeHandler := handlers.NewFinanceHandler(d.DB, clock)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		listAppointmentsUC,
		listClientAppointmentsUC,
		updateAppointmentUC,
	)
	webhookHandler := handlers.NewWebhookHandler(webhookCreateUC, webhookStatusUC)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		api.GET("/barbeiros", barberHandler.List)
		api.GET("/barbeiros/:id", barberHandler.Get)
		api.GET("/barbeiros/:id/agenda", barberHandler.Agenda)

		api.GET("/servicos", serviceHandler.List)
		api.GET("/servicos/:id", serviceHandler.Get)

		// ------------------------------
		// AUTHENTICATED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(d.Tokens))
		{
			secured.GET("/me", authHandler.Me)

			secured.GET("/users", userHandler.List)
			secured.GET("/users/:id", userHandler.Get)
			secured.PUT("/users/:id", userHandler.Update)
			secured.DELETE("/users/:id", userHandler.Delete)

			secured.POST("/barbeiros", barberHandler.Create)
			secured.PUT("/barbeiros/:id", barberHandler.Update)

			secured.POST("/servicos", serviceHandler.Create)
			secured.PUT("/servicos/:id", serviceHandler.Update)
			secured.DELETE("/servicos/:id", serviceHandler.Delete)

			secured.GET("/produtos", productHandler.List)
			secured.POST("/produtos", productHandler.Create)
			secured.GET("/produtos/vendas", productHandler.ListSales)
			secured.POST("/produtos/vendas", productHandler.CreateSale)
			secured.GET("/produtos/:id", productHandler.Get)
			secured.PUT("/produtos/:id", productHandler.Update)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/agendamentos", appointmentHandler.Create)
			secured.GET("/agendamentos", appointmentHandler.List)
			secured.GET("/agendamentos/cliente/:id", appointmentHandler.ListForClient)
			secured.PATCH("/agendamentos/:id", appointmentHandler.Update)

			// ------------------------------
			// FINANCE
			// ------------------------------
			secured.GET("/financeiro/fluxo", financeHandler.CashFlow)
			secured.POST("/financeiro/movimentacoes", financeHandler.CreateEntry)
			secured.GET("/financeiro/repasses", financeHandler.ListPayouts)
			secured.POST("/financeiro/repasses", financeHandler.CreatePayout)
			secured.GET("/financeiro/repasses/:barber_id", financeHandler.ListBarberPayouts)
			secured.PATCH("/financeiro/repasses/:id", financeHandler.UpdatePayout)
			secured.GET("/financeiro/dashboard", financeHandler.Dashboard)

			secured.GET("/audit-logs", auditLogsHandler.List)
		}
	}

	// ======================================================
	// WEBHOOKS (n8n)
	// ======================================================
	hooks := r.Group("/webhooks/n8n")
	hooks.Use(
		middleware.RateLimitPerIP(rate.Limit(d.Config.WebhookRPS), d.Config.WebhookBurst),
		middleware.WebhookToken(d.Config.WebhookToken),
	)
	{
		hooks.POST("/agendamento", webhookHandler.CreateAppointment)
		hooks.PATCH("/status/:id", webhookHandler.SetStatus)
	}
}
