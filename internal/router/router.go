package router

import (
	"tiketi/config"
	"tiketi/internal/handler"
	"tiketi/internal/middleware"
	"tiketi/internal/repository"
	"tiketi/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, events *service.EventPublisher) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	feeRepo := repository.NewFeeRateRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	feeSvc := service.NewFeeService(feeRepo, settingRepo, auditRepo)
	ledgerSvc := service.NewLedgerService(db, ledgerRepo, bookingRepo, withdrawalRepo, partnerRepo, auditRepo, events)
	rebuildSvc := service.NewRebuildService(db, ledgerRepo, bookingRepo, withdrawalRepo, partnerRepo, auditRepo, events)
	reportSvc := service.NewReportService(ledgerRepo, partnerRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	partnerHandler := handler.NewPartnerHandler(partnerRepo)
	ledgerHandler := handler.NewLedgerHandler(ledgerSvc, rebuildSvc)
	feeHandler := handler.NewFeeHandler(feeSvc)
	bookingHandler := handler.NewBookingHandler(bookingRepo, partnerRepo, feeSvc, ledgerSvc)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalRepo, partnerRepo, ledgerSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.AdminRequired()

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)

		ledger := api.Group("/ledger")
		ledger.Use(authMw)
		{
			ledger.GET("", ledgerHandler.List)
			ledger.GET("/:partnerId", ledgerHandler.Get)
			ledger.GET("/:partnerId/activity", ledgerHandler.Activity)
			ledger.POST("/bookings", adminMw, ledgerHandler.ApplyBookings)
			ledger.POST("/withdrawals", adminMw, ledgerHandler.ApplyWithdrawal)
			ledger.PATCH("/:partnerId/adjust", adminMw, ledgerHandler.Adjust)
			ledger.POST("/:partnerId/reset", adminMw, ledgerHandler.Reset)
			ledger.POST("/:partnerId/rebuild", adminMw, ledgerHandler.Rebuild)
			ledger.POST("/rebuild", adminMw, ledgerHandler.RebuildAll)
		}

		fees := api.Group("/fees")
		fees.Use(authMw)
		{
			fees.GET("/config", feeHandler.Config)
			fees.GET("/history", feeHandler.History)
			fees.PUT("/update", adminMw, feeHandler.Update)
		}

		partners := api.Group("/partners")
		partners.Use(authMw)
		{
			partners.GET("", partnerHandler.List)
			partners.GET("/:id", partnerHandler.Get)
			partners.POST("", adminMw, partnerHandler.Create)
		}

		bookings := api.Group("/bookings")
		bookings.Use(authMw, adminMw)
		{
			bookings.POST("", bookingHandler.Create)
			bookings.POST("/:id/status", bookingHandler.UpdateStatus)
			bookings.GET("", bookingHandler.ListByPartner)
		}

		withdrawals := api.Group("/withdrawals")
		withdrawals.Use(authMw)
		{
			withdrawals.POST("", withdrawalHandler.Create)
			withdrawals.GET("", withdrawalHandler.ListByPartner)
			withdrawals.POST("/:id/approve", adminMw, withdrawalHandler.Approve)
			withdrawals.POST("/:id/reject", adminMw, withdrawalHandler.Reject)
			withdrawals.GET("/report/debts", reportHandler.Debts)
		}
	}

	return r
}
