package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/capmatchph/capital-match-api/internal/audit"
	"github.com/capmatchph/capital-match-api/internal/config"
	domainMatching "github.com/capmatchph/capital-match-api/internal/domain/matching"
	"github.com/capmatchph/capital-match-api/internal/entitlement"
	"github.com/capmatchph/capital-match-api/internal/gateway"
	"github.com/capmatchph/capital-match-api/internal/handlers"
	infraRepo "github.com/capmatchph/capital-match-api/internal/infra/repository"
	"github.com/capmatchph/capital-match-api/internal/matchcache"
	"github.com/capmatchph/capital-match-api/internal/middleware"
	"github.com/capmatchph/capital-match-api/internal/models"
	"github.com/capmatchph/capital-match-api/internal/notify"
	ucMatching "github.com/capmatchph/capital-match-api/internal/usecase/matching"
	ucPayment "github.com/capmatchph/capital-match-api/internal/usecase/payment"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	recorder := audit.NewRecorder(audit.NewGormStore(db))

	paymentRepo := infraRepo.NewPaymentGormRepository(db)
	entitlementRepo := infraRepo.NewEntitlementGormRepository(db)
	matchingRepo := infraRepo.NewMatchingGormRepository(db)

	ledger := entitlement.NewLedger(entitlementRepo, recorder)
	notifier := notify.NewLogNotifier()
	cache := matchcache.New(cfg.RedisURL)

	// The simulated strategy is the only gateway wired today; a real
	// PSP would slot in behind the same interface.
	var gw gateway.Gateway = gateway.NewSimulated(cfg.AppBaseURL)
	if !cfg.SimulatePayments {
		log.Printf("no real payment gateway configured; keeping simulated checkout")
	}

	// ======================================================
	// USE CASES
	// ======================================================
	initiatePaymentUC := ucPayment.NewInitiatePayment(
		paymentRepo,
		gw,
		recorder,
	)

	completePaymentUC := ucPayment.NewCompletePayment(
		paymentRepo,
		ledger,
		recorder,
		notifier,
	)

	cancelSubscriptionUC := ucPayment.NewCancelSubscription(ledger)

	findMatchesUC := ucMatching.NewFindMatches(
		matchingRepo,
		ledger,
		domainMatching.RuleBased,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg, recorder, notifier)
	meHandler := handlers.NewMeHandler(db, recorder)

	paymentHandler := handlers.NewPaymentHandler(
		db,
		initiatePaymentUC,
		completePaymentUC,
		cancelSubscriptionUC,
		ledger,
		cfg.Currency,
	)

	matchHandler := handlers.NewMatchHandler(findMatchesUC, cache)
	auditLogsHandler := handlers.NewAuditLogsHandler(recorder)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PAYMENT CALLBACK (gateway-facing, no session)
		// ------------------------------
		api.POST("/payments/callback", paymentHandler.Callback)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.GET("/me/profile", meHandler.GetProfile)
			secured.PATCH("/me/profile", meHandler.UpdateProfile)

			secured.GET("/matches", matchHandler.FindMatches)

			// ------------------------------
			// PAYMENTS / SUBSCRIPTION
			// ------------------------------
			secured.POST("/payments/checkout", paymentHandler.Checkout)
			secured.GET("/payments/history", paymentHandler.History)

			secured.GET("/subscription", paymentHandler.SubscriptionStatus)
			secured.POST("/subscription/cancel", paymentHandler.CancelSubscription)

			// ------------------------------
			// ADMIN
			// ------------------------------
			admin := secured.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
