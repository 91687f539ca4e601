package cmd

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go"

	"ticket-engine/config"
	"ticket-engine/handlers"
	_ "ticket-engine/migrations"
	"ticket-engine/monitoring"
	"ticket-engine/security"
	"ticket-engine/services"
	"ticket-engine/store"
	"ticket-engine/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize PubNub
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}

	// Initialize services
	st := store.NewApp(app)
	gateway := services.NewStandInGateway()
	intentStore := services.NewRedisIntentStore(redisClient)
	inventoryService := services.NewInventoryService(st)
	qrService := services.NewQRService(st, cfg.QRSecret)
	settlementService := services.NewSettlementService(st, inventoryService, qrService)
	intentService := services.NewIntentService(st, intentStore, inventoryService,
		settlementService, gateway, cfg.Currency, cfg.IntentTTL)
	ticketService := services.NewTicketService(st, qrService)
	refundService := services.NewRefundService(st)
	eventService := services.NewEventService(st)
	notifier := services.NewNotifier(pn)

	// Initialize handlers
	intentHandler := handlers.NewIntentHandler(intentService, notifier)
	ticketHandler := handlers.NewTicketHandler(ticketService, qrService)
	transactionHandler := handlers.NewTransactionHandler(settlementService, refundService, notifier)
	adminHandler := handlers.NewAdminHandler(eventService, inventoryService)

	limiter := security.NewRateLimiter(redisClient, cfg.PurchaseRateLimit, cfg.PurchaseRateWindow)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	if cfg.EnableMetrics {
		monitoring.StartMetricsServer(cfg.MetricsPort)
	}

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Payment intent endpoints
		e.Router.POST("/api/v1/intents", limiter.Wrap(intentHandler.CreateIntent))
		e.Router.GET("/api/v1/intents/{intentId}", intentHandler.GetIntent)
		e.Router.POST("/api/v1/intents/{intentId}/confirm", limiter.Wrap(intentHandler.ConfirmIntent))
		e.Router.POST("/api/v1/intents/{intentId}/cancel", intentHandler.CancelIntent)

		// Transaction endpoints
		e.Router.GET("/api/v1/transactions/{transactionId}", transactionHandler.GetTransaction)
		e.Router.POST("/api/v1/transactions/{transactionId}/refund", transactionHandler.RefundTransaction)

		// Ticket endpoints
		e.Router.GET("/api/v1/customers/{customerId}/tickets", ticketHandler.ListCustomerTickets)
		e.Router.POST("/api/v1/tickets/validate", ticketHandler.ValidateTicket)
		e.Router.POST("/api/v1/tickets/{ticketId}/check-in", ticketHandler.CheckInTicket)
		e.Router.POST("/api/v1/tickets/{ticketId}/transfer", ticketHandler.TransferTicket)
		e.Router.POST("/api/v1/tickets/{ticketId}/qr", ticketHandler.RegenerateQR)

		// Admin endpoints
		e.Router.POST("/api/v1/admin/events", adminHandler.CreateEvent)
		e.Router.POST("/api/v1/admin/ticket-types", adminHandler.CreateTicketType)
		e.Router.GET("/api/v1/admin/events/{eventId}/inventory", adminHandler.GetInventory)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		return err
	}
	return nil
}
