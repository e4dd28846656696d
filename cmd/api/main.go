package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexandrehuynh/client-outreach/internal/classify"
	"github.com/alexandrehuynh/client-outreach/internal/config"
	"github.com/alexandrehuynh/client-outreach/internal/entity"
	"github.com/alexandrehuynh/client-outreach/internal/infra/channel"
	"github.com/alexandrehuynh/client-outreach/internal/infra/database"
	"github.com/alexandrehuynh/client-outreach/internal/infra/http/handlers"
	"github.com/alexandrehuynh/client-outreach/internal/infra/http/middleware"
	"github.com/alexandrehuynh/client-outreach/internal/infra/integration/msgraph"
	"github.com/alexandrehuynh/client-outreach/internal/infra/integration/twilio"
	"github.com/alexandrehuynh/client-outreach/internal/infra/mail"
	"github.com/alexandrehuynh/client-outreach/internal/infra/queue"
	"github.com/alexandrehuynh/client-outreach/internal/infra/worker"
	"github.com/alexandrehuynh/client-outreach/internal/ratelimit"
	"github.com/alexandrehuynh/client-outreach/internal/usecase"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitUser, cfg.RabbitPass, cfg.RabbitHost, cfg.RabbitPort)
	if err != nil {
		panic(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositório
	leadRepo := database.NewLeadRepository(db)

	// 2. Gateways e Adapters
	graph := msgraph.NewClient(cfg.GraphTenantID, cfg.GraphClientID, cfg.GraphClientSecret)
	renderer := mail.NewRenderer(cfg.TemplatesDir, mail.TemplateData{
		TrainerName:  cfg.SenderName,
		BusinessName: cfg.BusinessName,
		PhoneNumber:  cfg.PhoneNumber,
		WebsiteURL:   cfg.WebsiteURL,
	})
	emailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.SenderEmail, cfg.SenderName)
	twilioClient := twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

	emailChannel := channel.NewEmailChannel(renderer, emailSender, graph, cfg.SenderEmail)
	smsChannel := channel.NewSMSChannel(renderer, twilioClient)

	// 3. Core
	limiter := ratelimit.NewLimiter(cfg.ChannelLimits(), cfg.RateWindow, nil)
	classifier, err := classify.NewDefaultClassifier()
	if err != nil {
		log.Fatalf("❌ Falha ao montar classificador: %v", err)
	}

	orch := usecase.NewOrchestrator(
		leadRepo,
		[]usecase.MessageChannel{emailChannel, smsChannel},
		limiter,
		classifier,
		usecase.SystemClock{},
		usecase.PassConfig{
			FollowUpDelay:   cfg.FollowUpDelay,
			SendPacing:      cfg.SendPacing,
			RetryMax:        cfg.RetryMax,
			RetryBackoff:    cfg.RetryBackoff,
			InboundLookback: cfg.InboundLookback,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Worker (consome respostas vindas dos webhooks)
	inboundWorker := queue.NewWorker(rabbitMQ.Ch, orch)
	go inboundWorker.Start(ctx, queue.QueueName)

	// 5. Scheduler (passes periódicos)
	scheduler := worker.NewOutreachScheduler(
		orch,
		[]entity.Channel{entity.ChannelEmail, entity.ChannelSMS},
		cfg.OutreachInterval,
		cfg.ResponseCheckInterval,
	)
	go scheduler.Start(ctx)

	// 6. Handlers
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)
	statusHandler := handlers.NewStatusHandler(orch)
	webhookHandler := handlers.NewWebhookHandler(producer)
	leadHandler := handlers.NewLeadHandler(leadRepo)
	conversionHandler := handlers.NewConversionHandler(orch)

	// 7. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Get("/status", statusHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/leads", leadHandler.CaptureLead)
	r.Post("/leads/{leadId}/convert", conversionHandler.Handle)
	r.Post("/webhook/sms", webhookHandler.HandleSMS)
	r.Post("/webhook/email", webhookHandler.HandleEmail)

	port := ":" + cfg.HTTPPort
	log.Printf("🔥 Outreach API rodando na porta %s", port)
	http.ListenAndServe(port, r)
}
