package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/alexandrehuynh/client-outreach/internal/classify"
	"github.com/alexandrehuynh/client-outreach/internal/config"
	"github.com/alexandrehuynh/client-outreach/internal/entity"
	"github.com/alexandrehuynh/client-outreach/internal/infra/channel"
	"github.com/alexandrehuynh/client-outreach/internal/infra/database"
	"github.com/alexandrehuynh/client-outreach/internal/infra/integration/msgraph"
	"github.com/alexandrehuynh/client-outreach/internal/infra/integration/twilio"
	"github.com/alexandrehuynh/client-outreach/internal/infra/mail"
	"github.com/alexandrehuynh/client-outreach/internal/infra/sheets"
	"github.com/alexandrehuynh/client-outreach/internal/ratelimit"
	"github.com/alexandrehuynh/client-outreach/internal/usecase"
)

func main() {
	godotenv.Load()

	mode := flag.String("mode", "both", "new | follow-up | both | status | check-responses")
	emailOnly := flag.Bool("email-only", false, "envia apenas emails")
	smsOnly := flag.Bool("sms-only", false, "envia apenas SMS")
	dryRun := flag.Bool("dry-run", false, "roda elegibilidade/classificação sem enviar nem gravar")
	flag.Parse()

	if *emailOnly && *smsOnly {
		log.Fatal("❌ -email-only e -sms-only são mutuamente exclusivos")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// 1. LeadStore (Postgres ou planilha Excel)
	graph := msgraph.NewClient(cfg.GraphTenantID, cfg.GraphClientID, cfg.GraphClientSecret)
	store, db, err := buildLeadStore(cfg, graph)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	// 2. Canais de envio
	renderer := mail.NewRenderer(cfg.TemplatesDir, mail.TemplateData{
		TrainerName:  cfg.SenderName,
		BusinessName: cfg.BusinessName,
		PhoneNumber:  cfg.PhoneNumber,
		WebsiteURL:   cfg.WebsiteURL,
	})
	emailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.SenderEmail, cfg.SenderName)
	twilioClient := twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)

	var channels []usecase.MessageChannel
	var requested []entity.Channel
	if !*smsOnly {
		channels = append(channels, channel.NewEmailChannel(renderer, emailSender, graph, cfg.SenderEmail))
		requested = append(requested, entity.ChannelEmail)
	}
	if !*emailOnly {
		channels = append(channels, channel.NewSMSChannel(renderer, twilioClient))
		requested = append(requested, entity.ChannelSMS)
	}

	// 3. Core
	limiter := ratelimit.NewLimiter(cfg.ChannelLimits(), cfg.RateWindow, nil)
	classifier, err := classify.NewDefaultClassifier()
	if err != nil {
		log.Fatalf("❌ Falha ao montar classificador: %v", err)
	}

	orch := usecase.NewOrchestrator(store, channels, limiter, classifier, usecase.SystemClock{}, usecase.PassConfig{
		FollowUpDelay:   cfg.FollowUpDelay,
		SendPacing:      cfg.SendPacing,
		RetryMax:        cfg.RetryMax,
		RetryBackoff:    cfg.RetryBackoff,
		InboundLookback: cfg.InboundLookback,
		DryRun:          *dryRun,
	})

	ctx := context.Background()

	switch *mode {
	case "status":
		printStatus(ctx, orch)

	case "check-responses":
		summary, err := orch.CheckResponses(ctx)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		fmt.Println("\n=== RESPONSE CHECK ===")
		fmt.Printf("Unsubscribed: %d\n", summary.Unsubscribed)
		fmt.Printf("Interested:   %d\n", summary.Interested)
		fmt.Printf("Ignored:      %d\n", summary.Ignored)

	case "new", "follow-up", "both":
		if (*mode == "new" || *mode == "both") && !*dryRun {
			if _, err := orch.BackupSnapshot(ctx, cfg.BackupDir); err != nil {
				log.Fatalf("❌ %v", err)
			}
		}
		if *mode == "new" || *mode == "both" {
			runPass(ctx, orch, usecase.PassInitial, requested)
		}
		if *mode == "follow-up" || *mode == "both" {
			runPass(ctx, orch, usecase.PassFollowUp, requested)
		}

	default:
		log.Fatalf("❌ Modo desconhecido: %s", *mode)
	}
}

func buildLeadStore(cfg *config.Config, graph *msgraph.Client) (usecase.LeadStore, *sql.DB, error) {
	switch cfg.LeadStoreBackend {
	case "excel":
		return sheets.NewLeadStore(graph, cfg.SenderEmail, cfg.WorkbookID, cfg.WorksheetName), nil, nil
	case "postgres":
		db, err := database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("falha ao conectar no banco: %w", err)
		}
		return database.NewLeadRepository(db), db, nil
	default:
		return nil, nil, fmt.Errorf("LEAD_STORE desconhecido: %s", cfg.LeadStoreBackend)
	}
}

func runPass(ctx context.Context, orch *usecase.Orchestrator, kind usecase.PassKind, channels []entity.Channel) {
	summary, err := orch.RunOutreachPass(ctx, kind, channels)
	if err != nil {
		log.Fatalf("❌ Pass %s: %v", kind, err)
	}
	fmt.Printf("\n=== PASS %s ===\n", kind)
	fmt.Printf("Sent:    %d\n", summary.Sent)
	fmt.Printf("Skipped: %d\n", summary.Skipped)
	fmt.Printf("Failed:  %d\n", summary.Failed)
}

func printStatus(ctx context.Context, orch *usecase.Orchestrator) {
	report, err := orch.Status(ctx)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	fmt.Println("\n=== SYSTEM STATUS ===")
	fmt.Printf("Total Leads:       %d\n", report.TotalLeads)
	fmt.Printf("Follow-ups Pending: %d\n\n", report.FollowUpsPending)

	statuses := make([]string, 0, len(report.ByStatus))
	for status := range report.ByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Status", "Leads"})
	for _, status := range statuses {
		table.Append([]string{status, fmt.Sprintf("%d", report.ByStatus[entity.Status(status)])})
	}
	table.Render()

	quota := tablewriter.NewWriter(os.Stdout)
	quota.SetHeader([]string{"Channel", "Sent This Window", "Rate Limit"})
	for _, ch := range []entity.Channel{entity.ChannelEmail, entity.ChannelSMS} {
		usage, ok := report.ChannelUsage[ch]
		if !ok {
			continue
		}
		quota.Append([]string{string(ch), fmt.Sprintf("%d", usage.Sent), fmt.Sprintf("%d", usage.Limit)})
	}
	quota.Render()
}
