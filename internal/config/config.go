package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
)

// Config concentra tudo que o core recebe de fora: limites de envio,
// janela, atrasos, retries e credenciais dos adapters. Nenhuma constante
// hardcoded dentro do Orchestrator.
type Config struct {
	// Orquestração
	EmailRateLimit  int           `envconfig:"EMAIL_RATE_LIMIT" default:"50"`
	SMSRateLimit    int           `envconfig:"SMS_RATE_LIMIT" default:"30"`
	RateWindow      time.Duration `envconfig:"RATE_WINDOW" default:"1h"`
	FollowUpDelay   time.Duration `envconfig:"FOLLOW_UP_DELAY" default:"48h"`
	SendPacing      time.Duration `envconfig:"SEND_PACING" default:"3s"`
	RetryMax        int           `envconfig:"RETRY_MAX" default:"3"`
	RetryBackoff    time.Duration `envconfig:"RETRY_BACKOFF" default:"2s"`
	InboundLookback time.Duration `envconfig:"INBOUND_LOOKBACK" default:"168h"`

	// LeadStore: "postgres" (padrão) ou "excel" (planilha OneDrive via Graph)
	LeadStoreBackend string `envconfig:"LEAD_STORE" default:"postgres"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	BackupDir        string `envconfig:"BACKUP_DIR" default:"backups"`

	// SMTP (envio de email)
	MailHost string `envconfig:"MAIL_HOST"`
	MailPort int    `envconfig:"MAIL_PORT" default:"587"`
	MailUser string `envconfig:"MAIL_USER"`
	MailPass string `envconfig:"MAIL_PASS"`

	// Microsoft Graph (inbox do Outlook + planilha Excel)
	GraphTenantID     string `envconfig:"GRAPH_TENANT_ID"`
	GraphClientID     string `envconfig:"GRAPH_CLIENT_ID"`
	GraphClientSecret string `envconfig:"GRAPH_CLIENT_SECRET"`
	SenderEmail       string `envconfig:"SENDER_EMAIL"`
	WorkbookID        string `envconfig:"WORKBOOK_ID"`
	WorksheetName     string `envconfig:"WORKSHEET_NAME" default:"Leads"`

	// Twilio (SMS)
	TwilioAccountSID  string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `envconfig:"TWILIO_PHONE_NUMBER"`

	// RabbitMQ (pipeline de respostas via webhook)
	RabbitUser string `envconfig:"RABBIT_USER" default:"guest"`
	RabbitPass string `envconfig:"RABBIT_PASS" default:"guest"`
	RabbitHost string `envconfig:"RABBIT_HOST" default:"localhost"`
	RabbitPort string `envconfig:"RABBIT_PORT" default:"5672"`

	// API + scheduler
	HTTPPort              string        `envconfig:"HTTP_PORT" default:"8080"`
	OutreachInterval      time.Duration `envconfig:"OUTREACH_INTERVAL" default:"4h"`
	ResponseCheckInterval time.Duration `envconfig:"RESPONSE_CHECK_INTERVAL" default:"30m"`

	// Dados do negócio (personalização dos templates)
	SenderName   string `envconfig:"SENDER_NAME" default:"Alex Huynh"`
	BusinessName string `envconfig:"BUSINESS_NAME" default:"Bay Club"`
	WebsiteURL   string `envconfig:"WEBSITE_URL" default:"https://bayclubs.com"`
	PhoneNumber  string `envconfig:"PHONE_NUMBER"`
	TemplatesDir string `envconfig:"TEMPLATES_DIR" default:"templates"`
}

// Load processa as variáveis de ambiente (carregue o .env antes, no main).
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("erro ao carregar configuração: %w", err)
	}
	return &cfg, nil
}

// ChannelLimits monta o mapa de limites por canal consumido pelo Limiter.
func (c *Config) ChannelLimits() map[entity.Channel]int {
	return map[entity.Channel]int{
		entity.ChannelEmail: c.EmailRateLimit,
		entity.ChannelSMS:   c.SMSRateLimit,
	}
}
