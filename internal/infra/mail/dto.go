package mail

// TemplateData alimenta a personalização dos templates de email e SMS.
type TemplateData struct {
	Name         string
	TrainerName  string
	BusinessName string
	PhoneNumber  string
	WebsiteURL   string
}

type EmailSender struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	SenderName string
}
