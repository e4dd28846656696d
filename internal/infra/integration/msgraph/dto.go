package msgraph

import "time"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type usedRangeResponse struct {
	Values [][]any `json:"values"`
}

type inboxResponse struct {
	Value []MailMessage `json:"value"`
}

// MailMessage é o subconjunto da mensagem Graph que interessa ao
// processamento de respostas.
type MailMessage struct {
	ID               string    `json:"id"`
	Subject          string    `json:"subject"`
	ReceivedDateTime time.Time `json:"receivedDateTime"`
	Body             struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	From struct {
		EmailAddress struct {
			Address string `json:"address"`
			Name    string `json:"name"`
		} `json:"emailAddress"`
	} `json:"from"`
}

// SendMailMessage é o payload do /sendMail.
type SendMailMessage struct {
	Subject      string          `json:"subject"`
	Body         MailBody        `json:"body"`
	ToRecipients []MailRecipient `json:"toRecipients"`
}

type MailBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type MailRecipient struct {
	EmailAddress MailAddress `json:"emailAddress"`
}

type MailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}
