package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

// Client fala com a REST API da Twilio: envio de SMS e listagem de
// mensagens recebidas no nosso número.
type Client struct {
	accountSID string
	authToken  string
	fromNumber string
	httpClient *http.Client
}

func NewClient(accountSID, authToken, fromNumber string) *Client {
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SendMessage cria uma mensagem SMS. `to` precisa estar em E.164.
func (c *Client) SendMessage(ctx context.Context, to, body string) (*Message, error) {
	if c.accountSID == "" || c.authToken == "" {
		return nil, fmt.Errorf("twilio não configurado")
	}

	form := url.Values{}
	form.Set("From", c.fromNumber)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioBaseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("twilio recusou envio: %d - %s", resp.StatusCode, string(respBody))
	}

	var msg Message
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListInbound lista mensagens recebidas no nosso número desde `since`.
func (c *Client) ListInbound(ctx context.Context, since time.Time) ([]Message, error) {
	params := url.Values{}
	params.Set("To", c.fromNumber)
	params.Set("DateSent>", since.UTC().Format("2006-01-02"))
	params.Set("PageSize", "100")

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json?%s", twilioBaseURL, c.accountSID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twilio recusou listagem: %d - %s", resp.StatusCode, string(respBody))
	}

	var list messageList
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, err
	}

	// O filtro de data da Twilio tem granularidade de dia; refina aqui
	inbound := make([]Message, 0, len(list.Messages))
	for _, msg := range list.Messages {
		if msg.Direction != "inbound" {
			continue
		}
		if sent, err := msg.SentAt(); err == nil && sent.Before(since) {
			continue
		}
		inbound = append(inbound, msg)
	}
	return inbound, nil
}
