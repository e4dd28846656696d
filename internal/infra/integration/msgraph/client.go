package msgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// Client fala com a Microsoft Graph API: planilha Excel no OneDrive
// (LeadStore) e inbox do Outlook (respostas de email).
type Client struct {
	tenantID     string
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewClient(tenantID, clientID, clientSecret string) *Client {
	return &Client{
		tenantID:     tenantID,
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      graphBaseURL,
		tokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured indica se as credenciais do app foram fornecidas. Quem chama
// decide o fallback (ex: EmailChannel cai para SMTP).
func (c *Client) Configured() bool {
	return c.tenantID != "" && c.clientID != "" && c.clientSecret != ""
}

// getAccessToken busca (ou reaproveita) um token via client credentials.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt.Add(-1*time.Minute)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("scope", "https://graph.microsoft.com/.default")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("falha ao obter token Graph: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token Graph recusado: %d - %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", err
	}

	c.accessToken = token.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// request executa uma chamada autenticada contra a Graph API.
func (c *Client) request(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("graph API %s %s: %d - %s", method, endpoint, resp.StatusCode, string(body))
	}

	return body, nil
}

// ReadUsedRange lê toda a área usada da worksheet (cabeçalho + leads).
// O token é app-only (client credentials), então o dono do drive vai
// explícito na URL: /me não resolve para ninguém nesse fluxo.
func (c *Client) ReadUsedRange(ctx context.Context, owner, workbookID, worksheet string) ([][]any, error) {
	endpoint := fmt.Sprintf("/users/%s/drive/items/%s/workbook/worksheets('%s')/usedRange",
		url.PathEscape(owner), workbookID, worksheet)
	body, err := c.request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var result usedRangeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return result.Values, nil
}

// PatchRange grava valores num endereço (ex: "D5") da worksheet.
func (c *Client) PatchRange(ctx context.Context, owner, workbookID, worksheet, address string, values [][]any) error {
	endpoint := fmt.Sprintf("/users/%s/drive/items/%s/workbook/worksheets('%s')/range(address='%s')",
		url.PathEscape(owner), workbookID, worksheet, address)
	_, err := c.request(ctx, http.MethodPatch, endpoint, map[string]any{"values": values})
	return err
}

// ListInboxMessages lista mensagens da inbox recebidas depois de `since`.
func (c *Client) ListInboxMessages(ctx context.Context, mailbox string, since time.Time) ([]MailMessage, error) {
	filter := url.QueryEscape(fmt.Sprintf("receivedDateTime ge %s", since.UTC().Format(time.RFC3339)))
	endpoint := fmt.Sprintf("/users/%s/mailFolders/inbox/messages?$top=50&$orderby=receivedDateTime%%20desc&$filter=%s",
		url.PathEscape(mailbox), filter)

	body, err := c.request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var result inboxResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return result.Value, nil
}

// SendMail entrega um email pelo /sendMail do remetente.
func (c *Client) SendMail(ctx context.Context, mailbox string, message SendMailMessage) error {
	endpoint := fmt.Sprintf("/users/%s/sendMail", url.PathEscape(mailbox))
	_, err := c.request(ctx, http.MethodPost, endpoint, map[string]any{
		"message":         message,
		"saveToSentItems": true,
	})
	return err
}
