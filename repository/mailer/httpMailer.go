package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/oiueei/oiueei/util/httpx"
)

type httpMailer struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
}

// NewHTTP sends mail through a transactional-mail HTTP API. With an
// empty API key it degrades to a logger so local development never
// needs mail credentials.
func NewHTTP(apiKey, baseURL, from string) Mailer {
	if apiKey == "" {
		return &logMailer{}
	}
	return &httpMailer{apiKey: apiKey, baseURL: baseURL, from: from, client: httpx.Client()}
}

func (m *httpMailer) Send(ctx context.Context, msg Message) error {
	body := map[string]any{
		"from":    map[string]string{"email": m.from},
		"subject": msg.Subject,
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": msg.To}}},
		},
		"content": []map[string]string{
			{"type": "text/plain", "value": msg.Text},
			{"type": "text/html", "value": msg.HTML},
		},
	}
	b, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/send", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail send failed: %s: %s", resp.Status, detail)
	}
	return nil
}

// logMailer just logs the message. Used when MAIL_API_KEY is unset.
type logMailer struct{}

func (l *logMailer) Send(_ context.Context, msg Message) error {
	slog.Info("mail (not sent, no api key)", "to", msg.To, "subject", msg.Subject)
	return nil
}
