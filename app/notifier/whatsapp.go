package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrTwilioNotConfigured = errors.New("Twilio not configured")

const twilioAPIBase = "https://api.twilio.com"

type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	WhatsAppFrom string
}

type TwilioWhatsApp struct {
	cfg        TwilioConfig
	baseURL    string
	httpClient *http.Client
}

func NewTwilioWhatsApp(cfg TwilioConfig) *TwilioWhatsApp {
	return &TwilioWhatsApp{
		cfg:        cfg,
		baseURL:    twilioAPIBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TwilioWhatsApp) Configured() bool {
	return t.cfg.AccountSID != "" && t.cfg.AuthToken != "" && t.cfg.WhatsAppFrom != ""
}

func (t *TwilioWhatsApp) Send(ctx context.Context, to, body string) error {
	if !t.Configured() {
		return ErrTwilioNotConfigured
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("recipient phone is empty")
	}

	apiURL := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.cfg.AccountSID)

	form := url.Values{}
	form.Set("To", whatsAppAddress(to))
	form.Set("From", whatsAppAddress(t.cfg.WhatsAppFrom))
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("twilio error %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}

func whatsAppAddress(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
