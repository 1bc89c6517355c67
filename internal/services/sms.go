package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// AfricasTalkingClient sends SMS through the Africa's Talking messaging API
type AfricasTalkingClient struct {
	httpClient *http.Client
	apiKey     string
	username   string
	baseURL    string
}

// NewAfricasTalkingClient builds the SMS channel from environment variables.
// Returns nil when AFRICASTALKING_API_KEY is not set so the dispatcher can
// skip the channel entirely.
func NewAfricasTalkingClient() *AfricasTalkingClient {
	apiKey := os.Getenv("AFRICASTALKING_API_KEY")
	if apiKey == "" {
		return nil
	}

	username := os.Getenv("AFRICASTALKING_USERNAME")
	if username == "" {
		username = "sandbox"
	}

	baseURL := os.Getenv("AFRICASTALKING_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.africastalking.com"
	}

	return &AfricasTalkingClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		username:   username,
		baseURL:    baseURL,
	}
}

func (c *AfricasTalkingClient) Name() string {
	return "sms"
}

// atResponse mirrors the relevant slice of the Africa's Talking response
type atResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Status     string `json:"status"`
			Cost       string `json:"cost"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// Send posts one SMS. Recipient statusCode 101 means accepted for delivery.
func (c *AfricasTalkingClient) Send(ctx context.Context, phone, message string) error {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("to", "+"+phone)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/version1/messaging", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	var body atResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to parse sms response: %w", err)
	}

	recipients := body.SMSMessageData.Recipients
	if len(recipients) == 0 {
		return fmt.Errorf("unexpected sms response: %s", body.SMSMessageData.Message)
	}
	if recipients[0].StatusCode != 101 {
		return fmt.Errorf("sms send failed: %s", recipients[0].Status)
	}

	return nil
}
