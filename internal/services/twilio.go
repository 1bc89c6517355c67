package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioWhatsApp is the WhatsApp fallback channel, used when SMS delivery
// fails
type TwilioWhatsApp struct {
	client *twilio.RestClient
	from   string // Format: "whatsapp:+14155238886"
}

// NewTwilioWhatsApp builds the WhatsApp channel from environment variables.
// Returns nil when Twilio credentials are missing so the dispatcher can skip
// the channel.
func NewTwilioWhatsApp() *TwilioWhatsApp {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_WHATSAPP_FROM")

	if accountSid == "" || authToken == "" || from == "" {
		log.Println("⚠️  Twilio credentials not set - WhatsApp fallback disabled")
		return nil
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioWhatsApp{
		client: client,
		from:   from,
	}
}

func (t *TwilioWhatsApp) Name() string {
	return "whatsapp"
}

// Send delivers a WhatsApp message via Twilio
func (t *TwilioWhatsApp) Send(ctx context.Context, phone, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(fmt.Sprintf("whatsapp:+%s", phone))
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}

	if resp.Sid != nil {
		log.Printf("✅ WhatsApp message sent! SID: %s", *resp.Sid)
	}
	return nil
}
