package services

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Channel is one delivery mechanism for outbound text messages
type Channel interface {
	Name() string
	Send(ctx context.Context, phone, message string) error
}

// Dispatcher tries each configured channel in order until one delivers.
// SMS comes first, WhatsApp is the fallback.
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher creates a dispatcher over the given channels, skipping nils
func NewDispatcher(channels ...Channel) *Dispatcher {
	d := &Dispatcher{}
	for _, ch := range channels {
		if ch != nil {
			d.channels = append(d.channels, ch)
		}
	}
	return d
}

// NewEnvDispatcher builds the dispatcher from whichever delivery channels the
// environment configures. The concrete constructors return nil pointers for
// unconfigured channels, and a nil pointer boxed into the Channel interface
// would slip past NewDispatcher's nil filter, so each one is checked here
// before conversion.
func NewEnvDispatcher() *Dispatcher {
	d := &Dispatcher{}
	if sms := NewAfricasTalkingClient(); sms != nil {
		d.channels = append(d.channels, sms)
	}
	if whatsapp := NewTwilioWhatsApp(); whatsapp != nil {
		d.channels = append(d.channels, whatsapp)
	}
	return d
}

// Send delivers message to phone, returning the name of the channel that
// succeeded.
func (d *Dispatcher) Send(ctx context.Context, phone, message string) (string, error) {
	if d == nil || len(d.channels) == 0 {
		return "", errors.New("no delivery channel configured")
	}

	var lastErr error
	for _, ch := range d.channels {
		if err := ch.Send(ctx, phone, message); err != nil {
			log.Printf("⚠️  %s delivery to %s failed: %v", ch.Name(), phone, err)
			lastErr = err
			continue
		}
		return ch.Name(), nil
	}
	return "", fmt.Errorf("could not deliver message: %w", lastErr)
}

// SendVerificationCode delivers an OTP with the standard message copy
func (d *Dispatcher) SendVerificationCode(ctx context.Context, phone, code string) (string, error) {
	message := fmt.Sprintf("Your BiashaDrive verification code is: %s. Valid for 10 minutes. Do not share this code.", code)
	return d.Send(ctx, phone, message)
}

// SendBookingConfirmation notifies the payer that their booking went through
func (d *Dispatcher) SendBookingConfirmation(ctx context.Context, phone, expertName string, amount float64, receiptNumber string) error {
	message := fmt.Sprintf("Booking confirmed! Expert: %s, Amount: KES %.0f, Receipt: %s. Thank you for using BiashaDrive!",
		expertName, amount, receiptNumber)
	_, err := d.Send(ctx, phone, message)
	return err
}

// SendExpertNotification tells an expert about a new booking request
func (d *Dispatcher) SendExpertNotification(ctx context.Context, expertPhone, userName, service, bookingID string) error {
	message := fmt.Sprintf("New booking! Client: %s, Service: %s. Review at BiashaDrive app. Booking ID: %s",
		userName, service, bookingID)
	_, err := d.Send(ctx, expertPhone, message)
	return err
}
