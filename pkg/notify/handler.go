// Package notify turns order events into customer emails.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/pkg/mail"
	"musicosbooking.pt/api/pkg/models"
)

var methodLabels = map[models.PaymentMethod]string{
	models.MethodBankTransfer: "Transferência bancária",
	models.MethodPayPal:       "PayPal",
	models.MethodMBWay:        "MB WAY",
}

var templates = map[models.EventType]string{
	models.EventOrderCreated: mail.TemplateBookingConfirmation,
	models.EventOrderPaid:    mail.TemplatePaymentReceived,
}

type Notifier struct {
	sender mail.Sender
}

func New(sender mail.Sender) *Notifier {
	return &Notifier{sender: sender}
}

// Handle emails the customer when an order is created or paid. Other events
// are acknowledged without sending anything.
func (n *Notifier) Handle(ctx context.Context, event models.OrderEvent) error {
	name, ok := templates[event.Type]
	if !ok {
		log.Debug().Str("type", string(event.Type)).Str("order", event.OrderID).Msg("notify: no email for event")
		return nil
	}
	if event.CustomerEmail == "" {
		log.Warn().Str("type", string(event.Type)).Str("order", event.OrderID).Msg("notify: event without customer email")
		return nil
	}

	label, ok := methodLabels[event.PaymentMethod]
	if !ok {
		label = string(event.PaymentMethod)
	}
	msg, err := mail.Render(name, mail.OrderMail{
		CustomerName:     event.CustomerName,
		PaymentReference: event.PaymentReference,
		AmountDue:        event.AmountDue,
		PaymentMethod:    label,
		Instructions:     event.Instructions,
	})
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	msg.To = event.CustomerEmail

	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: %s for order %s: %w", name, event.OrderID, err)
	}
	log.Info().Str("template", name).Str("order", event.OrderID).Msg("notify: email sent")
	return nil
}
