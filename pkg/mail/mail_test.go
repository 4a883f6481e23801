package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"

	"musicosbooking.pt/api/pkg/global"
	"musicosbooking.pt/api/pkg/models"
)

func TestRender_QuoteRequest(t *testing.T) {
	msg, err := Render(TemplateQuoteRequest, models.QuoteRequest{
		Name:      "Ana <b>Silva</b>",
		Email:     "ana@example.pt",
		EventType: "Casamento & Festa",
		Message:   "Olá",
	})
	require.NoError(t, err)

	assert.Equal(t, "Novo Pedido de Orçamento - Casamento & Festa", msg.Subject)
	assert.Contains(t, msg.HTML, "Ana &lt;b&gt;Silva&lt;/b&gt;")
	assert.Contains(t, msg.HTML, "<strong>Estilo Musical:</strong> Não especificado")
}

func TestRender_BookingConfirmation(t *testing.T) {
	msg, err := Render(TemplateBookingConfirmation, OrderMail{
		CustomerName:     "Ana",
		PaymentReference: "MUS-1791970200000-ABCDE",
		AmountDue:        decimal.RequireFromString("155.45"),
		Instructions:     "REFERÊNCIA: MUS-1791970200000-ABCDE",
	})
	require.NoError(t, err)

	assert.Equal(t, "Reserva Registada - MúsicosBooking.pt", msg.Subject)
	assert.Contains(t, msg.HTML, "€155.45")
	assert.Contains(t, msg.HTML, "<pre>REFERÊNCIA: MUS-1791970200000-ABCDE</pre>")
}

func TestRender_SubjectHasNoLineBreaks(t *testing.T) {
	msg, err := Render(TemplateQuoteRequest, models.QuoteRequest{EventType: "Festa\r\nBcc: x@y.pt"})
	require.NoError(t, err)
	assert.NotContains(t, msg.Subject, "\n")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render("welcome", nil)
	assert.Error(t, err)
}

func TestSMTPSender_BreakerOpensAfterFailures(t *testing.T) {
	calls := 0
	refused := errors.New("connection refused")
	sender := newSMTPSender("noreply@musicosbooking.pt", func(context.Context, *gomail.Msg) error {
		calls++
		return refused
	})
	msg := Message{To: "ana@example.pt", Subject: "s", HTML: "<p>x</p>"}

	for i := 0; i < 5; i++ {
		err := sender.Send(context.Background(), msg)
		assert.ErrorIs(t, err, refused)
	}
	err := sender.Send(context.Background(), msg)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 5, calls)
}

func TestSMTPSender_Delivers(t *testing.T) {
	var got *gomail.Msg
	sender := newSMTPSender("noreply@musicosbooking.pt", func(_ context.Context, m *gomail.Msg) error {
		got = m
		return nil
	})

	err := sender.Send(context.Background(), Message{To: "ana@example.pt", ReplyTo: "op@musicosbooking.pt", Subject: "Olá", HTML: "<p>x</p>"})
	require.NoError(t, err)
	require.NotNil(t, got)
	// subjects are stored as RFC 2047 encoded words
	assert.Equal(t, []string{"=?UTF-8?q?Ol=C3=A1?="}, got.GetGenHeader(gomail.HeaderSubject))
}

func TestNewSMTPSender_BuildsFromConfig(t *testing.T) {
	sender, err := NewSMTPSender(global.Config{
		EmailHost:     "smtp.example.pt",
		EmailPort:     587,
		EmailUser:     "noreply@musicosbooking.pt",
		EmailPassword: "secret",
	})
	require.NoError(t, err)
	require.NotNil(t, sender.deliver)
	assert.Equal(t, "noreply@musicosbooking.pt", sender.from)
}

func TestSMTPSender_RejectsBadRecipient(t *testing.T) {
	sender := newSMTPSender("noreply@musicosbooking.pt", func(context.Context, *gomail.Msg) error { return nil })
	assert.Error(t, sender.Send(context.Background(), Message{To: "not an address"}))
}
