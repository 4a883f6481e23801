package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musicosbooking.pt/api/pkg/apperr"
	"musicosbooking.pt/api/pkg/mail"
	"musicosbooking.pt/api/pkg/models"
)

type recordingSender struct {
	sent   []mail.Message
	failAt int
}

func (r *recordingSender) Send(_ context.Context, msg mail.Message) error {
	if r.failAt > 0 && len(r.sent)+1 == r.failAt {
		return errors.New("smtp down")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func newTestService(sender mail.Sender) *Service {
	svc := NewService(sender, "orcamentos@musicosbooking.pt")
	svc.now = func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) }
	return svc
}

func validQuote() models.QuoteRequest {
	return models.QuoteRequest{
		Name:      "Ana Silva",
		Email:     "ana@example.pt",
		Phone:     "912345678",
		EventType: "Casamento",
		EventDate: "2026-12-05",
		Location:  "Porto",
		Message:   "Procuramos um <script>alert(1)</script>quarteto de cordas",
	}
}

func TestSubmit_SendsBothEmails(t *testing.T) {
	sender := &recordingSender{}
	require.NoError(t, newTestService(sender).Submit(context.Background(), validQuote()))

	require.Len(t, sender.sent, 2)
	operator, confirmation := sender.sent[0], sender.sent[1]

	assert.Equal(t, "orcamentos@musicosbooking.pt", operator.To)
	assert.Equal(t, "ana@example.pt", operator.ReplyTo)
	assert.Equal(t, "Novo Pedido de Orçamento - Casamento", operator.Subject)
	assert.Contains(t, operator.HTML, "quarteto de cordas")
	assert.NotContains(t, operator.HTML, "script")

	assert.Equal(t, "ana@example.pt", confirmation.To)
	assert.Contains(t, confirmation.HTML, "Casamento em 2026-12-05")
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.QuoteRequest)
		want   error
	}{
		{"missing location", func(q *models.QuoteRequest) { q.Location = "  " }, ErrMissingFields},
		{"missing message", func(q *models.QuoteRequest) { q.Message = "" }, ErrMissingFields},
		{"bad email", func(q *models.QuoteRequest) { q.Email = "ana" }, nil},
		{"bad phone", func(q *models.QuoteRequest) { q.Phone = "123" }, nil},
		{"past date", func(q *models.QuoteRequest) { q.EventDate = "2026-10-13" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			q := validQuote()
			tt.mutate(&q)

			err := newTestService(sender).Submit(context.Background(), q)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			if tt.want != nil {
				assert.True(t, errors.Is(err, tt.want))
			}
			assert.Empty(t, sender.sent)
		})
	}
}

func TestSubmit_OptionalFieldsMayBeBlank(t *testing.T) {
	sender := &recordingSender{}
	q := validQuote()
	q.MusicalStyle, q.Budget = "", ""

	require.NoError(t, newTestService(sender).Submit(context.Background(), q))
	assert.Contains(t, sender.sent[0].HTML, "Não especificado")
}

func TestSubmit_SendFailure(t *testing.T) {
	for _, failAt := range []int{1, 2} {
		sender := &recordingSender{failAt: failAt}
		err := newTestService(sender).Submit(context.Background(), validQuote())

		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindExternal, e.Kind)
		assert.Equal(t, "Erro ao enviar orçamento. Tente novamente.", e.Message)
	}
}
