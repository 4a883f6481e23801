// Package quotes handles the public quote request form: it validates the
// request, emails the operator and sends the requester a confirmation.
package quotes

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/pkg/apperr"
	"musicosbooking.pt/api/pkg/mail"
	"musicosbooking.pt/api/pkg/models"
	"musicosbooking.pt/api/pkg/validation"
)

const (
	SuccessMessage    = "Orçamento enviado com sucesso"
	sendFailedMessage = "Erro ao enviar orçamento. Tente novamente."
)

var ErrMissingFields = apperr.Validation("missing_fields", "Todos os campos obrigatórios devem ser preenchidos")

type Service struct {
	sender   mail.Sender
	operator string
	now      func() time.Time
}

// NewService sends operator copies to operator (EMAIL_RECEIVE).
func NewService(sender mail.Sender, operator string) *Service {
	return &Service{sender: sender, operator: operator, now: time.Now}
}

func clean(req models.QuoteRequest) models.QuoteRequest {
	return models.QuoteRequest{
		Name:         validation.Sanitize(strings.TrimSpace(req.Name)),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		EventType:    validation.Sanitize(strings.TrimSpace(req.EventType)),
		EventDate:    strings.TrimSpace(req.EventDate),
		Location:     validation.Sanitize(strings.TrimSpace(req.Location)),
		MusicalStyle: validation.Sanitize(strings.TrimSpace(req.MusicalStyle)),
		Budget:       validation.Sanitize(strings.TrimSpace(req.Budget)),
		Message:      validation.Sanitize(strings.TrimSpace(req.Message)),
	}
}

// Submit validates req and sends both emails. The operator email is sent
// first; if it fails the requester gets nothing.
func (s *Service) Submit(ctx context.Context, req models.QuoteRequest) error {
	q := clean(req)
	if q.MissingRequired() {
		return ErrMissingFields
	}
	if res := validation.Email(q.Email); !res.Valid {
		return apperr.Validation("invalid_email", res.Error).WithField("email")
	}
	if res := validation.Phone(q.Phone); !res.Valid {
		return apperr.Validation("invalid_phone", res.Error).WithField("telefone")
	}
	if res := validation.Date(q.EventDate, s.now()); !res.Valid {
		return apperr.Validation("invalid_date", res.Error).WithField("dataEvento")
	}

	operator, err := mail.Render(mail.TemplateQuoteRequest, q)
	if err != nil {
		return apperr.External(sendFailedMessage, err)
	}
	operator.To = s.operator
	operator.ReplyTo = q.Email

	confirmation, err := mail.Render(mail.TemplateQuoteReceived, q)
	if err != nil {
		return apperr.External(sendFailedMessage, err)
	}
	confirmation.To = q.Email

	if err := s.sender.Send(ctx, operator); err != nil {
		log.Error().Err(err).Str("event_type", q.EventType).Msg("quotes: failed to email operator")
		return apperr.External(sendFailedMessage, err)
	}
	if err := s.sender.Send(ctx, confirmation); err != nil {
		log.Error().Err(err).Msg("quotes: failed to email requester")
		return apperr.External(sendFailedMessage, err)
	}

	log.Info().Str("event_type", q.EventType).Str("date", q.EventDate).Msg("quotes: request sent")
	return nil
}
