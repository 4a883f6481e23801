// Package mail renders the transactional emails and delivers them over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	gomail "github.com/wneessen/go-mail"

	"musicosbooking.pt/api/pkg/global"
)

var ErrUnavailable = errors.New("mail: SMTP temporarily unavailable")

type Message struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers through one SMTP relay. After five consecutive failures
// the breaker opens and sends fail fast for 30 seconds.
type SMTPSender struct {
	from    string
	breaker *gobreaker.CircuitBreaker[struct{}]
	deliver func(ctx context.Context, msg *gomail.Msg) error
}

func NewSMTPSender(cfg global.Config) (*SMTPSender, error) {
	client, err := gomail.NewClient(cfg.EmailHost,
		gomail.WithPort(cfg.EmailPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.EmailUser),
		gomail.WithPassword(cfg.EmailPassword),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("mail: create SMTP client: %w", err)
	}
	return newSMTPSender(cfg.EmailUser, func(ctx context.Context, m *gomail.Msg) error {
		return client.DialAndSendWithContext(ctx, m)
	}), nil
}

func newSMTPSender(from string, deliver func(ctx context.Context, msg *gomail.Msg) error) *SMTPSender {
	settings := gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("mail: circuit breaker state changed")
		},
	}
	return &SMTPSender{
		from:    from,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
		deliver: deliver,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("mail: invalid sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("mail: invalid recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return fmt.Errorf("mail: invalid reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)

	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.deliver(ctx, m)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	if err != nil {
		return fmt.Errorf("mail: send to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. It is used
// when EMAIL_HOST is unset.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail: not sent, no SMTP host configured")
	return nil
}

// NewSender picks the SMTP sender when a host is configured.
func NewSender(cfg global.Config) (Sender, error) {
	if cfg.EmailHost == "" {
		return LogSender{}, nil
	}
	return NewSMTPSender(cfg)
}
