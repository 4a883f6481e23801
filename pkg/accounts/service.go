// Package accounts registers musicians and companies, and issues the bearer
// sessions the checkout endpoints authenticate with.
package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"musicosbooking.pt/api/pkg/apperr"
	"musicosbooking.pt/api/pkg/models"
	"musicosbooking.pt/api/pkg/security"
	"musicosbooking.pt/api/pkg/validation"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	DefaultResetTTL   = time.Hour
)

type Settings struct {
	SessionTTL time.Duration
	ResetTTL   time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type Service struct {
	users    UserStore
	sessions SessionStore
	limiter  *security.Limiter
	now      func() time.Time
	token    func() string
	settings Settings
}

func NewService(users UserStore, sessions SessionStore, limiter *security.Limiter, settings Settings) *Service {
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = DefaultSessionTTL
	}
	if settings.ResetTTL <= 0 {
		settings.ResetTTL = DefaultResetTTL
	}
	if settings.BcryptCost == 0 {
		settings.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:    users,
		sessions: sessions,
		limiter:  limiter,
		now:      time.Now,
		token:    uuid.NewString,
		settings: settings,
	}
}

func fieldError(field, code string, res validation.Result) error {
	return apperr.Validation(code, res.Error).WithField(field)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an active account and returns it. The password is stored
// as a bcrypt hash.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	nif := strings.ReplaceAll(strings.TrimSpace(req.NIF), " ", "")

	if res := validation.Email(email); !res.Valid {
		return nil, fieldError("email", "invalid_email", res)
	}
	if res := validation.Password(req.Password); !res.Valid {
		return nil, fieldError("password", "invalid_password", res)
	}
	if res := validation.Name(name, validation.DefaultNameMin, validation.DefaultNameMax); !res.Valid {
		return nil, fieldError("nome", "invalid_name", res)
	}
	if !req.Type.Valid() {
		return nil, ErrInvalidUserType
	}
	if phone != "" {
		if res := validation.Phone(phone); !res.Valid {
			return nil, fieldError("telefone", "invalid_phone", res)
		}
		phone = validation.NormalizePhone(phone)
	}
	if nif != "" {
		if res := validation.NIF(nif); !res.Valid {
			return nil, fieldError("nif", "invalid_nif", res)
		}
	}

	existing, err := s.users.ByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, apperr.External("Erro ao registar utilizador", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.settings.BcryptCost)
	if err != nil {
		return nil, apperr.External("Erro ao processar password", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         validation.Sanitize(name),
		Type:         req.Type,
		Phone:        phone,
		NIF:          nif,
		Active:       true,
	}
	user.SetTimestamps(s.now().UTC())

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrNIFTaken) {
			return nil, err
		}
		return nil, apperr.External("Erro ao registar utilizador", err)
	}

	log.Info().Str("uid", user.UID()).Str("tipo", string(user.Type)).Msg("accounts: user registered")
	return user, nil
}

// Login checks the credentials and opens a session. Unknown emails and wrong
// passwords get the same error.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperr.Validation("missing_credentials", "Email e password são obrigatórios")
	}

	key := "login:" + email
	decision, err := s.limiter.Allow(ctx, key)
	if err != nil {
		return nil, apperr.External("Erro ao iniciar sessão", err)
	}
	if !decision.Allowed {
		return nil, ErrTooManyAttempts
	}

	user, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		log.Warn().Str("event", "login_failed").Str("email", email).Msg("security event")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperr.External("Erro ao iniciar sessão", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn().Str("event", "login_failed").Str("email", email).Msg("security event")
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountInactive
	}

	now := s.now().UTC()
	token := s.token()
	if err := s.sessions.Create(ctx, token, user.Identity(), s.settings.SessionTTL); err != nil {
		return nil, apperr.External("Erro ao iniciar sessão", err)
	}
	if err := s.users.RecordLogin(ctx, user.UID(), now); err != nil {
		log.Error().Err(err).Str("uid", user.UID()).Msg("accounts: failed to record login")
	}
	if err := s.limiter.Reset(ctx, key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("accounts: failed to reset login attempts")
	}

	log.Info().Str("uid", user.UID()).Msg("accounts: login")
	return &models.LoginResult{
		Token:     token,
		ExpiresAt: now.Add(s.settings.SessionTTL),
		User:      user.Public(),
	}, nil
}

// Authenticate resolves a bearer token to the identity it was issued for.
func (s *Service) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, ErrNotAuthenticated
	}
	id, ok, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return models.Identity{}, apperr.External("Erro ao validar sessão", err)
	}
	if !ok {
		return models.Identity{}, ErrNotAuthenticated
	}
	return id, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return apperr.External("Erro ao terminar sessão", err)
	}
	return nil
}

// ResetPassword stores a reset token when the account exists. The caller
// always gets ResetMessage.
func (s *Service) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (string, error) {
	email := normalizeEmail(req.Email)
	if res := validation.Email(email); !res.Valid {
		return "", fieldError("email", "invalid_email", res)
	}

	user, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		log.Info().Str("event", "password_reset_unknown_email").Msg("security event")
		return ResetMessage, nil
	}
	if err != nil {
		return "", apperr.External("Erro ao processar pedido", err)
	}

	token := s.token()
	if err := s.sessions.SaveResetToken(ctx, token, user.UID(), s.settings.ResetTTL); err != nil {
		return "", apperr.External("Erro ao processar pedido", err)
	}
	log.Info().Str("event", "password_reset_requested").Str("uid", user.UID()).Msg("security event")
	return ResetMessage, nil
}

// UpdateProfile changes the caller's name and phone. The body uid must match
// the authenticated account.
func (s *Service) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	id, ok := models.IdentityFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if req.UID != "" && req.UID != id.UID {
		log.Warn().Str("event", "profile_forbidden").Str("uid", id.UID).Str("target", req.UID).Msg("security event")
		return nil, ErrForbidden
	}

	now := s.now().UTC()
	fields := map[string]any{"updated_at": now}
	if name := strings.TrimSpace(req.Name); name != "" {
		if res := validation.Name(name, validation.DefaultNameMin, validation.DefaultNameMax); !res.Valid {
			return nil, fieldError("nome", "invalid_name", res)
		}
		fields["nome"] = validation.Sanitize(name)
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		if res := validation.Phone(phone); !res.Valid {
			return nil, fieldError("telefone", "invalid_phone", res)
		}
		fields["telefone"] = validation.NormalizePhone(phone)
	}

	if err := s.users.UpdateProfile(ctx, id.UID, fields); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, apperr.External("Erro ao atualizar perfil", err)
	}
	return s.GetStatus(ctx)
}

// GetStatus returns the caller's account.
func (s *Service) GetStatus(ctx context.Context) (*models.User, error) {
	id, ok := models.IdentityFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	user, err := s.users.ByID(ctx, id.UID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperr.External("Erro ao obter utilizador", err)
	}
	return user, nil
}
