package accounts

import "musicosbooking.pt/api/pkg/apperr"

var (
	ErrUserNotFound       = apperr.NotFound("user_not_found", "Utilizador não encontrado")
	ErrEmailTaken         = apperr.Conflict("email_taken", "Email já registado")
	ErrNIFTaken           = apperr.Conflict("nif_taken", "NIF já registado")
	ErrInvalidCredentials = apperr.Auth("invalid_credentials", "Email ou password incorretos")
	ErrAccountInactive    = apperr.Auth("account_inactive", "Conta desativada")
	ErrTooManyAttempts    = apperr.RateLimited("too_many_attempts", "Demasiadas tentativas. Tente novamente mais tarde.")
	ErrNotAuthenticated   = apperr.Auth("not_authenticated", "Utilizador não autenticado")
	ErrForbidden          = apperr.Forbidden("forbidden", "Sem permissão para alterar este perfil")
	ErrInvalidUserType    = apperr.Validation("invalid_user_type", "Tipo de utilizador inválido").WithField("tipo")
)

// ResetMessage is returned by ResetPassword whether or not the email exists.
const ResetMessage = "Se o email existir, receberá instruções para redefinir a password"
