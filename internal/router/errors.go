package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/pkg/apperr"
	"musicosbooking.pt/api/pkg/global"
)

const internalErrorMessage = "Erro interno do servidor"

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:  http.StatusBadRequest,
	apperr.KindAuth:        http.StatusUnauthorized,
	apperr.KindForbidden:   http.StatusForbidden,
	apperr.KindNotFound:    http.StatusNotFound,
	apperr.KindConflict:    http.StatusConflict,
	apperr.KindRateLimited: http.StatusTooManyRequests,
	apperr.KindExternal:    http.StatusInternalServerError,
}

// respondError writes the error envelope for err. Causes of external and
// unknown errors are logged, never returned.
func respondError(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		log.Error().Err(err).Str("request_id", requestID(c)).Str("path", c.FullPath()).Msg("unhandled error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, global.ErrorResponse(internalErrorMessage, nil))
		return
	}

	status, ok := kindStatus[e.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if e.Kind == apperr.KindExternal {
		log.Error().Err(e.Err).Str("request_id", requestID(c)).Str("path", c.FullPath()).Msg(e.Message)
	}

	var details []global.ValidationError
	if e.Field != "" {
		details = []global.ValidationError{{Field: e.Field, Message: e.Message, Code: e.Code}}
	}
	c.AbortWithStatusJSON(status, global.ErrorResponse(e.Message, details))
}

// respondBindError turns a ShouldBind failure into a 400 listing every
// offending field.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, global.ErrorResponse("Pedido inválido", []global.ValidationError{
			{Field: "body", Message: "JSON inválido", Code: "json_parse_error"},
		}))
		return
	}

	details := make([]global.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, global.ValidationError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Code:    fe.Tag(),
		})
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, global.ErrorResponse("Dados inválidos", details))
}

var tagMessages = map[string]string{
	"required": "Campo obrigatório",
	"ptphone":  "Número de telefone português inválido",
	"nif":      "NIF inválido",
	"iban":     "IBAN inválido",
	"ptname":   "Nome inválido",
	"password": "Password deve ter entre 6 e 128 caracteres, com letras e números",
	"notpast":  "Data não pode ser no passado",
	"email":    "Email inválido",
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "min":
		return "Valor abaixo do mínimo (" + fe.Param() + ")"
	case "max":
		return "Valor acima do máximo (" + fe.Param() + ")"
	}
	return "Valor inválido"
}
