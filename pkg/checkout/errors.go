package checkout

import (
	"musicosbooking.pt/api/pkg/apperr"
	"musicosbooking.pt/api/pkg/models"
)

var (
	ErrNotAuthenticated     = apperr.Auth("not_authenticated", "Utilizador não autenticado")
	ErrMissingCustomerData  = apperr.Validation("missing_customer_data", "Email e nome são obrigatórios")
	ErrInvalidCustomerData  = apperr.Validation("invalid_customer_data", "Dados do cliente inválidos")
	ErrEmptyCart            = apperr.Validation("empty_cart", "Carrinho vazio")
	ErrInvalidItem          = models.ErrInvalidItem
	ErrInvalidPaymentMethod = apperr.Validation("invalid_payment_method", "Método de pagamento inválido")
	ErrInvalidMBWayPhone    = apperr.Validation("invalid_mbway_phone", "Número de telemóvel inválido").WithField("mbway_phone")

	ErrMissingFile     = apperr.Validation("missing_file", "Ficheiro obrigatório").WithField("file")
	ErrUnsupportedType = apperr.Validation("unsupported_type", "Tipo de ficheiro não suportado (JPEG, PNG, PDF)").WithField("file")
	ErrFileTooLarge    = apperr.Validation("file_too_large", "Ficheiro muito grande (máximo 5MB)").WithField("file")

	ErrOrderNotFound        = apperr.NotFound("order_not_found", "Pedido não encontrado")
	ErrProofNotFound        = apperr.NotFound("proof_not_found", "Comprovativo não encontrado")
	ErrForbidden            = apperr.Forbidden("order_forbidden", "Sem permissão para aceder a este pedido")
	ErrProofAlreadyUploaded = apperr.Conflict("proof_already_uploaded", "Comprovativo já enviado para este pedido")
	ErrInvalidTransition    = apperr.Conflict("invalid_transition", "Transição de estado inválida para este pedido")

	// ErrDuplicateReference is returned by OrderStore.Create when the payment
	// reference collides with an existing order.
	ErrDuplicateReference = apperr.Conflict("duplicate_reference", "Referência de pagamento duplicada")

	// ErrListingNotFound is returned by PriceBook implementations.
	ErrListingNotFound = apperr.NotFound("listing_not_found", "Anúncio não encontrado")
)
