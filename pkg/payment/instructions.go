package payment

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"musicosbooking.pt/api/pkg/global"
	"musicosbooking.pt/api/pkg/models"
)

const MBWayExpiryMinutes = 5

const instructionsTemplate = `========================================
INSTRUÇÕES DE PAGAMENTO - MúsicosBooking.pt
========================================

REFERÊNCIA: {{.Reference}}
VALOR: €{{money .AmountDue}}
{{- if .Fee.IsPositive}} (inclui taxa de €{{money .Fee}}){{end}}
MOEDA: {{.Bank.Currency}}

DETALHES BANCÁRIOS:
IBAN: {{.Bank.IBAN}}
BIC/SWIFT: {{.Bank.BIC}}
Beneficiário: {{.Bank.Beneficiary}}
Banco: {{.Bank.BankName}}
Morada: {{.Bank.BankAddress}}
{{- if .PayPalLink}}

PAYPAL:
Pague em: {{.PayPalLink}}
{{- end}}
{{- if .MBWayPhone}}

MB WAY:
Telemóvel: {{.MBWayPhone}}
Confirme o pedido no seu telemóvel nos próximos {{.MBWayMinutes}} minutos.
{{- end}}

⚠️  IMPORTANTE:
1. Inclua a REFERÊNCIA no assunto da transferência
2. Envie o comprovativo via plataforma
3. Validação automática em até 2 horas
4. Validade do pagamento: {{.ValidityDays}} dias

========================================
`

var instructions = template.Must(template.New("instructions").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(instructionsTemplate))

// InstructionsInput is everything printed on the instructions block.
type InstructionsInput struct {
	Reference     string
	AmountDue     decimal.Decimal
	Fee           decimal.Decimal
	Method        models.PaymentMethod
	Bank          models.BankDetails
	PayPalAccount string
	MBWayPhone    string
	ValidityDays  int
}

type instructionsView struct {
	InstructionsInput
	PayPalLink   string
	MBWayMinutes int
}

func RenderInstructions(in InstructionsInput) (string, error) {
	if in.ValidityDays <= 0 {
		in.ValidityDays = 7
	}
	view := instructionsView{InstructionsInput: in, MBWayMinutes: MBWayExpiryMinutes}
	if in.Method == models.MethodPayPal {
		view.PayPalLink = PayPalLink(in.PayPalAccount, in.AmountDue)
	}
	if in.Method != models.MethodMBWay {
		view.MBWayPhone = ""
	}

	var b strings.Builder
	if err := instructions.Execute(&b, view); err != nil {
		return "", fmt.Errorf("render payment instructions: %w", err)
	}
	return b.String(), nil
}

// PayPalLink is a paypal.me link prefilled with amount in euros.
func PayPalLink(account string, amount decimal.Decimal) string {
	if account == "" {
		return ""
	}
	return fmt.Sprintf("https://www.paypal.me/%s/%sEUR", account, amount.StringFixed(2))
}

func BankDetailsFromConfig(cfg global.Config) models.BankDetails {
	return models.BankDetails{
		IBAN:        cfg.BankIBAN,
		BIC:         cfg.BankBIC,
		Beneficiary: cfg.BankBeneficiary,
		BankName:    cfg.BankName,
		BankAddress: cfg.BankAddress,
		Currency:    cfg.BankCurrency,
	}
}
