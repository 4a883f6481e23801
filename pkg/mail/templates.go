package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/shopspring/decimal"
)

const (
	TemplateQuoteRequest        = "quote_request"
	TemplateQuoteReceived       = "quote_received"
	TemplateBookingConfirmation = "booking_confirmation"
	TemplatePaymentReceived     = "payment_received"
)

// OrderMail is the data behind the booking and payment emails.
type OrderMail struct {
	CustomerName     string
	PaymentReference string
	AmountDue        decimal.Decimal
	PaymentMethod    string
	Instructions     string
}

var subjects = map[string]string{
	TemplateQuoteRequest:        "Novo Pedido de Orçamento - {{.EventType}}",
	TemplateQuoteReceived:       "Pedido de Orçamento Recebido - MúsicosBooking",
	TemplateBookingConfirmation: "Reserva Registada - MúsicosBooking.pt",
	TemplatePaymentReceived:     "Pagamento Confirmado",
}

var funcs = template.FuncMap{
	"euro": func(d decimal.Decimal) string { return "€" + d.StringFixed(2) },
	"orNone": func(s string) string {
		if s == "" {
			return "Não especificado"
		}
		return s
	},
}

var bodies = template.Must(template.New("mail").Funcs(funcs).Parse(`
{{define "quote_request"}}<h2>Novo Pedido de Orçamento - MúsicosBooking</h2>
<p><strong>Nome:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Telefone:</strong> {{.Phone}}</p>
<p><strong>Tipo de Evento:</strong> {{.EventType}}</p>
<p><strong>Data do Evento:</strong> {{.EventDate}}</p>
<p><strong>Localização:</strong> {{.Location}}</p>
<p><strong>Estilo Musical:</strong> {{orNone .MusicalStyle}}</p>
<p><strong>Orçamento:</strong> {{orNone .Budget}}</p>
<p><strong>Mensagem:</strong><br>{{.Message}}</p>
{{end}}
{{define "quote_received"}}<h2>Obrigado pelo seu pedido!</h2>
<p>Olá {{.Name}},</p>
<p>Recebemos o seu pedido de orçamento para {{.EventType}} em {{.EventDate}}.</p>
<p>Entraremos em contacto em breve com mais informações.</p>
<br>
<p>Atenciosamente,<br>Equipa MúsicosBooking</p>
{{end}}
{{define "booking_confirmation"}}<h2>Reserva Registada!</h2>
<p>Olá {{.CustomerName}},</p>
<p>O seu pedido foi registado com sucesso:</p>
<ul>
<li><strong>Referência:</strong> {{.PaymentReference}}</li>
<li><strong>Valor:</strong> {{euro .AmountDue}}</li>
</ul>
{{if .Instructions}}<pre>{{.Instructions}}</pre>
{{end}}<p>Aguardamos a confirmação do seu pagamento.</p>
<p>Equipa MúsicosBooking.pt</p>
{{end}}
{{define "payment_received"}}<h2>Pagamento Confirmado!</h2>
<p>Olá {{.CustomerName}},</p>
<p>Confirmamos o recebimento do seu pagamento:</p>
<ul>
<li><strong>Referência:</strong> {{.PaymentReference}}</li>
<li><strong>Valor:</strong> {{euro .AmountDue}}</li>
<li><strong>Método:</strong> {{.PaymentMethod}}</li>
</ul>
<p>A sua reserva está agora confirmada!</p>
<p>Equipa MúsicosBooking.pt</p>
{{end}}
`))

// Subjects are headers, not HTML, so they are rendered as plain text.
var subjectTemplates = func() map[string]*texttemplate.Template {
	out := make(map[string]*texttemplate.Template, len(subjects))
	for name, text := range subjects {
		out[name] = texttemplate.Must(texttemplate.New(name).Parse(text))
	}
	return out
}()

var headerBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// Render fills the named template with data and returns the message without
// a recipient. Values are HTML-escaped.
func Render(name string, data any) (Message, error) {
	subject, ok := subjectTemplates[name]
	if !ok {
		return Message{}, fmt.Errorf("mail: template %s not found", name)
	}

	var s, b bytes.Buffer
	if err := subject.Execute(&s, data); err != nil {
		return Message{}, fmt.Errorf("mail: render subject %s: %w", name, err)
	}
	if err := bodies.ExecuteTemplate(&b, name, data); err != nil {
		return Message{}, fmt.Errorf("mail: render %s: %w", name, err)
	}
	return Message{Subject: headerBreaks.Replace(s.String()), HTML: b.String()}, nil
}
