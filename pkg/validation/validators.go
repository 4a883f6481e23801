// Package validation holds the field validators used by the HTTP handlers and services.
// Every validator is pure and returns a Result whose Error is ready to show to the user.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func valid() Result { return Result{Valid: true} }

func invalid(message string) Result { return Result{Valid: false, Error: message} }

const (
	MaxEmailLength    = 254
	MinPasswordLength = 6
	MaxPasswordLength = 128
	DefaultNameMin    = 3
	DefaultNameMax    = 100
	MinIBANLength     = 15
	MaxIBANLength     = 34
)

var (
	DefaultAmountMin = decimal.Zero
	DefaultAmountMax = decimal.NewFromInt(1_000_000)
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	letterPattern = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
	namePattern   = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s'-]+$`)
	phoneStrip    = regexp.MustCompile(`[\s()-]`)
	nifPattern    = regexp.MustCompile(`^[0-9]{9}$`)
	ibanPattern   = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]+$`)
	whitespace    = regexp.MustCompile(`\s`)
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\+351[0-9]{9}$`),
		regexp.MustCompile(`^351[0-9]{9}$`),
		regexp.MustCompile(`^[92][0-9]{8}$`),
	}
)

func Email(email string) Result {
	if email == "" {
		return invalid("Email é obrigatório")
	}
	if !emailPattern.MatchString(email) {
		return invalid("Email inválido")
	}
	if len(email) > MaxEmailLength {
		return invalid("Email demasiado longo")
	}
	return valid()
}

func Password(password string) Result {
	if password == "" {
		return invalid("Password é obrigatória")
	}
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return invalid(fmt.Sprintf("Password deve ter pelo menos %d caracteres", MinPasswordLength))
	}
	if n > MaxPasswordLength {
		return invalid("Password demasiado longa")
	}
	if !letterPattern.MatchString(password) || !digitPattern.MatchString(password) {
		return invalid("Password deve conter letras e números")
	}
	return valid()
}

// Name checks a person or company name; min and max count runes after trimming.
func Name(name string, min, max int) Result {
	if name == "" {
		return invalid("Nome é obrigatório")
	}
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	if n < min {
		return invalid(fmt.Sprintf("Nome deve ter pelo menos %d caracteres", min))
	}
	if n > max {
		return invalid(fmt.Sprintf("Nome não pode exceder %d caracteres", max))
	}
	if !namePattern.MatchString(trimmed) {
		return invalid("Nome contém caracteres inválidos")
	}
	return valid()
}

// NormalizePhone strips the separators Phone ignores.
func NormalizePhone(phone string) string {
	return phoneStrip.ReplaceAllString(phone, "")
}

// Phone accepts Portuguese numbers: +351 or 351 followed by nine digits, or a
// nine digit number starting with 9 (mobile) or 2 (landline).
func Phone(phone string) Result {
	if phone == "" {
		return invalid("Telefone é obrigatório")
	}
	cleaned := NormalizePhone(phone)
	for _, p := range phonePatterns {
		if p.MatchString(cleaned) {
			return valid()
		}
	}
	return invalid("Número de telefone português inválido")
}

// NIF validates a Portuguese taxpayer number using its mod 11 check digit.
func NIF(nif string) Result {
	if nif == "" {
		return invalid("NIF é obrigatório")
	}
	cleaned := whitespace.ReplaceAllString(nif, "")
	if !nifPattern.MatchString(cleaned) {
		return invalid("NIF deve ter 9 dígitos")
	}

	sum := 0
	for i := 0; i < 8; i++ {
		sum += int(cleaned[i]-'0') * (9 - i)
	}
	expected := 11 - sum%11
	if expected >= 10 {
		expected = 0
	}
	if int(cleaned[8]-'0') != expected {
		return invalid("NIF inválido")
	}
	return valid()
}

// NormalizeIBAN removes spaces and upper-cases the account number.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(whitespace.ReplaceAllString(iban, ""))
}

// IBAN checks the ISO 13616 format and the mod 97 checksum.
func IBAN(iban string) Result {
	if iban == "" {
		return invalid("IBAN é obrigatório")
	}
	cleaned := NormalizeIBAN(iban)
	if !ibanPattern.MatchString(cleaned) {
		return invalid("Formato de IBAN inválido")
	}
	if len(cleaned) < MinIBANLength || len(cleaned) > MaxIBANLength {
		return invalid("Comprimento de IBAN inválido")
	}
	if ibanMod97(cleaned) != 1 {
		return invalid("IBAN inválido")
	}
	return valid()
}

// ibanMod97 expects an upper-cased alphanumeric IBAN.
func ibanMod97(iban string) int {
	rearranged := iban[4:] + iban[:4]
	rem := 0
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		if c >= '0' && c <= '9' {
			rem = (rem*10 + int(c-'0')) % 97
			continue
		}
		rem = (rem*100 + int(c-'A') + 10) % 97
	}
	return rem
}

// Amount parses a monetary value and checks it lies within [min, max].
func Amount(value string, min, max decimal.Decimal) Result {
	num, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return invalid("Valor inválido")
	}
	if num.LessThan(min) {
		return invalid(fmt.Sprintf("Valor mínimo é €%s", min.String()))
	}
	if num.GreaterThan(max) {
		return invalid(fmt.Sprintf("Valor máximo é €%s", max.String()))
	}
	return valid()
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate accepts an ISO date, a local datetime or an RFC 3339 timestamp.
func ParseDate(value string, loc *time.Location) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(value), loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date rejects values that do not parse or fall before today's midnight.
func Date(value string, now time.Time) Result {
	if value == "" {
		return invalid("Data é obrigatória")
	}
	t, ok := ParseDate(value, now.Location())
	if !ok {
		return invalid("Data inválida")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if t.Before(today) {
		return invalid("Data não pode ser no passado")
	}
	return valid()
}

func URL(value string) Result {
	if value == "" {
		return invalid("URL é obrigatória")
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return invalid("URL inválida")
	}
	return valid()
}
