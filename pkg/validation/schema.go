package validation

import (
	"time"

	"github.com/shopspring/decimal"
)

type FieldType string

const (
	TypeEmail    FieldType = "email"
	TypePassword FieldType = "password"
	TypeName     FieldType = "nome"
	TypePhone    FieldType = "telefone"
	TypeNIF      FieldType = "nif"
	TypeIBAN     FieldType = "iban"
	TypeAmount   FieldType = "valor"
	TypeDate     FieldType = "data"
	TypeURL      FieldType = "url"
)

// Rule describes one field of a Schema. Min and Max are optional bounds used by
// the name (length) and amount (value) validators.
type Rule struct {
	Required bool
	Type     FieldType
	Min      *float64
	Max      *float64
}

type Schema map[string]Rule

type ObjectResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Bound is a helper for Rule.Min and Rule.Max literals.
func Bound(v float64) *float64 { return &v }

func ValidateObject(values map[string]string, schema Schema) ObjectResult {
	return ValidateObjectAt(values, schema, time.Now())
}

// ValidateObjectAt applies each rule of schema to values, using now for date checks.
func ValidateObjectAt(values map[string]string, schema Schema, now time.Time) ObjectResult {
	errs := make(map[string]string)

	for field, rule := range schema {
		value := values[field]
		if value == "" {
			if rule.Required {
				errs[field] = field + " é obrigatório"
			}
			continue
		}
		if rule.Type == "" {
			continue
		}
		if res := validateField(value, rule, now); !res.Valid {
			errs[field] = res.Error
		}
	}

	if len(errs) == 0 {
		return ObjectResult{Valid: true}
	}
	return ObjectResult{Valid: false, Errors: errs}
}

func validateField(value string, rule Rule, now time.Time) Result {
	switch rule.Type {
	case TypeEmail:
		return Email(value)
	case TypePassword:
		return Password(value)
	case TypeName:
		min, max := DefaultNameMin, DefaultNameMax
		if rule.Min != nil {
			min = int(*rule.Min)
		}
		if rule.Max != nil {
			max = int(*rule.Max)
		}
		return Name(value, min, max)
	case TypePhone:
		return Phone(value)
	case TypeNIF:
		return NIF(value)
	case TypeIBAN:
		return IBAN(value)
	case TypeAmount:
		min, max := DefaultAmountMin, DefaultAmountMax
		if rule.Min != nil {
			min = decimal.NewFromFloat(*rule.Min)
		}
		if rule.Max != nil {
			max = decimal.NewFromFloat(*rule.Max)
		}
		return Amount(value, min, max)
	case TypeDate:
		return Date(value, now)
	case TypeURL:
		return URL(value)
	default:
		return valid()
	}
}
