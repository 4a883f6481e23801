package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		err   string
	}{
		{"a@b.pt", true, ""},
		{"", false, "Email é obrigatório"},
		{"ana@localhost", false, "Email inválido"},
		{"ana silva@b.pt", false, "Email inválido"},
		{strings.Repeat("a", 250) + "@b.pt", false, "Email demasiado longo"},
	}
	for _, tt := range tests {
		res := Email(tt.in)
		assert.Equal(t, tt.valid, res.Valid, tt.in)
		assert.Equal(t, tt.err, res.Error, tt.in)
	}
}

func TestPassword_Boundaries(t *testing.T) {
	assert.True(t, Password("abc123").Valid)
	assert.False(t, Password("abc12").Valid)
	assert.True(t, Password("a1"+strings.Repeat("x", 126)).Valid)

	res := Password("a1" + strings.Repeat("x", 127))
	assert.False(t, res.Valid)
	assert.Equal(t, "Password demasiado longa", res.Error)

	assert.Equal(t, "Password deve conter letras e números", Password("abcdefg").Error)
	assert.Equal(t, "Password deve conter letras e números", Password("1234567").Error)
}

func TestName(t *testing.T) {
	assert.True(t, Name("Ana", DefaultNameMin, DefaultNameMax).Valid)
	assert.True(t, Name("  José d'Almeida-Silva ", DefaultNameMin, DefaultNameMax).Valid)
	assert.Equal(t, "Nome deve ter pelo menos 3 caracteres", Name(" Jo ", 3, 100).Error)
	assert.Equal(t, "Nome não pode exceder 5 caracteres", Name("Joaquim", 3, 5).Error)
	assert.Equal(t, "Nome contém caracteres inválidos", Name("Ana3", 3, 100).Error)
}

func TestPhone(t *testing.T) {
	for _, ok := range []string{"+351 912 345 678", "(351) 912-345-678", "912345678", "212345678"} {
		assert.True(t, Phone(ok).Valid, ok)
	}
	for _, bad := range []string{"812345678", "91234567", "+3519123456789", "+44 912 345 678"} {
		assert.False(t, Phone(bad).Valid, bad)
	}
	assert.Equal(t, "Telefone é obrigatório", Phone("").Error)
}

func TestNIF_Fixtures(t *testing.T) {
	// 1·9+2·8+3·7+4·6+5·5+6·4+7·3+8·2 = 156; 156 mod 11 = 2; 11-2 = 9
	assert.True(t, NIF("123456789").Valid)
	assert.True(t, NIF("501 964 843").Valid)
	// remainder 1 gives 10, which maps to a 0 check digit
	assert.True(t, NIF("999999990").Valid)

	assert.Equal(t, "NIF inválido", NIF("123456788").Error)
	assert.Equal(t, "NIF deve ter 9 dígitos", NIF("12345678").Error)
	assert.Equal(t, "NIF deve ter 9 dígitos", NIF("12345678a").Error)
	assert.Equal(t, "NIF é obrigatório", NIF("").Error)
}

func TestNIF_SingleDigitMutationsRejected(t *testing.T) {
	base := "123456789"
	for i := 0; i < len(base); i++ {
		for d := byte('0'); d <= '9'; d++ {
			if d == base[i] {
				continue
			}
			mutated := base[:i] + string(d) + base[i+1:]
			assert.False(t, NIF(mutated).Valid, mutated)
		}
	}
}

func TestIBAN(t *testing.T) {
	assert.True(t, IBAN("LT98 3250 0007 9827 7556").Valid)
	assert.True(t, IBAN("gb82 west 1234 5698 7654 32").Valid)
	assert.True(t, IBAN("PT50 0002 0123 1234 5678 9015 4").Valid)

	assert.Equal(t, "IBAN inválido", IBAN("PT50000201231234567890155").Error)
	assert.Equal(t, "Comprimento de IBAN inválido", IBAN("PT50 0002 0123").Error)
	assert.Equal(t, "Formato de IBAN inválido", IBAN("1234 5678 9012 3456").Error)
	assert.Equal(t, "IBAN é obrigatório", IBAN("").Error)
}

func TestAmount(t *testing.T) {
	assert.True(t, Amount("150", DefaultAmountMin, DefaultAmountMax).Valid)
	assert.True(t, Amount(" 0.50 ", DefaultAmountMin, DefaultAmountMax).Valid)
	assert.Equal(t, "Valor mínimo é €0", Amount("-1", DefaultAmountMin, DefaultAmountMax).Error)
	assert.Equal(t, "Valor máximo é €1000000", Amount("1000000.01", DefaultAmountMin, DefaultAmountMax).Error)
	assert.Equal(t, "Valor inválido", Amount("cem", DefaultAmountMin, DefaultAmountMax).Error)
	assert.False(t, Amount("20", decimal.NewFromInt(50), DefaultAmountMax).Valid)
}

func TestDate(t *testing.T) {
	now := time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

	assert.True(t, Date("2026-10-14", now).Valid)
	assert.True(t, Date("2026-10-14T09:00:00Z", now).Valid)
	assert.True(t, Date("2027-01-01T21:30", now).Valid)
	assert.Equal(t, "Data não pode ser no passado", Date("2026-10-13", now).Error)
	assert.Equal(t, "Data inválida", Date("31/12/2026", now).Error)
	assert.Equal(t, "Data inválida", Date("2026-02-30", now).Error)
	assert.Equal(t, "Data é obrigatória", Date("", now).Error)
}

func TestURL(t *testing.T) {
	assert.True(t, URL("https://musicosbooking.pt/perfil?id=1").Valid)
	assert.True(t, URL("mailto:geral@musicosbooking.pt").Valid)
	assert.False(t, URL("musicosbooking.pt").Valid)
	assert.False(t, URL("/relative/path").Valid)
	assert.False(t, URL("").Valid)
}

func TestValidateObject(t *testing.T) {
	schema := Schema{
		"email":    {Required: true, Type: TypeEmail},
		"nome":     {Required: true, Type: TypeName, Min: Bound(3), Max: Bound(50)},
		"telefone": {Type: TypePhone},
		"valor":    {Type: TypeAmount, Min: Bound(10)},
	}

	res := ValidateObject(map[string]string{"nome": "Jo", "valor": "5"}, schema)
	require.False(t, res.Valid)
	assert.Equal(t, map[string]string{
		"email": "email é obrigatório",
		"nome":  "Nome deve ter pelo menos 3 caracteres",
		"valor": "Valor mínimo é €10",
	}, res.Errors)

	res = ValidateObject(map[string]string{"email": "a@b.pt", "nome": "Ana", "telefone": "912345678"}, schema)
	assert.True(t, res.Valid)
	assert.Nil(t, res.Errors)
}

func TestRegisterTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterTags(v))

	type form struct {
		Phone string `validate:"omitempty,ptphone"`
		NIF   string `validate:"required,nif"`
		IBAN  string `validate:"omitempty,iban"`
	}

	assert.NoError(t, v.Struct(form{Phone: "912345678", NIF: "123456789", IBAN: "LT98 3250 0007 9827 7556"}))
	assert.NoError(t, v.Struct(form{NIF: "123456789"}))
	assert.Error(t, v.Struct(form{NIF: "123456788"}))
	assert.Error(t, v.Struct(form{Phone: "12", NIF: "123456789"}))

	type named struct {
		Phone string `json:"telefone,omitempty" validate:"ptphone"`
	}
	var verrs validator.ValidationErrors
	require.ErrorAs(t, v.Struct(named{Phone: "12"}), &verrs)
	assert.Equal(t, "telefone", verrs[0].Field())
}
