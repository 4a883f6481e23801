// Package payment generates payment references, computes method fees and
// renders the payment instructions sent to customers.
package payment

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"musicosbooking.pt/api/pkg/models"
)

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	TransferReferencePattern = regexp.MustCompile(`^MUS-[0-9]{13}-[0-9A-Z]{5}$`)
	MBWayReferencePattern    = regexp.MustCompile(`^MB[0-9]{8}[0-9]{5}$`)
)

// Generator builds human-typeable payment references. It does not check
// uniqueness; the orders collection carries a unique index on the reference.
type Generator struct {
	now  func() time.Time
	intn func(n int) int
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now, intn: rand.IntN}
}

// NewGeneratorWith is used by tests to pin the clock and the random source.
func NewGeneratorWith(now func() time.Time, intn func(n int) int) *Generator {
	return &Generator{now: now, intn: intn}
}

// Reference returns MB<YYYYMMDD><5 digits> for MB WAY and
// MUS-<unix millis>-<5 base36 chars> for every other method.
func (g *Generator) Reference(method models.PaymentMethod) string {
	now := g.now()
	if method == models.MethodMBWay {
		return fmt.Sprintf("MB%s%05d", now.Format("20060102"), g.intn(100000))
	}

	var suffix strings.Builder
	for range 5 {
		suffix.WriteByte(referenceAlphabet[g.intn(len(referenceAlphabet))])
	}
	return fmt.Sprintf("MUS-%d-%s", now.UnixMilli(), suffix.String())
}

func ValidReference(ref string) bool {
	return TransferReferencePattern.MatchString(ref) || MBWayReferencePattern.MatchString(ref)
}
