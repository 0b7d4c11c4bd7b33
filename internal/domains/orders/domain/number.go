package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NumberGenerator produces human readable order numbers of the form
// ORD-YYMMDD-NNNN. Clock and randomness are injectable.
type NumberGenerator struct {
	Now  func() time.Time
	Rand func(n int) int
}

// NewNumberGenerator returns a generator backed by the wall clock.
func NewNumberGenerator() NumberGenerator {
	return NumberGenerator{Now: time.Now, Rand: rand.IntN}
}

// Next returns a fresh candidate. Uniqueness is enforced by the order store.
func (g NumberGenerator) Next() string {
	now, random := g.Now, g.Rand
	if now == nil {
		now = time.Now
	}
	if random == nil {
		random = rand.IntN
	}
	return fmt.Sprintf("ORD-%s-%04d", now().UTC().Format("060102"), random(10000))
}
