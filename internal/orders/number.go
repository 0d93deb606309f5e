package orders

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	numberPrefix = "AF"
	suffixLength = 6
	base36Digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// RandomSource is satisfied by *rand.Rand from math/rand/v2.
type RandomSource interface {
	IntN(n int) int
}

// NumberGenerator produces human-readable order numbers.
type NumberGenerator interface {
	Generate() string
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Generator formats AF-<epoch-millis>-<6 base36 chars>. It does not
// guarantee uniqueness; the store retries on collision.
type Generator struct {
	now func() time.Time
	rnd RandomSource
}

// NewGenerator builds a Generator. Nil arguments fall back to time.Now and
// the goroutine-safe global source.
func NewGenerator(now func() time.Time, rnd RandomSource) *Generator {
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Generator{now: now, rnd: rnd}
}

// Generate returns a fresh order number.
func (g *Generator) Generate() string {
	var suffix strings.Builder
	suffix.Grow(suffixLength)
	for i := 0; i < suffixLength; i++ {
		suffix.WriteByte(base36Digits[g.rnd.IntN(len(base36Digits))])
	}
	return fmt.Sprintf("%s-%d-%s", numberPrefix, g.now().UnixMilli(), suffix.String())
}
