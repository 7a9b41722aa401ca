package rand

import (
	crand "crypto/rand"
	"io"
	"math/bits"
	"sync"
)

// Alphabet is the character set used for room codes and session identifiers.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const poolSize = 256

// Generator produces uniformly distributed random strings over a fixed
// alphabet. Indices are drawn by rejection sampling: each draw consumes the
// minimal number of bits covering the alphabet size and is discarded when it
// falls outside the alphabet. The entropy pool is refilled from crypto/rand
// whenever it runs out, so generation never fails.
type Generator struct {
	mu       sync.Mutex
	alphabet string
	drawBits uint
	pool     []byte
	pos      int
	acc      uint64
	accBits  uint
}

// NewGenerator creates a Generator over the given alphabet. The alphabet must
// be non-empty and at most 256 characters.
func NewGenerator(alphabet string) *Generator {
	if len(alphabet) == 0 || len(alphabet) > 256 {
		panic("rand: alphabet size out of range")
	}

	return &Generator{
		alphabet: alphabet,
		drawBits: uint(bits.Len(uint(len(alphabet) - 1))),
	}
}

// Str generates a random string of the specified length using the characters
// of the Generator's alphabet, each chosen independently and uniformly.
func (g *Generator) Str(length int) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	b := make([]byte, length)
	for i := range b {
		b[i] = g.alphabet[g.index()]
	}
	return string(b)
}

// index draws candidate values until one lands inside the alphabet.
func (g *Generator) index() int {
	for {
		v := g.draw()
		if int(v) < len(g.alphabet) {
			return int(v)
		}
	}
}

// draw takes drawBits bits from the accumulator, pulling bytes from the pool
// as needed.
func (g *Generator) draw() uint64 {
	for g.accBits < g.drawBits {
		if g.pos >= len(g.pool) {
			g.refill()
		}
		g.acc = g.acc<<8 | uint64(g.pool[g.pos])
		g.pos++
		g.accBits += 8
	}

	g.accBits -= g.drawBits
	v := g.acc >> g.accBits
	g.acc &= 1<<g.accBits - 1
	return v
}

func (g *Generator) refill() {
	if g.pool == nil {
		g.pool = make([]byte, poolSize)
	}
	_, _ = io.ReadFull(crand.Reader, g.pool)
	g.pos = 0
}

var defaultGenerator = NewGenerator(Alphabet)

// Str generates a random string of the specified length using the characters
// from Alphabet.
func Str(length int) string {
	return defaultGenerator.Str(length)
}
