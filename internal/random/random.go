package random

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand/v2"
)

var allowedLetters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Letters returns n cryptographically random ASCII letters.
func Letters(n uint) (string, error) {
	letters := make([]rune, n)
	for i := range letters {
		letterIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(allowedLetters))))
		if err != nil {
			return "", err
		}
		letters[i] = allowedLetters[letterIndex.Int64()]
	}
	return string(letters), nil
}

// Source picks uniformly distributed indexes. [*math/rand/v2.Rand] satisfies it.
type Source interface {
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return mathrand.IntN(n)
}

// Global is the unseeded, goroutine-safe source backed by the math/rand/v2 top-level functions.
var Global Source = globalSource{} //nolint:gochecknoglobals // stateless.

// NewSeeded returns a deterministic source. Two sources with the same seed produce the same sequence.
//
// The returned source is not safe for concurrent use.
func NewSeeded(seed uint64) Source {
	return mathrand.New(mathrand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // not for security.
}
