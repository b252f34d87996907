package fund

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cenkalti/backoff/v5"
)

const (
	codePrefix   = "TF-"
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultCodeAttempts bounds regeneration on collision.
	DefaultCodeAttempts = 5
)

var errCodeTaken = errors.New("code already assigned")

// CodeGenerator mints share codes of the form TF-XXXXXX and checks each candidate
// against existing campaigns before accepting it.
type CodeGenerator struct {
	exists   func(ctx context.Context, code string) (bool, error)
	rand     io.Reader
	attempts uint
	notify   func(code string)
}

// NewCodeGenerator builds a generator backed by exists. A nil rand uses crypto/rand.
func NewCodeGenerator(exists func(ctx context.Context, code string) (bool, error), rnd io.Reader) *CodeGenerator {
	if rnd == nil {
		rnd = rand.Reader
	}
	return &CodeGenerator{exists: exists, rand: rnd, attempts: DefaultCodeAttempts}
}

// Generate returns an unused code, or ErrCodeExhausted when every attempt collided.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	op := func() (string, error) {
		code, err := g.candidate()
		if err != nil {
			return "", backoff.Permanent(err)
		}
		taken, err := g.exists(ctx, code)
		if err != nil {
			return "", backoff.Permanent(fmt.Errorf("check code: %w", err))
		}
		if taken {
			if g.notify != nil {
				g.notify(code)
			}
			return "", errCodeTaken
		}
		return code, nil
	}

	code, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(&backoff.ZeroBackOff{}),
		backoff.WithMaxTries(g.attempts),
	)
	if err != nil {
		if errors.Is(err, errCodeTaken) {
			return "", ErrCodeExhausted
		}
		return "", err
	}
	return code, nil
}

func (g *CodeGenerator) candidate() (string, error) {
	buf := make([]byte, 0, len(codePrefix)+codeLength)
	buf = append(buf, codePrefix...)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(g.rand, max)
		if err != nil {
			return "", fmt.Errorf("read entropy: %w", err)
		}
		buf = append(buf, codeAlphabet[n.Int64()])
	}
	return string(buf), nil
}

// ValidCode reports whether code has the TF-XXXXXX shape.
func ValidCode(code string) bool {
	if len(code) != len(codePrefix)+codeLength || code[:len(codePrefix)] != codePrefix {
		return false
	}
	for _, r := range code[len(codePrefix):] {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
