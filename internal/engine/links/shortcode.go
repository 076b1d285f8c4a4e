package links

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	shortCodeChars     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	DefaultCodeLength  = 6
	DefaultMaxAttempts = 32
)

// CodeAvailabilityChecker is a read-only view over the shortcodes in use.
type CodeAvailabilityChecker interface {
	ExistsByShortCode(ctx context.Context, code string) (bool, error)
}

// CodeSet is an in-memory CodeAvailabilityChecker.
type CodeSet map[string]struct{}

func NewCodeSet(codes ...string) CodeSet {
	s := make(CodeSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func (s CodeSet) ExistsByShortCode(ctx context.Context, code string) (bool, error) {
	_, ok := s[code]
	return ok, nil
}

// batchChecker sees the shared checker plus the codes handed out earlier in
// the same batch.
type batchChecker struct {
	base   CodeAvailabilityChecker
	issued CodeSet
}

func (b *batchChecker) ExistsByShortCode(ctx context.Context, code string) (bool, error) {
	if _, ok := b.issued[code]; ok {
		return true, nil
	}
	return b.base.ExistsByShortCode(ctx, code)
}

// GenerateShortCode draws length characters uniformly from the alphanumeric alphabet.
func GenerateShortCode(length int) (string, error) {
	b := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(shortCodeChars)))
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		b[i] = shortCodeChars[n.Int64()]
	}
	return string(b), nil
}

type codeGenerator struct {
	length      int
	maxAttempts int
	random      func(length int) (string, error)
}

// generate returns the preferred code when it is free, or a fresh random code.
func (g *codeGenerator) generate(ctx context.Context, preferred string, checker CodeAvailabilityChecker) (string, error) {
	if preferred != "" {
		exists, err := checker.ExistsByShortCode(ctx, preferred)
		if err != nil {
			return "", err
		}
		if exists {
			return "", ErrCodeExists
		}
		return preferred, nil
	}

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code, err := g.random(g.length)
		if err != nil {
			return "", err
		}
		if IsReservedShortcode(code) {
			continue
		}

		exists, err := checker.ExistsByShortCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrExhaustedCodeSpace, g.maxAttempts)
}
