package links

import (
	"context"
	"errors"
	"regexp"
	"testing"
)

type MockChecker struct {
	codes map[string]bool
	calls int
}

func (m *MockChecker) ExistsByShortCode(ctx context.Context, code string) (bool, error) {
	m.calls++
	if code == "error" {
		return false, errors.New("db error")
	}
	return m.codes[code], nil
}

func TestGenerateShortCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Za-z0-9]{6}$`)
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		code, err := GenerateShortCode(DefaultCodeLength)
		if err != nil {
			t.Fatalf("GenerateShortCode() error = %v", err)
		}
		if !pattern.MatchString(code) {
			t.Errorf("GenerateShortCode() = %q, not alphanumeric of length 6", code)
		}
		if seen[code] {
			t.Errorf("GenerateShortCode() generated duplicate: %s", code)
		}
		seen[code] = true
	}
}

func TestCodeGenerator(t *testing.T) {
	checker := &MockChecker{
		codes: map[string]bool{
			"taken": true,
		},
	}
	gen := &codeGenerator{length: DefaultCodeLength, maxAttempts: DefaultMaxAttempts, random: GenerateShortCode}
	ctx := context.Background()

	// Preferred code free
	code, err := gen.generate(ctx, "custom", checker)
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if code != "custom" {
		t.Errorf("Expected custom, got %s", code)
	}

	// Preferred code taken
	_, err = gen.generate(ctx, "taken", checker)
	if !errors.Is(err, ErrCodeExists) {
		t.Errorf("Expected ErrCodeExists, got %v", err)
	}

	// Checker failure propagates
	_, err = gen.generate(ctx, "error", checker)
	if err == nil || errors.Is(err, ErrCodeExists) {
		t.Errorf("Expected checker error, got %v", err)
	}

	// Random code
	code, err = gen.generate(ctx, "", checker)
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if len(code) != DefaultCodeLength {
		t.Errorf("Expected length %d, got %d", DefaultCodeLength, len(code))
	}
}

func TestCodeGenerator_RetriesOnCollision(t *testing.T) {
	sequence := []string{"aaaaaa", "bbbbbb", "cccccc"}
	next := 0
	gen := &codeGenerator{
		length:      6,
		maxAttempts: 5,
		random: func(int) (string, error) {
			c := sequence[next]
			next++
			return c, nil
		},
	}

	code, err := gen.generate(context.Background(), "", NewCodeSet("aaaaaa", "bbbbbb"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if code != "cccccc" {
		t.Errorf("Expected cccccc, got %s", code)
	}
}

func TestCodeGenerator_SkipsReservedCodes(t *testing.T) {
	sequence := []string{"api", "API", "xyz"}
	next := 0
	gen := &codeGenerator{
		length:      3,
		maxAttempts: 5,
		random: func(int) (string, error) {
			c := sequence[next]
			next++
			return c, nil
		},
	}

	code, err := gen.generate(context.Background(), "", NewCodeSet())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if code != "xyz" {
		t.Errorf("Expected xyz, got %s", code)
	}
}

func TestCodeGenerator_ExhaustedCodeSpace(t *testing.T) {
	checker := &MockChecker{codes: map[string]bool{"same": true}}
	gen := &codeGenerator{
		length:      4,
		maxAttempts: 3,
		random:      func(int) (string, error) { return "same", nil },
	}

	_, err := gen.generate(context.Background(), "", checker)
	if !errors.Is(err, ErrExhaustedCodeSpace) {
		t.Fatalf("Expected ErrExhaustedCodeSpace, got %v", err)
	}
	if checker.calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", checker.calls)
	}
}

func TestBatchChecker(t *testing.T) {
	b := &batchChecker{base: NewCodeSet("stored"), issued: NewCodeSet("fresh")}
	ctx := context.Background()

	for code, want := range map[string]bool{"stored": true, "fresh": true, "other": false} {
		got, err := b.ExistsByShortCode(ctx, code)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("ExistsByShortCode(%s) = %v, want %v", code, got, want)
		}
	}
}
