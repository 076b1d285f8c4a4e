package redirect

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shortr/internal/engine/links"
	"shortr/internal/pkg/geoip"
	"shortr/internal/pkg/logger"
)

type memoryClickStore struct {
	mu     sync.Mutex
	clicks map[string][]links.ClickEvent
	err    error
	panics bool
}

func newMemoryClickStore() *memoryClickStore {
	return &memoryClickStore{clicks: make(map[string][]links.ClickEvent)}
}

func (s *memoryClickStore) RecordClick(ctx context.Context, code string, click links.ClickEvent) error {
	if s.panics {
		panic("store exploded")
	}
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks[code] = append(s.clicks[code], click)
	return nil
}

func (s *memoryClickStore) count(code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clicks[code])
}

func TestClickRecorder_NewClick(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		geo     geoip.Resolver
		wantLoc string
	}{
		{
			name:    "Located",
			geo:     &geoip.StaticResolver{Location: "Pune, Maharashtra, India"},
			wantLoc: "Pune, Maharashtra, India",
		},
		{
			name:    "Lookup Failure",
			geo:     &geoip.StaticResolver{Err: geoip.ErrLookupFailed},
			wantLoc: links.UnknownLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewClickRecorder(newMemoryClickStore(), tt.geo, logger.Nop())
			r.now = func() time.Time { return now }

			click := r.NewClick(context.Background(), "203.0.113.7", "curl/8.0")
			if click.Location != tt.wantLoc {
				t.Errorf("Location = %q, want %q", click.Location, tt.wantLoc)
			}
			if click.Source != "curl/8.0" || !click.Timestamp.Equal(now) || click.ID == "" {
				t.Errorf("Unexpected click %+v", click)
			}
		})
	}
}

func TestClickRecorder_Record(t *testing.T) {
	store := newMemoryClickStore()
	r := NewClickRecorder(store, &geoip.StaticResolver{Location: "X"}, logger.Nop())

	if _, err := r.Record(context.Background(), "abc", "", "ua"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if store.count("abc") != 1 {
		t.Errorf("Expected 1 stored click, got %d", store.count("abc"))
	}

	store.err = links.ErrNotFound
	if _, err := r.Record(context.Background(), "abc", "", "ua"); !errors.Is(err, links.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestClickRecorder_RecordAsync(t *testing.T) {
	store := newMemoryClickStore()
	r := NewClickRecorder(store, &geoip.StaticResolver{Location: "X"}, logger.Nop())

	for i := 0; i < 10; i++ {
		r.RecordAsync("abc", "", "ua")
	}
	r.Wait()

	if store.count("abc") != 10 {
		t.Errorf("Expected 10 clicks, got %d", store.count("abc"))
	}
}

func TestClickRecorder_RecordAsyncRecovers(t *testing.T) {
	store := newMemoryClickStore()
	store.panics = true
	r := NewClickRecorder(store, &geoip.StaticResolver{Location: "X"}, logger.Nop())

	r.RecordAsync("abc", "", "ua")
	r.Wait()
}
