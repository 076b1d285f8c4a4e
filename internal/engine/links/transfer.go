package links

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
)

// snapshotRecord is the browser storage layout of a link, kept for
// export/import compatibility.
type snapshotRecord struct {
	Shortcode   string          `json:"shortcode"`
	OriginalURL string          `json:"originalUrl"`
	ShortURL    string          `json:"shortUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	ExpiryDate  time.Time       `json:"expiryDate"`
	Clicks      []snapshotClick `json:"clicks"`
	Validity    int             `json:"validity"`
}

type snapshotClick struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Location  string    `json:"location"`
}

// snapshotStore is the two-key form: the ordered list plus the code index.
type snapshotStore struct {
	ShortenedURLs []snapshotRecord          `json:"shortenedUrls"`
	URLMappings   map[string]snapshotRecord `json:"urlMappings"`
}

var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Export writes records as a JSON array in the browser storage layout.
func Export(w io.Writer, records []*LinkRecord) error {
	out := make([]snapshotRecord, 0, len(records))
	for _, r := range records {
		s := snapshotRecord{
			Shortcode:   r.Shortcode,
			OriginalURL: r.OriginalURL,
			ShortURL:    r.ShortURL,
			CreatedAt:   r.CreatedAt,
			ExpiryDate:  r.ExpiryDate,
			Clicks:      make([]snapshotClick, 0, len(r.Clicks)),
			Validity:    r.ValidityMinutes,
		}
		for _, c := range r.Clicks {
			s.Clicks = append(s.Clicks, snapshotClick{Timestamp: c.Timestamp, Source: c.Source, Location: c.Location})
		}
		out = append(out, s)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ParseSnapshot reads either a bare array of records or the two-key object.
// Both views of the object are merged by shortcode: list entries first in
// their order, then entries only present in the mapping, sorted by code.
func ParseSnapshot(r io.Reader) ([]*LinkRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidSnapshot)
	}

	var entries []snapshotRecord
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	case '{':
		var store snapshotStore
		if err := json.Unmarshal(data, &store); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		entries = mergeSnapshot(store)
	default:
		return nil, fmt.Errorf("%w: expected array or object", ErrInvalidSnapshot)
	}

	records := make([]*LinkRecord, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.Shortcode] {
			continue
		}
		seen[e.Shortcode] = true
		records = append(records, e.record())
	}
	return records, nil
}

func mergeSnapshot(store snapshotStore) []snapshotRecord {
	merged := make([]snapshotRecord, 0, len(store.ShortenedURLs)+len(store.URLMappings))
	listed := make(map[string]bool, len(store.ShortenedURLs))
	for _, e := range store.ShortenedURLs {
		listed[e.Shortcode] = true
		merged = append(merged, e)
	}

	var extra []string
	for code := range store.URLMappings {
		if !listed[code] {
			extra = append(extra, code)
		}
	}
	sort.Strings(extra)

	for _, code := range extra {
		e := store.URLMappings[code]
		if e.Shortcode == "" {
			e.Shortcode = code
		}
		merged = append(merged, e)
	}
	return merged
}

func (s snapshotRecord) record() *LinkRecord {
	expiry := s.ExpiryDate
	if expiry.IsZero() {
		expiry = s.CreatedAt.Add(time.Duration(s.Validity) * time.Minute)
	}

	rec := &LinkRecord{
		Shortcode:       s.Shortcode,
		OriginalURL:     s.OriginalURL,
		ShortURL:        s.ShortURL,
		CreatedAt:       s.CreatedAt,
		ExpiryDate:      expiry,
		ValidityMinutes: s.Validity,
		Clicks:          make([]ClickEvent, 0, len(s.Clicks)),
	}
	for _, c := range s.Clicks {
		loc := c.Location
		if loc == "" {
			loc = UnknownLocation
		}
		rec.Clicks = append(rec.Clicks, ClickEvent{
			ID:        uuid.New().String(),
			Timestamp: c.Timestamp,
			Source:    c.Source,
			Location:  loc,
		})
	}
	return rec
}
