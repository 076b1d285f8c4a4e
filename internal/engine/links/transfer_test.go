package links

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseSnapshot_Array(t *testing.T) {
	input := `[
		{
			"shortcode": "abc123",
			"originalUrl": "https://example.com",
			"shortUrl": "http://localhost:3000/abc123",
			"createdAt": "2024-01-01T10:00:00.000Z",
			"expiryDate": "2024-01-01T10:30:00.000Z",
			"clicks": [
				{"timestamp": "2024-01-01T10:05:00.000Z", "source": "Mozilla/5.0", "location": "Pune, Maharashtra, India"},
				{"timestamp": "2024-01-01T10:06:00.000Z", "source": "curl/8.0", "location": ""}
			],
			"validity": 30
		}
	]`

	records, err := ParseSnapshot(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	r := records[0]
	if r.Shortcode != "abc123" || r.ValidityMinutes != 30 {
		t.Errorf("Unexpected record: %+v", r)
	}
	if want := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC); !r.ExpiryDate.Equal(want) {
		t.Errorf("Expected expiry %v, got %v", want, r.ExpiryDate)
	}
	if len(r.Clicks) != 2 || r.Clicks[0].ID == "" || r.Clicks[0].ID == r.Clicks[1].ID {
		t.Errorf("Clicks must receive distinct ids: %+v", r.Clicks)
	}
	if r.Clicks[1].Location != UnknownLocation {
		t.Errorf("Expected blank location to become %q, got %q", UnknownLocation, r.Clicks[1].Location)
	}
}

func TestParseSnapshot_MergesBothViews(t *testing.T) {
	input := `{
		"shortenedUrls": [
			{"shortcode": "second", "originalUrl": "https://b.example.com", "createdAt": "2024-01-01T00:00:00Z", "validity": 30, "clicks": []},
			{"shortcode": "first", "originalUrl": "https://a.example.com", "createdAt": "2024-01-01T00:00:00Z", "validity": 30, "clicks": []}
		],
		"urlMappings": {
			"first": {"shortcode": "first", "originalUrl": "https://a.example.com", "createdAt": "2024-01-01T00:00:00Z", "validity": 30},
			"zeta": {"originalUrl": "https://z.example.com", "createdAt": "2024-01-01T00:00:00Z", "validity": 10},
			"alpha": {"shortcode": "alpha", "originalUrl": "https://x.example.com", "createdAt": "2024-01-01T00:00:00Z", "validity": 10}
		}
	}`

	records, err := ParseSnapshot(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}

	got := codesOf(records)
	want := []string{"second", "first", "alpha", "zeta"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Merged order = %v, want %v", got, want)
	}

	zeta := records[3]
	if want := time.Date(2024, 1, 1, 0, 10, 0, 0, time.UTC); !zeta.ExpiryDate.Equal(want) {
		t.Errorf("Expected expiry derived from validity %v, got %v", want, zeta.ExpiryDate)
	}
}

func TestParseSnapshot_Invalid(t *testing.T) {
	for _, input := range []string{"", "42", "[{", `{"shortenedUrls": 7}`} {
		if _, err := ParseSnapshot(strings.NewReader(input)); !errors.Is(err, ErrInvalidSnapshot) {
			t.Errorf("ParseSnapshot(%q) error = %v, want ErrInvalidSnapshot", input, err)
		}
	}
}

func TestExport_ReadableByParseSnapshot(t *testing.T) {
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	rec := testRecord("exp", created)
	rec.Clicks = []ClickEvent{{ID: "1", Timestamp: created.Add(time.Minute), Source: "ua", Location: "Lyon, ARA, FR"}}

	var buf bytes.Buffer
	if err := Export(&buf, []*LinkRecord{rec}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"originalUrl": "https://example.com/exp"`) {
		t.Errorf("Export does not use the storage field names: %s", buf.String())
	}

	back, err := ParseSnapshot(&buf)
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}
	if len(back) != 1 || back[0].Clicks[0].Location != "Lyon, ARA, FR" || !back[0].CreatedAt.Equal(created) {
		t.Errorf("Exported record not read back: %+v", back)
	}
}
