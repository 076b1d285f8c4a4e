package links

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"

	"shortr/internal/platform/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRecord(code string, created time.Time) *LinkRecord {
	return &LinkRecord{
		Shortcode:       code,
		OriginalURL:     "https://example.com/" + code,
		ShortURL:        "http://localhost:3000/" + code,
		CreatedAt:       created,
		ExpiryDate:      created.Add(30 * time.Minute),
		ValidityMinutes: 30,
		Clicks:          []ClickEvent{},
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.Create(ctx, testRecord("abc", now)); err != nil {
		t.Fatalf("Failed to create link: %v", err)
	}

	fetched, err := repo.GetByShortCode(ctx, "abc")
	if err != nil {
		t.Fatalf("Failed to get link: %v", err)
	}
	if fetched.OriginalURL != "https://example.com/abc" {
		t.Errorf("Expected original url https://example.com/abc, got %s", fetched.OriginalURL)
	}
	if !fetched.CreatedAt.Equal(now) || !fetched.ExpiryDate.Equal(now.Add(30*time.Minute)) {
		t.Errorf("Timestamps did not round trip: %v, %v", fetched.CreatedAt, fetched.ExpiryDate)
	}
	if fetched.Clicks == nil || len(fetched.Clicks) != 0 {
		t.Errorf("Expected empty click list, got %v", fetched.Clicks)
	}

	exists, err := repo.ExistsByShortCode(ctx, "abc")
	if err != nil || !exists {
		t.Errorf("ExistsByShortCode(abc) = %v, %v", exists, err)
	}
	exists, err = repo.ExistsByShortCode(ctx, "nope")
	if err != nil || exists {
		t.Errorf("ExistsByShortCode(nope) = %v, %v", exists, err)
	}
}

func TestRepository_CreateDuplicate(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	first := testRecord("dup", time.Now())
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Failed to create link: %v", err)
	}

	second := testRecord("dup", time.Now())
	second.OriginalURL = "https://other.example.com"
	if err := repo.Create(ctx, second); !errors.Is(err, ErrCodeExists) {
		t.Fatalf("Expected ErrCodeExists, got %v", err)
	}

	fetched, _ := repo.GetByShortCode(ctx, "dup")
	if fetched.OriginalURL != first.OriginalURL {
		t.Errorf("Existing record was overwritten: %s", fetched.OriginalURL)
	}
}

func TestRepository_GetMissing(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	if _, err := repo.GetByShortCode(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRepository_AppendClick(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.Create(ctx, testRecord("abc", now)); err != nil {
		t.Fatalf("Failed to create link: %v", err)
	}

	for i, loc := range []string{"Paris, IDF, FR", "Berlin, BE, DE", UnknownLocation} {
		click := ClickEvent{
			ID:        string(rune('a' + i)),
			Timestamp: now.Add(time.Duration(i) * time.Minute),
			Source:    "curl/8.0",
			Location:  loc,
		}
		if err := repo.AppendClick(ctx, "abc", click); err != nil {
			t.Fatalf("AppendClick() error = %v", err)
		}
	}

	fetched, err := repo.GetByShortCode(ctx, "abc")
	if err != nil {
		t.Fatalf("Failed to get link: %v", err)
	}
	if len(fetched.Clicks) != 3 {
		t.Fatalf("Expected 3 clicks, got %d", len(fetched.Clicks))
	}
	if fetched.Clicks[0].Location != "Paris, IDF, FR" || fetched.Clicks[2].Location != UnknownLocation {
		t.Errorf("Clicks out of order: %+v", fetched.Clicks)
	}
	if !fetched.Clicks[1].Timestamp.Equal(now.Add(time.Minute)) {
		t.Errorf("Click timestamp did not round trip: %v", fetched.Clicks[1].Timestamp)
	}
}

func TestRepository_AppendClickUnknownCode(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	err := repo.AppendClick(ctx, "ghost", ClickEvent{ID: "x", Timestamp: time.Now(), Location: UnknownLocation})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	clicks, err := repo.Clicks(ctx, "ghost")
	if err != nil || len(clicks) != 0 {
		t.Errorf("Expected no stored clicks, got %v, %v", clicks, err)
	}
}

func TestRepository_ListAndCount(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	// Inserted out of alphabetical order; listing follows insertion.
	now := time.Now()
	for _, code := range []string{"zz", "aa", "mm"} {
		if err := repo.Create(ctx, testRecord(code, now)); err != nil {
			t.Fatalf("Failed to create %s: %v", code, err)
		}
	}
	if err := repo.AppendClick(ctx, "aa", ClickEvent{ID: "c1", Timestamp: now, Location: UnknownLocation}); err != nil {
		t.Fatalf("AppendClick() error = %v", err)
	}

	all, err := repo.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 || all[0].Shortcode != "zz" || all[1].Shortcode != "aa" || all[2].Shortcode != "mm" {
		t.Errorf("Unexpected order: %v", codesOf(all))
	}
	if len(all[1].Clicks) != 1 {
		t.Errorf("Expected listed record to carry its clicks, got %d", len(all[1].Clicks))
	}

	page, err := repo.List(ctx, 1, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page) != 1 || page[0].Shortcode != "aa" {
		t.Errorf("Unexpected page: %v", codesOf(page))
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 3 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}

func TestRepository_CreateWithClicks(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	rec := testRecord("imp", time.Now())
	rec.Clicks = []ClickEvent{
		{ID: "1", Timestamp: time.Now(), Source: "a", Location: "X"},
		{ID: "2", Timestamp: time.Now(), Source: "b", Location: "Y"},
	}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	clicks, err := repo.Clicks(ctx, "imp")
	if err != nil || len(clicks) != 2 {
		t.Fatalf("Expected 2 clicks, got %v, %v", clicks, err)
	}
}

func TestRepository_ErrorPaths(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO links").WillReturnError(boom)
	mock.ExpectRollback()
	if err := repo.Create(ctx, testRecord("abc", time.Now())); !errors.Is(err, boom) {
		t.Errorf("Create() error = %v, want %v", err, boom)
	}

	mock.ExpectQuery("SELECT EXISTS").WithArgs("abc").WillReturnError(boom)
	if _, err := repo.ExistsByShortCode(ctx, "abc"); !errors.Is(err, boom) {
		t.Errorf("ExistsByShortCode() error = %v, want %v", err, boom)
	}

	mock.ExpectExec("INSERT INTO clicks").WillReturnError(boom)
	if err := repo.AppendClick(ctx, "abc", ClickEvent{ID: "1", Timestamp: time.Now()}); !errors.Is(err, boom) {
		t.Errorf("AppendClick() error = %v, want %v", err, boom)
	}

	mock.ExpectQuery("SELECT shortcode").WithArgs("abc").WillReturnError(boom)
	if _, err := repo.GetByShortCode(ctx, "abc"); !errors.Is(err, boom) {
		t.Errorf("GetByShortCode() error = %v, want %v", err, boom)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func codesOf(records []*LinkRecord) []string {
	codes := make([]string, len(records))
	for i, r := range records {
		codes[i] = r.Shortcode
	}
	return codes
}
