package links

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository is the single source of truth for link records. The ordered
// listing is derived from the insertion sequence, so there is no second index
// to keep in step.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const linkColumns = `shortcode, original_url, short_url, validity_minutes, created_at, expires_at`

// Create inserts the record and any clicks it already carries. A shortcode
// that is already stored yields ErrCodeExists and nothing is written.
func (r *Repository) Create(ctx context.Context, link *LinkRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO links (` + linkColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(shortcode) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, query,
		link.Shortcode,
		link.OriginalURL,
		link.ShortURL,
		link.ValidityMinutes,
		link.CreatedAt.UnixMilli(),
		link.ExpiryDate.UnixMilli(),
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCodeExists
	}

	for _, click := range link.Clicks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO clicks (id, shortcode, timestamp, source, location) VALUES (?, ?, ?, ?, ?)`,
			click.ID, link.Shortcode, click.Timestamp.UnixMilli(), click.Source, click.Location,
		)
		if err != nil {
			return fmt.Errorf("failed to store click %s: %w", click.ID, err)
		}
	}

	return tx.Commit()
}

func (r *Repository) ExistsByShortCode(ctx context.Context, shortCode string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM links WHERE shortcode = ?)"
	err := r.db.QueryRowContext(ctx, query, shortCode).Scan(&exists)
	return exists, err
}

// GetByShortCode returns the record with its full click history.
func (r *Repository) GetByShortCode(ctx context.Context, shortCode string) (*LinkRecord, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE shortcode = ?`
	link, err := scanLink(r.db.QueryRowContext(ctx, query, shortCode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	link.Clicks, err = r.Clicks(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	return link, nil
}

// List returns records in insertion order. A non-positive limit means all.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*LinkRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + linkColumns + ` FROM links ORDER BY seq ASC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}

	links := []*LinkRecord{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		links = append(links, link)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// Rows are closed first; a single-connection pool cannot serve both.
	for _, link := range links {
		if link.Clicks, err = r.Clicks(ctx, link.Shortcode); err != nil {
			return nil, err
		}
	}
	return links, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM links").Scan(&n)
	return n, err
}

// AppendClick adds one click in a single keyed statement. It writes nothing
// and returns ErrNotFound when the shortcode is unknown.
func (r *Repository) AppendClick(ctx context.Context, shortCode string, click ClickEvent) error {
	query := `
		INSERT INTO clicks (id, shortcode, timestamp, source, location)
		SELECT ?, shortcode, ?, ?, ? FROM links WHERE shortcode = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		click.ID,
		click.Timestamp.UnixMilli(),
		click.Source,
		click.Location,
		shortCode,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clicks returns the click history of a shortcode in the order recorded.
func (r *Repository) Clicks(ctx context.Context, shortCode string) ([]ClickEvent, error) {
	query := `SELECT id, timestamp, source, location FROM clicks WHERE shortcode = ? ORDER BY rowid ASC`
	rows, err := r.db.QueryContext(ctx, query, shortCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clicks := []ClickEvent{}
	for rows.Next() {
		var c ClickEvent
		var ts int64
		if err := rows.Scan(&c.ID, &ts, &c.Source, &c.Location); err != nil {
			return nil, err
		}
		c.Timestamp = time.UnixMilli(ts).UTC()
		clicks = append(clicks, c)
	}
	return clicks, rows.Err()
}

func scanLink(s interface {
	Scan(dest ...interface{}) error
}) (*LinkRecord, error) {
	var link LinkRecord
	var createdAt, expiresAt int64

	err := s.Scan(
		&link.Shortcode,
		&link.OriginalURL,
		&link.ShortURL,
		&link.ValidityMinutes,
		&createdAt,
		&expiresAt,
	)
	if err != nil {
		return nil, err
	}

	link.CreatedAt = time.UnixMilli(createdAt).UTC()
	link.ExpiryDate = time.UnixMilli(expiresAt).UTC()
	link.Clicks = []ClickEvent{}
	return &link, nil
}
