package analytics

import (
	"context"
	"database/sql"
	"time"
)

// LinkClicks is one row of the most clicked links table.
type LinkClicks struct {
	Shortcode string `json:"shortcode"`
	Clicks    int    `json:"clicks"`
}

// Overview aggregates over every stored link.
type Overview struct {
	TotalLinks      int          `json:"total_links"`
	ExpiredLinks    int          `json:"expired_links"`
	TotalClicks     int          `json:"total_clicks"`
	UniqueLocations int          `json:"unique_locations"`
	TopLinks        []LinkClicks `json:"top_links"`
}

// Repository runs the cross-link aggregation queries. Per-link views are
// computed from the record itself.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Totals(ctx context.Context, now time.Time) (*Overview, error) {
	o := &Overview{}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN expires_at < ? THEN 1 ELSE 0 END), 0)
		FROM links
	`, now.UnixMilli()).Scan(&o.TotalLinks, &o.ExpiredLinks)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT location) FROM clicks",
	).Scan(&o.TotalClicks, &o.UniqueLocations)
	if err != nil {
		return nil, err
	}

	return o, nil
}

// TopLinks returns the most clicked links; equal counts keep insertion order.
func (r *Repository) TopLinks(ctx context.Context, limit int) ([]LinkClicks, error) {
	query := `
		SELECT l.shortcode, COUNT(c.id) AS n
		FROM links l
		JOIN clicks c ON c.shortcode = l.shortcode
		GROUP BY l.shortcode, l.seq
		ORDER BY n DESC, l.seq ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := []LinkClicks{}
	for rows.Next() {
		var lc LinkClicks
		if err := rows.Scan(&lc.Shortcode, &lc.Clicks); err != nil {
			return nil, err
		}
		top = append(top, lc)
	}
	return top, rows.Err()
}
