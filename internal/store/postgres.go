package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/ecocampmy/campsite-chat-service/internal/models"
	"github.com/ecocampmy/campsite-chat-service/internal/observability"
)

const campsiteColumns = "id, name, type, state, address, latitude, longitude, forest_type, opening_hours, fees, tags, image_url"

// PostgresStore implements CampsiteStore against the campsites table.
type PostgresStore struct {
	db *sql.DB
}

// Open connects to Postgres using the given DSN and verifies the connection.
func Open(dsn string, maxOpen, maxIdle int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing handle. Used by tests with sqlmock.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Ping tests the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ListAll returns every campsite in ascending id order.
func (s *PostgresStore) ListAll(ctx context.Context) ([]models.CampSite, error) {
	start := time.Now()
	defer func() {
		observability.StoreQueryDuration.WithLabelValues("list_all").Observe(time.Since(start).Seconds())
	}()

	query := "SELECT " + campsiteColumns + " FROM campsites ORDER BY id"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list campsites: %w", err)
	}
	defer rows.Close()
	return scanCampsites(rows)
}

// Search returns campsites matching the filter, capped at limit, in ascending
// id order. The three predicate groups (state, attractions, fee) combine with
// AND; attraction substrings combine per f.CombineAnd.
func (s *PostgresStore) Search(ctx context.Context, f Filter, limit int) ([]models.CampSite, error) {
	start := time.Now()
	defer func() {
		observability.StoreQueryDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	}()

	var (
		clauses []string
		args    []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.State != "" {
		clauses = append(clauses, "LOWER(state) = LOWER("+arg(f.State)+")")
	}
	if len(f.Attractions) > 0 {
		sub := make([]string, 0, len(f.Attractions))
		for _, kw := range f.Attractions {
			sub = append(sub, "LOWER(tags) LIKE "+arg("%"+strings.ToLower(kw)+"%"))
		}
		op := " OR "
		if f.CombineAnd {
			op = " AND "
		}
		clauses = append(clauses, "("+strings.Join(sub, op)+")")
	}
	if f.FreeOnly {
		clauses = append(clauses, "LOWER(fees) LIKE "+arg("%free admission%"))
	}

	query := "SELECT " + campsiteColumns + " FROM campsites"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id LIMIT " + arg(limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search campsites: %w", err)
	}
	defer rows.Close()
	return scanCampsites(rows)
}

func scanCampsites(rows *sql.Rows) ([]models.CampSite, error) {
	var sites []models.CampSite
	for rows.Next() {
		var (
			c        models.CampSite
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.State, &c.Address, &lat, &lon,
			&c.ForestType, &c.OpeningHours, &c.Fees, &c.Tags, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("scan campsite: %w", err)
		}
		if lat.Valid {
			v := lat.Float64
			c.Latitude = &v
		}
		if lon.Valid {
			v := lon.Float64
			c.Longitude = &v
		}
		sites = append(sites, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campsites: %w", err)
	}
	return sites, nil
}
