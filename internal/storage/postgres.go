package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/mindforge/focusd/internal/health"
)

// ErrProfileNotFound is returned when a user has no stored profile.
var ErrProfileNotFound = errors.New("user profile not found")

// Config holds database configuration
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

// Postgres is the persistent sample store.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a PostgreSQL connection pool.
func NewPostgres(cfg Config) (*Postgres, error) {
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

// Close closes the database connection
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Ping verifies the database connection
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// CreateTables creates the necessary database tables
func (p *Postgres) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS health_samples (
			id SERIAL PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			heart_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			steps BIGINT NOT NULL DEFAULT 0,
			sleep_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			sleep_quality DOUBLE PRECISION NOT NULL DEFAULT 0,
			stress_level DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_health_samples_user_time
			ON health_samples (user_id, recorded_at DESC)`,
		`CREATE TABLE IF NOT EXISTS user_profiles (
			user_id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			age INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, query := range queries {
		if _, err := p.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// InsertSample stores one sample. Samples are append-only; they are never
// mutated once written.
func (p *Postgres) InsertSample(ctx context.Context, s health.Sample) error {
	f := s.Features()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO health_samples
			(user_id, recorded_at, heart_rate, steps, sleep_hours, sleep_quality, stress_level)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.UserID, s.RecordedAt, f.HeartRate, int64(f.Steps), f.SleepHours, f.SleepQuality, f.StressLevel,
	)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

// FindSamples returns a user's samples within [start, end], ascending by
// recording time.
func (p *Postgres) FindSamples(ctx context.Context, userID string, start, end time.Time) ([]health.Sample, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT user_id, recorded_at, heart_rate, steps, sleep_hours, sleep_quality, stress_level
		 FROM health_samples
		 WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at <= $3
		 ORDER BY recorded_at ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("find samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var samples []health.Sample
	for rows.Next() {
		var s health.Sample
		if err := rows.Scan(&s.UserID, &s.RecordedAt, &s.HeartRate, &s.Steps,
			&s.SleepHours, &s.SleepQuality, &s.StressLevel); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

// GetProfile returns a user's profile, or ErrProfileNotFound.
func (p *Postgres) GetProfile(ctx context.Context, userID string) (*health.UserProfile, error) {
	var profile health.UserProfile
	err := p.db.QueryRowContext(ctx,
		`SELECT user_id, name, age, created_at, updated_at
		 FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&profile.UserID, &profile.Name, &profile.Age, &profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// UpsertProfile creates or updates a user's profile.
func (p *Postgres) UpsertProfile(ctx context.Context, profile health.UserProfile) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, name, age)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id)
		 DO UPDATE SET name = EXCLUDED.name, age = EXCLUDED.age, updated_at = NOW()`,
		profile.UserID, profile.Name, profile.Age,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
