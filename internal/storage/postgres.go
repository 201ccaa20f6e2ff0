package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"curator-bot/internal/questionnaire"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// PostgresStorage is the durable sink for completed submissions and their
// denormalized document projections.
type PostgresStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPostgresStorage(ctx context.Context, cfg Config, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		retryPolicy,
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{
		db:     db,
		logger: logger,
	}, nil
}

// UpsertSubmission writes a completed submission keyed by Telegram user ID.
// Re-submission by the same user replaces the previous record.
func (s *PostgresStorage) UpsertSubmission(ctx context.Context, sub questionnaire.CompletedSubmission) error {
	const query = `
        INSERT INTO submissions (
            user_id, twitter_username, project_name, description, project_picture,
            website_link, community_link, x_link, chain, sector,
            tge_date, fdv, ticker, token_picture, data_room
        ) VALUES (
            :user_id, :twitter_username, :project_name, :description, :project_picture,
            :website_link, :community_link, :x_link, :chain, :sector,
            :tge_date, :fdv, :ticker, :token_picture, :data_room
        )
        ON CONFLICT (user_id) DO UPDATE SET
            twitter_username = EXCLUDED.twitter_username,
            project_name     = EXCLUDED.project_name,
            description      = EXCLUDED.description,
            project_picture  = EXCLUDED.project_picture,
            website_link     = EXCLUDED.website_link,
            community_link   = EXCLUDED.community_link,
            x_link           = EXCLUDED.x_link,
            chain            = EXCLUDED.chain,
            sector           = EXCLUDED.sector,
            tge_date         = EXCLUDED.tge_date,
            fdv              = EXCLUDED.fdv,
            ticker           = EXCLUDED.ticker,
            token_picture    = EXCLUDED.token_picture,
            data_room        = EXCLUDED.data_room,
            updated_at       = now()
    `

	if _, err := s.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("failed to upsert submission: %w", err)
	}
	return nil
}

// UpsertDocument stores the denormalized JSON projection for the downstream
// consumer, keyed by the same submission identity.
func (s *PostgresStorage) UpsertDocument(ctx context.Context, key string, doc questionnaire.ProjectDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	const query = `
        INSERT INTO project_documents (id, document)
        VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE SET
            document   = EXCLUDED.document,
            updated_at = now()
    `

	if _, err := s.db.ExecContext(ctx, query, key, data); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// ListSubmissions returns all submissions, newest first.
func (s *PostgresStorage) ListSubmissions(ctx context.Context) ([]questionnaire.CompletedSubmission, error) {
	const query = `
        SELECT user_id, twitter_username, project_name, description, project_picture,
               website_link, community_link, x_link, chain, sector,
               tge_date, fdv, ticker, token_picture, data_room
        FROM submissions
        ORDER BY updated_at DESC
    `

	var subs []questionnaire.CompletedSubmission
	if err := s.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

// DB exposes the underlying handle for migrations.
func (s *PostgresStorage) DB() *sqlx.DB {
	return s.db
}

func (s *PostgresStorage) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("Failed to close PostgreSQL connection", zap.Error(err))
	}
}
