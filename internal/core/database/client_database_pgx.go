package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/insightpilot/insightpilot-api/internal/config"
	"github.com/insightpilot/insightpilot-api/internal/core"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, email, first_name, last_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Email, user.FirstName, user.LastName, user.PasswordHash)
	return err
}

const userColumns = `
	id, email, COALESCE(first_name, ''), COALESCE(last_name, ''), password_hash,
	COALESCE(stripe_customer_id, ''), COALESCE(stripe_subscription_id, ''),
	COALESCE(subscription_plan, ''), COALESCE(subscription_status, ''),
	current_period_end, trial_end, created_at, updated_at
`

func (c *DatabaseClient) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.StripeCustomerID, &u.StripeSubscriptionID,
		&u.SubscriptionPlan, &u.SubscriptionStatus,
		&u.CurrentPeriodEnd, &u.TrialEnd, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return c.scanUser(c.db.QueryRowContext(ctx, q, email))
}

func (c *DatabaseClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return c.scanUser(c.db.QueryRowContext(ctx, q, id))
}

func (c *DatabaseClient) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id = $1`
	return c.scanUser(c.db.QueryRowContext(ctx, q, customerID))
}

func (c *DatabaseClient) GetUserByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE stripe_subscription_id = $1`
	return c.scanUser(c.db.QueryRowContext(ctx, q, subscriptionID))
}

func (c *DatabaseClient) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	const q = `UPDATE users SET stripe_customer_id = $2, updated_at = now() WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, userID, customerID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// UpdateUserBilling overwrites the billing-mirror columns. Nil pointers write
// NULL: the webhook payload is the source of truth for all six columns.
func (c *DatabaseClient) UpdateUserBilling(ctx context.Context, userID string, b core.BillingMirror) error {
	const q = `
		UPDATE users SET
			stripe_customer_id = $2,
			stripe_subscription_id = $3,
			subscription_plan = $4,
			subscription_status = $5,
			current_period_end = $6,
			trial_end = $7,
			updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, userID,
		b.StripeCustomerID, b.StripeSubscriptionID,
		b.SubscriptionPlan, b.SubscriptionStatus,
		b.CurrentPeriodEnd, b.TrialEnd)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// Implementing the db interface for revoked tokens

// RevokeToken also evicts expired rows; revocation volume is low enough that
// piggybacking cleanup on writes keeps the table bounded without a scheduler.
func (c *DatabaseClient) RevokeToken(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < now()`); err != nil {
		return err
	}
	const q = `
		INSERT INTO revoked_tokens (token_hash, expires_at, revoked_at)
		VALUES ($1, $2, now())
		ON CONFLICT (token_hash) DO NOTHING
	`
	_, err := c.db.ExecContext(ctx, q, tokenHash, expiresAt)
	return err
}

func (c *DatabaseClient) IsTokenRevoked(ctx context.Context, tokenHash string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_hash = $1 AND expires_at >= now())`
	var revoked bool
	if err := c.db.QueryRowContext(ctx, q, tokenHash).Scan(&revoked); err != nil {
		return false, err
	}
	return revoked, nil
}
