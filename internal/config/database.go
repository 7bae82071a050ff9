package config

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sqlx.DB) error {
	// Create users table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			display_name VARCHAR(255) NOT NULL DEFAULT '',
			is_premium BOOLEAN NOT NULL DEFAULT FALSE,
			premium_expires_at TIMESTAMP,
			is_guest BOOLEAN NOT NULL DEFAULT FALSE,
			google_id VARCHAR(255) UNIQUE,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			last_login TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create refresh_tokens table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS refresh_tokens (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token TEXT UNIQUE NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create accounts table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			type VARCHAR(10) NOT NULL,
			balance NUMERIC(14,2) NOT NULL DEFAULT 0,
			currency VARCHAR(3) NOT NULL DEFAULT 'RUB',
			exchange_rate DOUBLE PRECISION NOT NULL DEFAULT 1,
			card_number VARCHAR(255),
			color VARCHAR(32),
			icon VARCHAR(32),
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			is_included_in_total BOOLEAN NOT NULL DEFAULT TRUE,
			target_amount NUMERIC(14,2),
			credit_start_date TIMESTAMP,
			credit_term INTEGER,
			credit_rate DOUBLE PRECISION,
			credit_payment_type VARCHAR(16),
			credit_initial_amount NUMERIC(14,2),
			synced_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create categories table (user_id is NULL for shared system categories)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS categories (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			type VARCHAR(10) NOT NULL,
			icon VARCHAR(32),
			color VARCHAR(32),
			is_system BOOLEAN NOT NULL DEFAULT FALSE,
			synced_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create transactions table. Account references are deliberately not
	// foreign keys: sync batches may carry transactions whose accounts were
	// upserted in the same batch, and account deletion cascades are handled
	// explicitly in the repository.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			account_id VARCHAR(36) NOT NULL,
			category_id VARCHAR(36),
			amount NUMERIC(14,2) NOT NULL,
			type VARCHAR(10) NOT NULL,
			date TIMESTAMP NOT NULL,
			description TEXT,
			to_account_id VARCHAR(36),
			synced_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create debts table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS debts (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type VARCHAR(12) NOT NULL,
			name VARCHAR(255) NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			is_included_in_total BOOLEAN NOT NULL DEFAULT TRUE,
			due_date TIMESTAMP,
			synced_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create currency_cache table. Global rows have an empty user_id; a
	// composite primary key cannot contain NULLs.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS currency_cache (
			base_currency VARCHAR(3) NOT NULL,
			target_currency VARCHAR(3) NOT NULL,
			user_id VARCHAR(36) NOT NULL DEFAULT '',
			rate DOUBLE PRECISION NOT NULL,
			source VARCHAR(16) NOT NULL,
			last_updated TIMESTAMP NOT NULL,
			PRIMARY KEY (base_currency, target_currency, user_id)
		)
	`)
	if err != nil {
		return err
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_categories_user_id ON categories(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date)",
		"CREATE INDEX IF NOT EXISTS idx_debts_user_id ON debts(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_refresh_tokens_token ON refresh_tokens(token)",
		"CREATE INDEX IF NOT EXISTS idx_currency_cache_updated ON currency_cache(last_updated)",
	}

	for _, idx := range indexes {
		_, err = db.Exec(idx)
		if err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}
