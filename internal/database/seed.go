package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data.
// It creates a default admin user and a small location tree if none exist.
// The admin will be prompted to set up 2FA on first login (totp_enabled = false).
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Insert default admin user. 2FA is not enabled; they must set it up
	// on first login.
	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin@roadbook.local", string(hash), "Admin", "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// A minimal location tree so the site has something to resolve.
	var rootID string
	err = db.QueryRow(`
		INSERT INTO locations (name, slug, description)
		VALUES ('Россия', 'rossiya', 'Путешествия по России')
		RETURNING id
	`).Scan(&rootID)
	if err != nil {
		return fmt.Errorf("seed insert root location: %w", err)
	}

	for _, city := range []struct{ name, slug string }{
		{"Казань", "kazan"},
		{"Нижний Новгород", "nizhnij-novgorod"},
	} {
		if _, err := db.Exec(`
			INSERT INTO locations (name, slug, parent_id) VALUES ($1, $2, $3)
		`, city.name, city.slug, rootID); err != nil {
			return fmt.Errorf("seed insert location %s: %w", city.slug, err)
		}
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@roadbook.local",
		"password", "admin",
	)

	return nil
}
