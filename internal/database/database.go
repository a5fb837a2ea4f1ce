package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	apperrors "sigcast/internal/errors"
	"sigcast/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// Database is the SQLite-backed membership store. Member numbers are
// stored encrypted when SIGCAST_ENABLE_ENCRYPTION is set; channel
// numbers stay plaintext since they are the operator's own accounts.
type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

func New(dbPath string) (*Database, error) {
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600) // #nosec G304 - path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, apperrors.WrapRetryable(err, apperrors.ErrCodeStoreConnection, "failed to ping database")
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	encryptor, err := newEncryptor()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: encryptor}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// EnsureChannel creates or renames a channel row.
func (d *Database) EnsureChannel(ctx context.Context, channel *models.Channel) error {
	return withRetry(ctx, "ensureChannel", func() error {
		_, err := d.db.ExecContext(ctx, `
			INSERT INTO channels (phone_number, name, created_at)
			VALUES (?, ?, ?)
			ON CONFLICT(phone_number) DO UPDATE SET name = excluded.name
		`, channel.PhoneNumber, channel.Name, time.Now().UTC())
		return err
	})
}

// GetChannel returns nil without error when the channel does not exist.
func (d *Database) GetChannel(ctx context.Context, phoneNumber string) (*models.Channel, error) {
	channel := &models.Channel{}
	err := d.db.QueryRowContext(ctx, `
		SELECT phone_number, name, created_at FROM channels WHERE phone_number = ?
	`, phoneNumber).Scan(&channel.PhoneNumber, &channel.Name, &channel.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreQuery, "failed to get channel")
	}
	return channel, nil
}

// ListChannels returns every channel row, including channels provisioned
// over the control plane that are not yet in the polling configuration.
func (d *Database) ListChannels(ctx context.Context) ([]models.Channel, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT phone_number, name, created_at FROM channels ORDER BY created_at, phone_number
	`)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreQuery, "failed to list channels")
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var channel models.Channel
		if err := rows.Scan(&channel.PhoneNumber, &channel.Name, &channel.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}

func (d *Database) IsAdmin(ctx context.Context, channel, number string) (bool, error) {
	return d.hasMembership(ctx, channel, number, models.MembershipAdmin)
}

func (d *Database) IsPublisher(ctx context.Context, channel, number string) (bool, error) {
	return d.hasMembership(ctx, channel, number, models.MembershipPublisher)
}

func (d *Database) IsSubscriber(ctx context.Context, channel, number string) (bool, error) {
	return d.hasMembership(ctx, channel, number, models.MembershipSubscriber)
}

func (d *Database) hasMembership(ctx context.Context, channel, number, membershipType string) (bool, error) {
	encrypted, err := d.encryptor.EncryptForLookupIfEnabled(number)
	if err != nil {
		return false, fmt.Errorf("failed to encrypt member number: %w", err)
	}

	var count int
	err = d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM memberships
		WHERE channel_phone_number = ? AND member_number = ? AND membership_type = ?
	`, channel, encrypted, membershipType).Scan(&count)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeStoreQuery, "failed to check membership")
	}
	return count > 0, nil
}

func (d *Database) AddSubscriber(ctx context.Context, channel, number string) error {
	return d.addMembership(ctx, channel, number, models.MembershipSubscriber)
}

// AddAdmin grants admin standing, promoting an existing membership row of
// any type.
func (d *Database) AddAdmin(ctx context.Context, channel, number string) error {
	return d.addMembership(ctx, channel, number, models.MembershipAdmin)
}

func (d *Database) addMembership(ctx context.Context, channel, number, membershipType string) error {
	encrypted, err := d.encryptor.EncryptForLookupIfEnabled(number)
	if err != nil {
		return fmt.Errorf("failed to encrypt member number: %w", err)
	}

	err = withRetry(ctx, "addMembership", func() error {
		_, err := d.db.ExecContext(ctx, `
			INSERT INTO memberships (channel_phone_number, member_number, membership_type, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(channel_phone_number, member_number)
			DO UPDATE SET membership_type = excluded.membership_type
		`, channel, encrypted, membershipType, time.Now().UTC())
		return err
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStoreMutation, "failed to upsert membership")
	}
	return nil
}

// RemoveSubscriber removes the sender's membership row whatever its type,
// so an admin who leaves is gone entirely.
func (d *Database) RemoveSubscriber(ctx context.Context, channel, number string) (int64, error) {
	encrypted, err := d.encryptor.EncryptForLookupIfEnabled(number)
	if err != nil {
		return 0, fmt.Errorf("failed to encrypt member number: %w", err)
	}

	var affected int64
	err = withRetry(ctx, "removeSubscriber", func() error {
		result, err := d.db.ExecContext(ctx, `
			DELETE FROM memberships WHERE channel_phone_number = ? AND member_number = ?
		`, channel, encrypted)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeStoreMutation, "failed to remove membership")
	}
	return affected, nil
}

func (d *Database) RemoveAdmin(ctx context.Context, channel, number string) (int64, error) {
	encrypted, err := d.encryptor.EncryptForLookupIfEnabled(number)
	if err != nil {
		return 0, fmt.Errorf("failed to encrypt member number: %w", err)
	}

	var affected int64
	err = withRetry(ctx, "removeAdmin", func() error {
		result, err := d.db.ExecContext(ctx, `
			DELETE FROM memberships
			WHERE channel_phone_number = ? AND member_number = ? AND membership_type = ?
		`, channel, encrypted, models.MembershipAdmin)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeStoreMutation, "failed to remove admin membership")
	}
	return affected, nil
}

func (d *Database) ListAdmins(ctx context.Context, channel string) ([]string, error) {
	return d.listMembers(ctx, channel, models.MembershipAdmin)
}

func (d *Database) ListSubscribers(ctx context.Context, channel string) ([]string, error) {
	return d.listMembers(ctx, channel, models.MembershipSubscriber)
}

func (d *Database) listMembers(ctx context.Context, channel, membershipType string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT member_number FROM memberships
		WHERE channel_phone_number = ? AND membership_type = ?
		ORDER BY created_at, id
	`, channel, membershipType)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreQuery, "failed to list members")
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var encrypted string
		if err := rows.Scan(&encrypted); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		number, err := d.encryptor.DecryptIfEnabled(encrypted)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt member number: %w", err)
		}
		members = append(members, number)
	}
	return members, rows.Err()
}

func (d *Database) CountAdmins(ctx context.Context, channel string) (int, error) {
	return d.countMembers(ctx, channel, models.MembershipAdmin)
}

func (d *Database) CountSubscribers(ctx context.Context, channel string) (int, error) {
	return d.countMembers(ctx, channel, models.MembershipSubscriber)
}

func (d *Database) countMembers(ctx context.Context, channel, membershipType string) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM memberships
		WHERE channel_phone_number = ? AND membership_type = ?
	`, channel, membershipType).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeStoreQuery, "failed to count members")
	}
	return count, nil
}
