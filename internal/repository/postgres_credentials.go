package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
)

type PostgresCredentialsRepo struct {
	db *sql.DB
}

func NewPostgresCredentialsRepo(db *sql.DB) *PostgresCredentialsRepo {
	return &PostgresCredentialsRepo{db: db}
}

func (r *PostgresCredentialsRepo) FindValid(ctx context.Context, deviceID, token string, now time.Time) (*domain.AccessCredential, error) {
	var c domain.AccessCredential
	err := r.db.QueryRowContext(ctx,
		`SELECT credential_id, device_id, token, valid_from, valid_to, revoked
		 FROM access_credentials
		 WHERE device_id = $1
		   AND token = $2
		   AND valid_from <= $3
		   AND valid_to >= $3
		   AND revoked = false
		 LIMIT 1`,
		deviceID, token, now,
	).Scan(&c.CredentialID, &c.DeviceID, &c.Token, &c.ValidFrom, &c.ValidTo, &c.Revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query credential for device %s: %w", deviceID, err)
	}
	return &c, nil
}

// Claim is the single-use guard: the WHERE revoked = false condition plus the
// affected-row check make the revocation a compare-and-set, so two concurrent
// requests holding the same token cannot both win.
func (r *PostgresCredentialsRepo) Claim(ctx context.Context, credentialID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE access_credentials
		 SET revoked = true
		 WHERE credential_id = $1 AND revoked = false`,
		credentialID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim credential %s: %w", credentialID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result for %s: %w", credentialID, err)
	}
	return n == 1, nil
}

func (r *PostgresCredentialsRepo) Unclaim(ctx context.Context, credentialID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE access_credentials
		 SET revoked = false
		 WHERE credential_id = $1`,
		credentialID,
	)
	if err != nil {
		return fmt.Errorf("failed to unclaim credential %s: %w", credentialID, err)
	}
	return nil
}
