package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
)

type PostgresUnitsRepo struct {
	db *sql.DB
}

func NewPostgresUnitsRepo(db *sql.DB) *PostgresUnitsRepo {
	return &PostgresUnitsRepo{db: db}
}

func (r *PostgresUnitsRepo) FindBySlug(ctx context.Context, slug string) (*domain.Unit, error) {
	var u domain.Unit
	err := r.db.QueryRowContext(ctx,
		`SELECT unit_id, slug, unit_name, published
		 FROM units
		 WHERE slug = $1`,
		slug,
	).Scan(&u.UnitID, &u.Slug, &u.UnitName, &u.Published)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query unit %s: %w", slug, err)
	}
	return &u, nil
}
