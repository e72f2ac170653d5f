package keygate

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository returns a bun-backed Users store.
func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	prepareUserDefaults(record)

	if _, err := a.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create user")
	}

	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to query user by email")
	}

	return record, nil
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to query user by id")
	}

	return record, nil
}

func (a *users) Delete(ctx context.Context, id uuid.UUID) (*User, error) {
	record, err := a.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to delete user")
	}

	return record, nil
}

// SaveRefreshToken overwrites the single refresh-token slot for the user.
// Whatever token was stored before becomes permanently inert. Last writer
// wins when two logins race; no locking is layered on top of the single-row
// update.
func (a *users) SaveRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return a.setRefreshToken(ctx, id, token)
}

// ClearRefreshToken empties the slot, transitioning the user to logged out.
func (a *users) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	return a.setRefreshToken(ctx, id, "")
}

func (a *users) setRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	res, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("refresh_token = ?", sql.NullString{String: token, Valid: token != ""}).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update refresh token")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}

	return nil
}
