package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/manocorp/account-service/internal/domain"
)

// ErrDuplicate signals a unique-constraint violation, distinct from "not found".
var ErrDuplicate = errors.New("duplicate row")

// PageSize is the number of users returned per listing page.
const PageSize = 20

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByUsername finds a user regardless of status.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetActiveByUsername finds a user that is active and not soft-deleted.
	GetActiveByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, page int) ([]*domain.User, error)
	SoftDelete(ctx context.Context, username string) (*domain.User, error)
	UsernameTakenByOther(ctx context.Context, username, excludeID string) (bool, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, email, is_active, created_at, updated_at, deleted_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, email, is_active)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapUnique(err)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, email=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.IsActive,
		user.ID,
	).Scan(&user.UpdatedAt)
	return mapUnique(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanOne(ctx, query, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return r.scanOne(ctx, query, username)
}

func (r *userRepository) GetActiveByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + ` FROM users
        WHERE username=$1 AND is_active AND deleted_at IS NULL`
	return r.scanOne(ctx, query, username)
}

func (r *userRepository) List(ctx context.Context, page int) ([]*domain.User, error) {
	if page < 1 {
		page = 1
	}
	const query = `
        SELECT ` + userColumns + ` FROM users
        WHERE is_active AND deleted_at IS NULL
        ORDER BY username ASC
        OFFSET $1 LIMIT $2`

	rows, err := r.pool.Query(ctx, query, (page-1)*PageSize, PageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0, PageSize)
	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

func (r *userRepository) SoftDelete(ctx context.Context, username string) (*domain.User, error) {
	const query = `
        UPDATE users
        SET is_active=false, username = username || $2, deleted_at=NOW(), updated_at=NOW()
        WHERE username=$1 AND deleted_at IS NULL
        RETURNING ` + userColumns

	var user domain.User
	row := r.pool.QueryRow(ctx, query, username, domain.DeletedMarker)
	if err := scanUser(row, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UsernameTakenByOther(ctx context.Context, username, excludeID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE username=$1 AND id <> $2)`
	var taken bool
	if err := r.pool.QueryRow(ctx, query, username, excludeID).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

func (r *userRepository) scanOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, arg), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func scanUser(row pgx.Row, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)
}

// mapUnique translates postgres unique violations into ErrDuplicate.
func mapUnique(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
