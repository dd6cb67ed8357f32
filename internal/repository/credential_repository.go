package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/manocorp/account-service/internal/domain"
)

// CredentialRepository manages credential persistence.
type CredentialRepository interface {
	Create(ctx context.Context, cred *domain.Credential) error
	GetActiveByUser(ctx context.Context, userID string) (*domain.Credential, error)
	// GetByUserAndResetToken matches the credential on its owner AND the
	// exact outstanding token. Blank tokens never match.
	GetByUserAndResetToken(ctx context.Context, userID, token string) (*domain.Credential, error)
	SetResetToken(ctx context.Context, credentialID, token string) error
	// ConsumeResetToken atomically writes the new digest and clears the
	// token, guarded by the original token value so that two concurrent
	// consumptions cannot both succeed. Returns pgx.ErrNoRows when the
	// token was already consumed or never issued.
	ConsumeResetToken(ctx context.Context, userID, token, newHash, newSalt string) error
}

type credentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository constructs repository.
func NewCredentialRepository(pool *pgxpool.Pool) CredentialRepository {
	return &credentialRepository{pool: pool}
}

const credentialColumns = `id, user_id, password_hash, salt, active, reset_token, created_at, updated_at, deleted_at`

func (r *credentialRepository) Create(ctx context.Context, cred *domain.Credential) error {
	const query = `
        INSERT INTO credentials (user_id, password_hash, salt, active, reset_token)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		cred.UserID,
		cred.PasswordHash,
		cred.Salt,
		cred.Active,
		cred.ResetToken,
	).Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)
}

func (r *credentialRepository) GetActiveByUser(ctx context.Context, userID string) (*domain.Credential, error) {
	const query = `
        SELECT ` + credentialColumns + ` FROM credentials
        WHERE user_id=$1 AND active AND deleted_at IS NULL`
	return r.scanOne(ctx, query, userID)
}

func (r *credentialRepository) GetByUserAndResetToken(ctx context.Context, userID, token string) (*domain.Credential, error) {
	const query = `
        SELECT ` + credentialColumns + ` FROM credentials
        WHERE user_id=$1 AND reset_token=$2 AND reset_token <> ''
          AND active AND deleted_at IS NULL`
	return r.scanOne(ctx, query, userID, token)
}

func (r *credentialRepository) SetResetToken(ctx context.Context, credentialID, token string) error {
	const query = `
        UPDATE credentials SET reset_token=$1, updated_at=NOW()
        WHERE id=$2 AND active AND deleted_at IS NULL`

	cmd, err := r.pool.Exec(ctx, query, token, credentialID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *credentialRepository) ConsumeResetToken(ctx context.Context, userID, token, newHash, newSalt string) error {
	const query = `
        UPDATE credentials
        SET password_hash=$1, salt=$2, reset_token='', updated_at=NOW()
        WHERE user_id=$3 AND reset_token=$4 AND reset_token <> ''
          AND active AND deleted_at IS NULL`

	cmd, err := r.pool.Exec(ctx, query, newHash, newSalt, userID, token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *credentialRepository) scanOne(ctx context.Context, query string, args ...any) (*domain.Credential, error) {
	var cred domain.Credential
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&cred.ID,
		&cred.UserID,
		&cred.PasswordHash,
		&cred.Salt,
		&cred.Active,
		&cred.ResetToken,
		&cred.CreatedAt,
		&cred.UpdatedAt,
		&cred.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &cred, nil
}
