package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"goaccounts/internal/accounts/domain/entities"
	"goaccounts/internal/accounts/domain/services"
	"goaccounts/internal/accounts/ports/repositories"
	"goaccounts/pkg/logger"
)

// Код unique_violation PostgreSQL, возникает при гонке по email.
const uniqueViolationCode = "23505"

type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// AccountRepository реализует интерфейс repositories.AccountRepository для работы с Postgres.
type AccountRepository struct {
	pool PgxPoolInterface
}

// NewAccountRepository создает новый экземпляр репозитория учетных записей.
func NewAccountRepository(pool PgxPoolInterface) repositories.AccountRepository {
	return &AccountRepository{pool: pool}
}

// isUniqueViolation определяет нарушение уникального индекса по email.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// FindByID находит учетную запись по ID.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*entities.Account, error) {
	log := logger.Log(ctx).With(zap.String("repository", "account"), zap.String("method", "FindByID"))

	query := `
        SELECT id, email, username, first_name, last_name, password_hash,
               is_active, is_staff, is_superuser, created_at, updated_at
        FROM accounts
        WHERE id = $1
    `

	var account entities.Account
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.Email,
		&account.Username,
		&account.FirstName,
		&account.LastName,
		&account.PasswordHash,
		&account.IsActive,
		&account.IsStaff,
		&account.IsSuperuser,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "account not found", zap.String("id", id))
			return nil, entities.ErrAccountNotFound
		}
		log.Error(ctx, "error finding account by id", zap.Error(err))
		return nil, fmt.Errorf("error querying account by id: %w", err)
	}

	return &account, nil
}

// FindByEmail находит учетную запись по нормализованному email.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entities.Account, error) {
	log := logger.Log(ctx).With(zap.String("repository", "account"), zap.String("method", "FindByEmail"))

	query := `
        SELECT id, email, username, first_name, last_name, password_hash,
               is_active, is_staff, is_superuser, created_at, updated_at
        FROM accounts
        WHERE email = $1
    `

	var account entities.Account
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&account.ID,
		&account.Email,
		&account.Username,
		&account.FirstName,
		&account.LastName,
		&account.PasswordHash,
		&account.IsActive,
		&account.IsStaff,
		&account.IsSuperuser,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "account not found", zap.String("email", email))
			return nil, entities.ErrAccountNotFound
		}
		log.Error(ctx, "error finding account by email", zap.Error(err))
		return nil, fmt.Errorf("error querying account by email: %w", err)
	}

	return &account, nil
}

// Create создает новую учетную запись.
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) (*entities.Account, error) {
	log := logger.Log(ctx).With(zap.String("repository", "account"), zap.String("method", "Create"))

	query := `
        INSERT INTO accounts (email, username, first_name, last_name, password_hash,
                              is_active, is_staff, is_superuser)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, email, username, first_name, last_name, password_hash,
                  is_active, is_staff, is_superuser, created_at, updated_at
    `

	var created entities.Account
	err := r.pool.QueryRow(ctx, query,
		account.Email,
		account.Username,
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		account.IsActive,
		account.IsStaff,
		account.IsSuperuser,
	).Scan(
		&created.ID,
		&created.Email,
		&created.Username,
		&created.FirstName,
		&created.LastName,
		&created.PasswordHash,
		&created.IsActive,
		&created.IsStaff,
		&created.IsSuperuser,
		&created.CreatedAt,
		&created.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Debug(ctx, "duplicate email on insert", zap.String("email", account.Email))
			return nil, services.ErrEmailAlreadyExists
		}
		log.Error(ctx, "error creating account", zap.Error(err))
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	return &created, nil
}

// Update обновляет учетную запись целиком.
func (r *AccountRepository) Update(ctx context.Context, account *entities.Account) (*entities.Account, error) {
	log := logger.Log(ctx).With(zap.String("repository", "account"), zap.String("method", "Update"))

	query := `
        UPDATE accounts
        SET email = $2, username = $3, first_name = $4, last_name = $5,
            password_hash = $6, is_active = $7, updated_at = $8
        WHERE id = $1
        RETURNING id, email, username, first_name, last_name, password_hash,
                  is_active, is_staff, is_superuser, created_at, updated_at
    `

	var updated entities.Account
	now := time.Now().UTC()

	err := r.pool.QueryRow(ctx, query,
		account.ID,
		account.Email,
		account.Username,
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		account.IsActive,
		now,
	).Scan(
		&updated.ID,
		&updated.Email,
		&updated.Username,
		&updated.FirstName,
		&updated.LastName,
		&updated.PasswordHash,
		&updated.IsActive,
		&updated.IsStaff,
		&updated.IsSuperuser,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "account not found for update", zap.String("id", account.ID))
			return nil, entities.ErrAccountNotFound
		}
		if isUniqueViolation(err) {
			log.Debug(ctx, "duplicate email on update", zap.String("email", account.Email))
			return nil, services.ErrEmailAlreadyExists
		}
		log.Error(ctx, "error updating account", zap.Error(err))
		return nil, fmt.Errorf("error updating account: %w", err)
	}

	return &updated, nil
}
