package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/poyrazK/keyportal/internal/core/domain"
)

// PostgresRepository implements ports.CredentialRepository and ports.AdminRepository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates and returns a new PostgresRepository instance.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	insertCredentialQuery = `INSERT INTO "API" ("ApiKey", "IssuedAt", "OutOfDate") VALUES ($1, $2, $3) RETURNING key_id`
	insertUserQuery       = `INSERT INTO "User" ("FirstName", "LastName", "Email", key_id) VALUES ($1, $2, $3, $4) RETURNING user_id`
	listUsersQuery        = `SELECT u.user_id, u."FirstName", u."LastName", u."Email", a."ApiKey", a."OutOfDate", a.key_id
	          FROM "User" u JOIN "API" a ON u.key_id = a.key_id
	          ORDER BY u.user_id DESC`
	selectUserKeyQuery    = `SELECT key_id FROM "User" WHERE user_id = $1`
	deleteUserQuery       = `DELETE FROM "User" WHERE user_id = $1`
	deleteCredentialQuery = `DELETE FROM "API" WHERE key_id = $1`
	insertAdminQuery      = `INSERT INTO "Admin" ("Email", "Password") VALUES ($1, $2) RETURNING admin_id`
	selectAdminQuery      = `SELECT admin_id, "Email", "Password" FROM "Admin" WHERE "Email" = $1 ORDER BY admin_id LIMIT 1`
)

func insertCredential(ctx context.Context, q DBTX, cred *domain.Credential) error {
	if cred.APIKey == "" {
		return fmt.Errorf("%w: api key is required", domain.ErrValidation)
	}
	return q.QueryRowContext(ctx, insertCredentialQuery, cred.APIKey, cred.IssuedAt, cred.ExpiresAt).Scan(&cred.KeyID)
}

func insertUser(ctx context.Context, q DBTX, user *domain.User) error {
	if err := domain.ValidateUser(user); err != nil {
		return err
	}
	return q.QueryRowContext(ctx, insertUserQuery, user.FirstName, user.LastName, user.Email, user.KeyID).Scan(&user.UserID)
}

// CreateCredential stores cred and sets its KeyID.
func (r *PostgresRepository) CreateCredential(ctx context.Context, cred *domain.Credential) error {
	return insertCredential(ctx, r.db, cred)
}

// CreateUser stores user and sets its UserID. All profile fields and KeyID are required.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) error {
	return insertUser(ctx, r.db, user)
}

func (r *PostgresRepository) CreateUserWithCredential(ctx context.Context, cred *domain.Credential, user *domain.User) error {
	return withTx(ctx, r.db, func(tx DBTX) error {
		if errCred := insertCredential(ctx, tx, cred); errCred != nil {
			return fmt.Errorf("insert credential: %w", errCred)
		}
		user.KeyID = cred.KeyID
		if errUser := insertUser(ctx, tx, user); errUser != nil {
			return fmt.Errorf("insert user: %w", errUser)
		}
		return nil
	})
}

func (r *PostgresRepository) ListUserCredentials(ctx context.Context) ([]domain.UserCredential, error) {
	rows, errQuery := r.db.QueryContext(ctx, listUsersQuery)
	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var out []domain.UserCredential
	for rows.Next() {
		var uc domain.UserCredential
		if errScan := rows.Scan(&uc.UserID, &uc.FirstName, &uc.LastName, &uc.Email, &uc.APIKey, &uc.ExpiresAt, &uc.KeyID); errScan != nil {
			return nil, errScan
		}
		out = append(out, uc)
	}
	if errRows := rows.Err(); errRows != nil {
		return nil, errRows
	}
	return out, nil
}

// DeleteUserAndCredential looks up the user's key_id, then deletes the user row
// followed by the credential row, all in one transaction. A failure of the
// second delete is reported as domain.ErrPartialDelete and rolled back.
func (r *PostgresRepository) DeleteUserAndCredential(ctx context.Context, userID int64) error {
	return withTx(ctx, r.db, func(tx DBTX) error {
		var keyID int64
		errRow := tx.QueryRowContext(ctx, selectUserKeyQuery, userID).Scan(&keyID)
		if errors.Is(errRow, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if errRow != nil {
			return errRow
		}

		if _, errUser := tx.ExecContext(ctx, deleteUserQuery, userID); errUser != nil {
			return fmt.Errorf("delete user %d: %w", userID, errUser)
		}
		if _, errCred := tx.ExecContext(ctx, deleteCredentialQuery, keyID); errCred != nil {
			return fmt.Errorf("delete credential %d of user %d: %w: %w", keyID, userID, domain.ErrPartialDelete, errCred)
		}
		return nil
	})
}

func (r *PostgresRepository) CreateAdmin(ctx context.Context, admin *domain.Admin) error {
	return r.db.QueryRowContext(ctx, insertAdminQuery, admin.Email, admin.PasswordHash).Scan(&admin.AdminID)
}

// GetAdminByEmail returns the oldest admin with the given email, since duplicates are allowed.
func (r *PostgresRepository) GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	var a domain.Admin
	errRow := r.db.QueryRowContext(ctx, selectAdminQuery, email).Scan(&a.AdminID, &a.Email, &a.PasswordHash)
	if errors.Is(errRow, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if errRow != nil {
		return nil, errRow
	}
	return &a, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
