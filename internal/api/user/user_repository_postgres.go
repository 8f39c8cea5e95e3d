package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-task-manager-api/app/db"
	"github.com/FACorreiaa/go-task-manager-api/app/observability/metrics"
	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

const userColumns = `id::text, name, email, password_hash, created_at, updated_at`

type PostgresUserRepo struct {
	logger *slog.Logger
	db     database.DBTX
}

func NewPostgresUserRepo(db database.DBTX, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		db:     db,
	}
}

func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, userID string) (user *types.User, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "postgresql", "GetUserByID", start, err) }(time.Now())

	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, types.ErrNotFound
	}

	user, err = scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("error fetching user by id: %w", err)
	}
	return user, err
}

func (r *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (user *types.User, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "postgresql", "GetUserByEmail", start, err) }(time.Now())

	user, err = scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("error fetching user by email: %w", err)
	}
	return user, err
}

func (r *PostgresUserRepo) CreateUser(ctx context.Context, user *types.User) (created *types.User, err error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "postgresql", "CreateUser", start, err) }(time.Now())

	query := `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	created, err = scanUser(r.db.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("email %s: %w", user.Email, types.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	r.logger.DebugContext(ctx, "User inserted", slog.String("userID", created.ID))
	return created, nil
}

func (r *PostgresUserRepo) EmailTakenByOther(ctx context.Context, email, excludeID string) (taken bool, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "postgresql", "EmailTakenByOther", start, err) }(time.Now())

	exclude, parseErr := uuid.Parse(excludeID)
	if parseErr != nil {
		exclude = uuid.Nil
	}

	err = r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, exclude).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("error checking email ownership: %w", err)
	}
	return taken, nil
}

func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, userID, name, email string) (user *types.User, err error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "UpdateProfile", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID),
	))
	defer span.End()
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "postgresql", "UpdateProfile", start, err) }(time.Now())

	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, types.ErrNotFound
	}

	query := `
		UPDATE users
		SET name = $1, email = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + userColumns

	user, err = scanUser(r.db.QueryRow(ctx, query, name, email, id))
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "profile updated")
		return user, nil
	case errors.Is(err, types.ErrNotFound):
		return nil, err
	case database.IsUniqueViolation(err):
		return nil, fmt.Errorf("email %s: %w", email, types.ErrConflict)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
}

func (r *PostgresUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) (err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "postgresql", "UpdatePassword", start, err) }(time.Now())

	id, err := uuid.Parse(userID)
	if err != nil {
		return types.ErrNotFound
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
