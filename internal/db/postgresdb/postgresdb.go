// Package postgresdb provides a PostgreSQL-based implementation of the
// storage interface. It connects through the pgx stdlib adapter and brings
// the schema up to date with goose migrations on startup.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/vishnucprasad/bookmarkapi/internal/models"
	"github.com/vishnucprasad/bookmarkapi/internal/user"
)

// PostgresDB is the PostgreSQL-backed storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

// uniqueViolationCode is the PostgreSQL error code for unique constraint
// violations.
const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// New establishes a connection to the PostgreSQL database, runs schema
// migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
) (*PostgresDB, error) {
	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}, nil
}

// CreateUser inserts a new user record and returns the assigned id.
// A duplicate email surfaces as models.ErrEmailAlreadyTaken; the unique
// index guarantees no partial row remains.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (int, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			INSERT INTO users (email, password_hash, first_name, last_name)
				VALUES ($1, $2, $3, $4)
				RETURNING id
		`,
		usr.Email,
		usr.PasswordHash,
		usr.FirstName,
		usr.LastName,
	)

	var userID int
	if err := row.Scan(&userID); err != nil {
		if isUniqueViolation(err) {
			return 0, models.ErrEmailAlreadyTaken
		}
		return 0, err
	}

	return userID, nil
}

const userColumns = `id, email, password_hash, first_name, last_name, created_at, updated_at`

func scanUser(row *sql.Row) (*user.User, bool, error) {
	usr := &user.User{}
	err := row.Scan(
		&usr.ID,
		&usr.Email,
		&usr.PasswordHash,
		&usr.FirstName,
		&usr.LastName,
		&usr.CreatedAt,
		&usr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return usr, true, nil
}

// FindUserByEmail looks a user up by exact email match.
func (db *PostgresDB) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	)

	return scanUser(row)
}

// FindUserByID looks a user up by id.
func (db *PostgresDB) FindUserByID(ctx context.Context, userID int) (*user.User, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	)

	return scanUser(row)
}

// UpdateUser applies the non-nil fields of the patch. NULL arguments keep
// the stored value through COALESCE.
func (db *PostgresDB) UpdateUser(
	ctx context.Context,
	userID int,
	patch models.EditUserRequest,
) (*user.User, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			UPDATE users
				SET email = COALESCE($2, email),
					first_name = COALESCE($3, first_name),
					last_name = COALESCE($4, last_name),
					updated_at = now()
				WHERE id = $1
				RETURNING `+userColumns,
		userID,
		patch.Email,
		patch.FirstName,
		patch.LastName,
	)

	usr, found, err := scanUser(row)
	if err != nil && isUniqueViolation(err) {
		return nil, true, models.ErrEmailAlreadyTaken
	}

	return usr, found, err
}

const bookmarkColumns = `id, user_id, title, link, description, created_at, updated_at`

func scanBookmark(row *sql.Row) (*models.Bookmark, bool, error) {
	bookmark := &models.Bookmark{}
	err := row.Scan(
		&bookmark.ID,
		&bookmark.UserID,
		&bookmark.Title,
		&bookmark.Link,
		&bookmark.Description,
		&bookmark.CreatedAt,
		&bookmark.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return bookmark, true, nil
}

// CreateBookmark inserts a new bookmark and returns it with the assigned id
// and timestamps.
func (db *PostgresDB) CreateBookmark(
	ctx context.Context,
	bookmark *models.Bookmark,
) (*models.Bookmark, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			INSERT INTO bookmarks (user_id, title, link, description)
				VALUES ($1, $2, $3, $4)
				RETURNING `+bookmarkColumns,
		bookmark.UserID,
		bookmark.Title,
		bookmark.Link,
		bookmark.Description,
	)

	created, _, err := scanBookmark(row)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, errors.New("insert returned no row")
	}

	return created, nil
}

// FindBookmarkByID fetches a bookmark by id alone, regardless of its owner.
func (db *PostgresDB) FindBookmarkByID(
	ctx context.Context,
	bookmarkID int,
) (*models.Bookmark, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = $1`,
		bookmarkID,
	)

	return scanBookmark(row)
}

// FindUserBookmark fetches a bookmark only when it exists and is owned by
// the given user.
func (db *PostgresDB) FindUserBookmark(
	ctx context.Context,
	userID int,
	bookmarkID int,
) (*models.Bookmark, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = $1 AND user_id = $2`,
		bookmarkID,
		userID,
	)

	return scanBookmark(row)
}

// GetUserBookmarks returns all bookmarks owned by the user, ordered by id.
func (db *PostgresDB) GetUserBookmarks(ctx context.Context, userID int) ([]models.Bookmark, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Bookmark{}
	for rows.Next() {
		var bookmark models.Bookmark
		err := rows.Scan(
			&bookmark.ID,
			&bookmark.UserID,
			&bookmark.Title,
			&bookmark.Link,
			&bookmark.Description,
			&bookmark.CreatedAt,
			&bookmark.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, bookmark)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateBookmark applies the non-nil fields of the patch. The update is
// keyed by id alone; ownership is checked by the caller before the write,
// so a concurrent delete simply makes the update affect zero rows, which is
// reported through the boolean.
func (db *PostgresDB) UpdateBookmark(
	ctx context.Context,
	bookmarkID int,
	patch models.EditBookmarkRequest,
) (*models.Bookmark, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			UPDATE bookmarks
				SET title = COALESCE($2, title),
					link = COALESCE($3, link),
					description = COALESCE($4, description),
					updated_at = now()
				WHERE id = $1
				RETURNING `+bookmarkColumns,
		bookmarkID,
		patch.Title,
		patch.Link,
		patch.Description,
	)

	return scanBookmark(row)
}

// DeleteBookmark removes the bookmark. The boolean reports whether a row
// was actually removed.
func (db *PostgresDB) DeleteBookmark(ctx context.Context, bookmarkID int) (bool, error) {
	result, err := db.database.ExecContext(
		ctx,
		`DELETE FROM bookmarks WHERE id = $1`,
		bookmarkID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// GetNumberOfUsers returns the total user count.
func (db *PostgresDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	var count int64
	err := db.database.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&count)

	return count, err
}

// GetNumberOfBookmarks returns the total bookmark count.
func (db *PostgresDB) GetNumberOfBookmarks(ctx context.Context) (int64, error) {
	var count int64
	err := db.database.QueryRowContext(ctx, `SELECT count(*) FROM bookmarks`).Scan(&count)

	return count, err
}

// Ping checks the database connection within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(pingCtx)
}

// Close closes the underlying connection pool.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}
