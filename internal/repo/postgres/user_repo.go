package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	"github.com/iru21/datingapp/backend/internal/domain/model"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

// CredentialRecord carries the stored hash alongside the profile for the
// login path only; it never leaves the auth service.
type CredentialRecord struct {
	User         model.User
	PasswordHash string
	Role         string
}

type NewUserRecord struct {
	Username       string
	PasswordHash   string
	FirstName      string
	LastName       string
	Gender         enums.Gender
	Birthdate      time.Time
	City           string
	TelegramChatID *int64
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `
	u.id,
	u.username,
	COALESCE(u.first_name, ''),
	COALESCE(u.last_name, ''),
	u.gender,
	COALESCE(DATE_PART('year', AGE(NOW(), u.birthdate::timestamp))::int, 0),
	COALESCE(u.city, ''),
	u.telegram_chat_id,
	u.created_at`

// Create inserts a new user. The unique index on username is the
// conflict point; a taken name reports ErrUsernameTaken.
func (r *UserRepo) Create(ctx context.Context, rec NewUserRecord, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	rec.Username = strings.TrimSpace(rec.Username)
	if rec.Username == "" || rec.PasswordHash == "" {
		return 0, fmt.Errorf("invalid new user payload")
	}

	var userID int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (
	username,
	password_hash,
	first_name,
	last_name,
	gender,
	birthdate,
	city,
	telegram_chat_id,
	role,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'user', $9)
ON CONFLICT (username) DO NOTHING
RETURNING id
`,
		rec.Username,
		rec.PasswordHash,
		rec.FirstName,
		rec.LastName,
		string(rec.Gender),
		rec.Birthdate,
		rec.City,
		rec.TelegramChatID,
		now,
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	return userID, nil
}

func (r *UserRepo) FindByID(ctx context.Context, userID int64) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.User{}, ErrUserNotFound
	}

	var user model.User
	err := r.pool.QueryRow(ctx, `
SELECT`+userColumns+`
FROM users u
WHERE u.id = $1
`, userID).Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Gender,
		&user.Age,
		&user.City,
		&user.TelegramChatID,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (CredentialRecord, error) {
	if r.pool == nil {
		return CredentialRecord{}, fmt.Errorf("postgres pool is nil")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return CredentialRecord{}, ErrUserNotFound
	}

	var rec CredentialRecord
	err := r.pool.QueryRow(ctx, `
SELECT`+userColumns+`,
	u.password_hash,
	COALESCE(u.role, 'user')
FROM users u
WHERE LOWER(u.username) = LOWER($1)
`, username).Scan(
		&rec.User.ID,
		&rec.User.Username,
		&rec.User.FirstName,
		&rec.User.LastName,
		&rec.User.Gender,
		&rec.User.Age,
		&rec.User.City,
		&rec.User.TelegramChatID,
		&rec.User.CreatedAt,
		&rec.PasswordHash,
		&rec.Role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CredentialRecord{}, ErrUserNotFound
		}
		return CredentialRecord{}, fmt.Errorf("find user by username: %w", err)
	}

	return rec, nil
}

// SetTelegramChatID links (or clears, with nil) the push channel chat.
func (r *UserRepo) SetTelegramChatID(ctx context.Context, userID int64, chatID *int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return ErrUserNotFound
	}

	result, err := r.pool.Exec(ctx, `
UPDATE users
SET telegram_chat_id = $2
WHERE id = $1
`, userID, chatID)
	if err != nil {
		return fmt.Errorf("set telegram chat id: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SearchProfiles returns candidate users matching the gender/age window,
// excluding the given ids. GenderAny matches every profile.
func (r *UserRepo) SearchProfiles(ctx context.Context, gender enums.Gender, minAge, maxAge int, excludeIDs []int64, limit int) ([]model.User, error) {
	if r.pool == nil {
		return []model.User{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if excludeIDs == nil {
		excludeIDs = []int64{}
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+userColumns+`
FROM users u
WHERE
	($1 = 'ANY' OR u.gender = $1)
	AND COALESCE(DATE_PART('year', AGE(NOW(), u.birthdate::timestamp))::int, 0) BETWEEN $2 AND $3
	AND NOT (u.id = ANY($4))
ORDER BY u.created_at DESC, u.id DESC
LIMIT $5
`, string(gender), minAge, maxAge, excludeIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
	for rows.Next() {
		var user model.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.FirstName,
			&user.LastName,
			&user.Gender,
			&user.Age,
			&user.City,
			&user.TelegramChatID,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		users = append(users, user)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate profiles: %w", rows.Err())
	}

	return users, nil
}

func (r *UserRepo) CountProfiles(ctx context.Context, gender enums.Gender, minAge, maxAge int, excludeIDs []int64) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}
	if excludeIDs == nil {
		excludeIDs = []int64{}
	}

	var count int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM users u
WHERE
	($1 = 'ANY' OR u.gender = $1)
	AND COALESCE(DATE_PART('year', AGE(NOW(), u.birthdate::timestamp))::int, 0) BETWEEN $2 AND $3
	AND NOT (u.id = ANY($4))
`, string(gender), minAge, maxAge, excludeIDs).Scan(&count); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}

	return count, nil
}
