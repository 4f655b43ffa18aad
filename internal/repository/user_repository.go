package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hemensatbana/marketplace-api/internal/model"
	"github.com/hemensatbana/marketplace-api/internal/utils"
)

// UserRepo persists account records.
type UserRepo struct{ db *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumnsList = `id, first_name, last_name, email, phone, location,
	password_hash, rating, verified, avatar, created_at, updated_at`

func scanUser(s rowScanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone,
		&u.Location, &u.PasswordHash, &u.Rating, &u.Verified, &u.Avatar,
		&u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create hashes the password and inserts the user. The email is
// normalized to lower case; a duplicate email maps to ErrEmailExists.
// The generated id and timestamps are written back onto u.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `INSERT INTO users
			(id, first_name, last_name, email, phone, location,
			 password_hash, rating, verified, avatar, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.Phone, u.Location,
		u.PasswordHash, u.Rating, u.Verified, u.Avatar, u.CreatedAt, u.UpdatedAt)
	if isDuplicateKey(err) {
		return ErrEmailExists
	}
	return err
}

// GetByEmail fetches a user by normalized email. Returns ErrNotFound
// on a miss.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumnsList+` FROM users WHERE email = ? LIMIT 1`, email))
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id. Returns ErrNotFound on a miss.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumnsList+` FROM users WHERE id = ? LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UserPatch holds the optional profile fields of a partial update.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Location  *string
}

// IsEmpty reports whether the patch carries no changes.
func (p UserPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil && p.Location == nil
}

// UpdateProfile applies non-nil patch fields and refreshes updated_at.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, p UserPatch) error {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if p.FirstName != nil {
		add("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		add("last_name", *p.LastName)
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.Location != nil {
		add("location", *p.Location)
	}
	add("updated_at", time.Now().UTC())

	query := "UPDATE users SET " + strings.Join(set, ", ") + " WHERE id = ?"
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}
