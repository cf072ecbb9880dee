package progress

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken  = errors.New("username taken")
	ErrBadCredentials = errors.New("invalid username or password")
	ErrNoLearner      = errors.New("learner not found")
)

// ValidationError is a rejected signup field.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Learner is a registered account.
type Learner struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store reads and writes learners, progress events and daily results.
type Store struct {
	db   *sql.DB
	cost int
}

func NewStore(db *sql.DB) *Store { return &Store{db: db, cost: bcrypt.DefaultCost} }

// DB exposes the handle for packages sharing the database.
func (s *Store) DB() *sql.DB { return s.db }

func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return &ValidationError{"username must be 3-24 characters"}
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return &ValidationError{"username: letters, numbers, underscore only"}
		}
	}
	if len(p) < 8 || len(p) > 72 {
		return &ValidationError{"password must be 8-72 characters"}
	}
	return nil
}

// CreateLearner validates input, hashes the password and inserts the account
// created at now. Usernames are unique case-insensitively.
func (s *Store) CreateLearner(ctx context.Context, username, password string, now time.Time) (*Learner, error) {
	username = strings.TrimSpace(username)
	if err := validateSignup(username, password); err != nil {
		return nil, err
	}
	if _, err := s.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNoLearner) {
		return nil, err
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	l := &Learner{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(h),
		CreatedAt:    now.UTC().Truncate(time.Second),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO learners (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		l.ID, l.Username, l.PasswordHash, l.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return l, nil
}

// Authenticate checks a username/password pair.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*Learner, error) {
	l, err := s.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrNoLearner) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(l.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return l, nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*Learner, error) {
	return s.scanLearner(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM learners WHERE username=?`, username))
}

func (s *Store) FindByID(ctx context.Context, id string) (*Learner, error) {
	return s.scanLearner(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM learners WHERE id=?`, id))
}

func (s *Store) scanLearner(row *sql.Row) (*Learner, error) {
	var l Learner
	var created string
	if err := row.Scan(&l.ID, &l.Username, &l.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoLearner
		}
		return nil, err
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &l, nil
}
