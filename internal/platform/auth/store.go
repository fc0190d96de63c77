package auth

import (
	"context"
	"database/sql"
	"errors"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Role         string
	IsActive     bool
	CreatedAt    string
}

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
	Deactivate(ctx context.Context, id string) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) UserStore {
	return &Store{db: db}
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	const q = `
SELECT user_id, email, password_hash, name, phone, role, is_active, created_at
FROM users
WHERE email = ?
LIMIT 1
`
	return s.scanOne(ctx, q, email)
}

func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	const q = `
SELECT user_id, email, password_hash, name, phone, role, is_active, created_at
FROM users
WHERE user_id = ?
LIMIT 1
`
	return s.scanOne(ctx, q, id)
}

func (s *Store) scanOne(ctx context.Context, q string, arg any) (*User, error) {
	var u User
	var isActiveInt int
	err := s.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Phone,
		&u.Role,
		&isActiveInt,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if isActiveInt != 0 {
		u.IsActive = true
	}
	return &u, nil
}

func (s *Store) Create(ctx context.Context, u *User) error {
	const q = `
INSERT INTO users (user_id, email, password_hash, name, phone, role, is_active, created_at)
VALUES (?, ?, ?, ?, ?, ?, 1, NOW(6))
`
	_, err := s.db.ExecContext(ctx, q, u.ID, u.Email, u.PasswordHash, u.Name, u.Phone, u.Role)
	return err
}

// Deactivate: 物理削除はしない（担当者名が履歴から参照されるため）
func (s *Store) Deactivate(ctx context.Context, id string) (int64, error) {
	const q = `UPDATE users SET is_active = 0 WHERE user_id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
