package auth

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/platform/config"
)

type User struct {
	Username     string
	PasswordHash string
	UserID       string
	Role         string
}

type UserStore interface {
	// GetByUsername returns nil, nil when the user does not exist.
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// Store は設定ファイルの auth.users を保持する
type Store struct {
	users map[string]User
}

func NewStore(users []config.UserConfig) (*Store, error) {
	s := &Store{users: make(map[string]User, len(users))}
	for _, u := range users {
		name := strings.TrimSpace(u.Username)
		if name == "" || u.PasswordHash == "" || u.UserID == "" {
			return nil, fmt.Errorf("auth.users: username, password_hash and user_id are required")
		}
		if _, dup := s.users[name]; dup {
			return nil, fmt.Errorf("auth.users: duplicate username %q", name)
		}
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return nil, fmt.Errorf("auth.users[%s]: password_hash is not a bcrypt hash: %w", name, err)
		}
		s.users[name] = User{
			Username:     name,
			PasswordHash: u.PasswordHash,
			UserID:       u.UserID,
			Role:         CanonicalRole(u.Role),
		}
	}
	return s, nil
}

// DefaultUsers は開発用のデモユーザー (admin/admin123, student/student123)
func DefaultUsers() ([]config.UserConfig, error) {
	demo := []struct{ name, password, id, role string }{
		{"admin", "admin123", "1", RoleAdmin},
		{"student", "student123", "2", RoleStudent},
	}
	out := make([]config.UserConfig, 0, len(demo))
	for _, d := range demo {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		out = append(out, config.UserConfig{
			Username:     d.name,
			PasswordHash: string(hash),
			UserID:       d.id,
			Role:         d.role,
		})
	}
	log.Printf("[WARN] auth.users is empty, using demo users")
	return out, nil
}

func (s *Store) GetByUsername(_ context.Context, username string) (*User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
