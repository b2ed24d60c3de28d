package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"library-backend/internal/platform/config"
)

const (
	RoleAdmin   = "Admin"
	RoleStudent = "Student"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	users  UserStore
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewService(cfg config.AuthConfig, users UserStore) *Service {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		// dev モードのみ。再起動するとトークンは無効になる
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
		log.Printf("[WARN] auth.secret is empty, using a random per-process secret")
	}
	return &Service{
		users:  users,
		secret: secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// POST /auth/login
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(u.UserID, u.Role)
}

func (s *Service) IssueToken(userID, role string) (string, error) {
	now := s.now()
	claims := Claims{
		Role: CanonicalRole(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) ParseToken(tokenStr string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		// alg 固定（none攻撃とか回避）
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	claims.Role = CanonicalRole(claims.Role)
	return &claims, nil
}

// CanonicalRole maps "admin", "ADMIN" and "Admin" to "Admin".
func CanonicalRole(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return ""
	}
	// Caser は状態を持つので呼び出しごとに作る
	return cases.Title(language.Und).String(strings.ToLower(role))
}
