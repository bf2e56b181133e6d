package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "yeoubi-storefront"

type Config struct {
	AdminEmail        string
	AdminPasswordHash string
	Secret            string
	TTL               time.Duration
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator checks the single admin account and issues HS256 tokens.
type Authenticator struct {
	cfg Config
	now func() time.Time
}

func NewAuthenticator(cfg Config) *Authenticator {
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	return &Authenticator{cfg: cfg, now: time.Now}
}

// Login returns a signed token when email and password match the admin
// account.
func (a *Authenticator) Login(email, password string) (string, time.Time, error) {
	if a.cfg.AdminPasswordHash == "" {
		return "", time.Time{}, domain.ErrUnauthorized
	}
	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(email))),
		[]byte(strings.ToLower(a.cfg.AdminEmail)),
	) == 1
	pwErr := bcrypt.CompareHashAndPassword([]byte(a.cfg.AdminPasswordHash), []byte(password))
	if !emailOK || pwErr != nil {
		return "", time.Time{}, domain.ErrUnauthorized
	}

	now := a.now()
	expires := now.Add(a.cfg.TTL)
	claims := Claims{
		Email: a.cfg.AdminEmail,
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   a.cfg.AdminEmail,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expires, nil
}

func (a *Authenticator) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(a.cfg.Secret), nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	if claims.Role != "admin" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
