package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrUnauthorized = errors.New("unauthorized")

// AuthManager is the staff auth gate. There is a single shared staff
// password, checked against a configured bcrypt hash; a successful login
// mints a short-lived signed token instead of handing out anything derived
// from the password itself.
type AuthManager struct {
	secret       []byte
	passwordHash []byte
	ttl          time.Duration
}

func NewAuthManager(jwtSecret, passwordHash string, ttl time.Duration) *AuthManager {
	return &AuthManager{
		secret:       []byte(jwtSecret),
		passwordHash: []byte(passwordHash),
		ttl:          ttl,
	}
}

type StaffClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Login verifies the password and returns a signed bearer token.
func (a *AuthManager) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", ErrUnauthorized
	}
	return a.mint()
}

func (a *AuthManager) mint() (string, error) {
	now := time.Now()
	claims := StaffClaims{
		Role: "staff",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			Subject:   "staff",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *AuthManager) parse(tok string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// Authorize validates a raw bearer token value.
func (a *AuthManager) Authorize(token string) bool {
	_, err := a.parse(token)
	return err == nil
}

// Middleware guards staff routes with Bearer token authentication.
func (a *AuthManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := r.Header.Get("Authorization")
		if hdr == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !a.Authorize(strings.TrimSpace(hdr[7:])) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
