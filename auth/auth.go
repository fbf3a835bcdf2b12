// Package auth issues and reads the signed session cookie and hashes
// passwords.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"folio/domain"
)

const (
	CookieName = "Authorization"
	TokenTTL   = 7 * 24 * time.Hour

	contextKey = "user"
)

var ErrMissingSecret = errors.New("missing secret")

// Claims carry the session inside the token.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Session() domain.Session {
	return domain.Session{UserID: c.Subject, Email: c.Email, Role: c.Role}
}

func IssueToken(sess domain.Session, secret string, now time.Time) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	claims := Claims{
		Email: sess.Email,
		Role:  sess.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseToken(token, secret string) (domain.Session, error) {
	if secret == "" {
		return domain.Session{}, ErrMissingSecret
	}
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return domain.Session{}, err
	}
	if claims.Subject == "" {
		return domain.Session{}, errors.New("token has no subject")
	}
	return claims.Session(), nil
}

// Cookie signs sess into the session cookie.
func Cookie(sess domain.Session, secret string, now time.Time) (*http.Cookie, error) {
	token, err := IssueToken(sess, secret, now)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(TokenTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.ErrInvalidLogin
	}
	return nil
}

// Middleware reads the session cookie on every request. Requests without a
// valid token carry on anonymously; the route guard decides what they see.
func Middleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: echojwt.AlgorithmHS256,
		TokenLookup:   "cookie:" + CookieName,
		ContextKey:    contextKey,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(Claims)
		},
		ContinueOnIgnoredError: true,
		ErrorHandler: func(echo.Context, error) error {
			return nil
		},
	})
}

// SessionFrom returns the caller's session, the zero session when anonymous.
func SessionFrom(c echo.Context) domain.Session {
	token, ok := c.Get(contextKey).(*jwt.Token)
	if !ok || !token.Valid {
		return domain.Session{}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return domain.Session{}
	}
	return claims.Session()
}
