package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

var ErrBadToken = errors.New("invalid token")

// HashPassword accepts passwords of any length. bcrypt rejects input over 72
// bytes, so it is fed a fixed-size digest of the password.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(digest(pw), BcryptCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), digest(pw)) == nil
}

func digest(pw string) []byte {
	sum := sha256.Sum256([]byte(pw))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// Claims carries only the user id. Tokens never expire.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

func MakeToken(uid, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: uid}).SignedString([]byte(secret))
}

func ParseToken(raw, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Join(ErrBadToken, err)
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || c.UserID == "" {
		return nil, ErrBadToken
	}
	return c, nil
}

// TokenFromHeader returns the token of an "Authorization: Bearer <token>"
// header value, or "" when the header has no bearer token.
func TokenFromHeader(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
