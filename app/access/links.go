package access

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
)

// Scopes a link token can be bound to. A token opens exactly one resource.
const (
	ScopePayment  = "payment"
	ScopeReceipt  = "receipt"
	ScopeCustomer = "customer"
)

var ErrInvalidLink = errors.New("invalid access token")

type linkClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Signer issues and checks HS256 link tokens that grant read access to a
// single payment, receipt or customer record without an admin session.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Signer) Sign(scope string, id uint64) (string, error) {
	now := s.now()
	claims := &linkClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(id, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Signer) Verify(token, scope string, id uint64) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidLink
	}

	claims := &linkClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidLink
	}
	if claims.Scope != scope || claims.Subject != strconv.FormatUint(id, 10) {
		return ErrInvalidLink
	}
	return nil
}
