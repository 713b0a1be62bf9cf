package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sweepSubject is the only subject accepted on the reminder trigger.
const sweepSubject = "reminder-sweep"

// SweepTokenService signs and checks the bearer token that an external
// scheduler presents on /check_payments.
type SweepTokenService struct {
	secret []byte
	now    func() time.Time
}

func NewSweepTokenService(secret string) *SweepTokenService {
	return &SweepTokenService{secret: []byte(secret), now: time.Now}
}

// IssueSweepToken returns an HS256 token valid for ttl.
func (s *SweepTokenService) IssueSweepToken(ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", invalid("ttl", "must be positive")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sweepSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign sweep token: %w", err)
	}
	return signed, nil
}

// ParseSweepToken accepts only unexpired HS256 tokens with the sweep subject.
func (s *SweepTokenService) ParseSweepToken(raw string) error {
	if raw == "" {
		return ErrInvalidToken
	}
	_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(sweepSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	return nil
}
