// Package auth provides credential hashing and token issuance around the
// bank registry. The registry itself treats credentials as opaque tokens;
// everything bcrypt- and JWT-shaped lives here.
package auth

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/communitybank/corebank/pkg/config"
	"github.com/communitybank/corebank/pkg/domain"
	"github.com/communitybank/corebank/pkg/domain/customer"
	"github.com/communitybank/corebank/pkg/service/bank"
	"github.com/communitybank/corebank/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthorized = fmt.Errorf("%w: unauthorized", domain.ErrValidation)

// BcryptCredentials implements the registry's credential contract with
// bcrypt hashes.
type BcryptCredentials struct{}

func (BcryptCredentials) Hash(password string) (string, error) {
	return utils.HashPassword(password)
}

func (BcryptCredentials) Verify(password, token string) bool {
	return utils.CheckPasswordHash(password, token)
}

// Service issues and inspects JWTs for authenticated customers.
type Service struct {
	bank   *bank.Service
	cfg    *config.Jwt
	logger *slog.Logger
}

func New(b *bank.Service, cfg *config.Jwt, logger *slog.Logger) *Service {
	return &Service{bank: b, cfg: cfg, logger: logger}
}

// Login verifies an email/password pair and returns a signed token plus the
// authenticated customer.
func (s *Service) Login(email, password string) (string, *customer.Customer, error) {
	log := s.logger.With("context", "Login", "email", email)

	c, err := s.bank.AuthenticateByEmail(email, password)
	if err != nil {
		log.Warn("login failed", "error", err)
		return "", nil, ErrUnauthorized
	}

	token, err := s.GenerateToken(c)
	if err != nil {
		log.Error("token generation failed", "error", err)
		return "", nil, err
	}
	log.Info("login successful", "customer_id", c.ID)
	return token, c, nil
}

// GenerateToken signs an HS256 token carrying the customer identity.
func (s *Service) GenerateToken(c *customer.Customer) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["customer_id"] = c.ID
	claims["email"] = c.Email
	claims["exp"] = time.Now().Add(s.cfg.Expiry).Unix()
	return token.SignedString([]byte(s.cfg.Secret))
}

// CustomerIDFromToken extracts the authenticated customer id from a parsed
// token, as attached to the request by the JWT middleware.
func CustomerIDFromToken(token *jwt.Token) (string, error) {
	if token == nil {
		return "", ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthorized
	}
	id, ok := claims["customer_id"].(string)
	if !ok || id == "" {
		return "", ErrUnauthorized
	}
	return id, nil
}
