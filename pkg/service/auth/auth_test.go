package auth_test

import (
	"io"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/communitybank/corebank/pkg/config"
	"github.com/communitybank/corebank/pkg/service/auth"
	"github.com/communitybank/corebank/pkg/service/bank"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs before any tests and applies globally for all tests in the package.
func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newAuthService(t *testing.T) (*auth.Service, *bank.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := bank.New("Test Bank", auth.BcryptCredentials{}, logger)
	cfg := &config.Jwt{Secret: "test-secret", Expiry: time.Hour}
	return auth.New(b, cfg, logger), b
}

func TestLogin(t *testing.T) {
	t.Parallel()
	svc, b := newAuthService(t)

	_, err := b.RegisterCustomer(bank.RegisterCustomerParams{
		FirstName: "Ada",
		LastName:  "Nwosu",
		Email:     "ada@example.com",
		Password:  "s3cret-pw",
	})
	require.NoError(t, err)

	t.Run("valid credentials return a usable token", func(t *testing.T) {
		tokenString, c, err := svc.Login("ada@example.com", "s3cret-pw")
		require.NoError(t, err)
		require.NotEmpty(t, tokenString)

		parsed, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		id, err := auth.CustomerIDFromToken(parsed)
		require.NoError(t, err)
		assert.Equal(t, c.ID, id)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login("ada@example.com", "wrong")
		require.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login("ghost@example.com", "s3cret-pw")
		require.ErrorIs(t, err, auth.ErrUnauthorized)
	})
}

func TestCustomerIDFromToken(t *testing.T) {
	t.Parallel()

	t.Run("nil token", func(t *testing.T) {
		_, err := auth.CustomerIDFromToken(nil)
		require.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("missing claim", func(t *testing.T) {
		token := jwt.New(jwt.SigningMethodHS256)
		_, err := auth.CustomerIDFromToken(token)
		require.ErrorIs(t, err, auth.ErrUnauthorized)
	})
}
