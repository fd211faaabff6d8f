package services

import (
	"testing"
	"time"

	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/apperr"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/config"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuth(db *gorm.DB) *AuthService {
	cfg := &config.Config{
		JWTSecret:         "test-secret",
		JWTAccessExpiry:   time.Hour,
		JWTRefreshExpiry:  24 * time.Hour,
		SignupBonusPoints: 50,
	}
	return NewAuthService(db, cfg, NewLedgerService(db))
}

func TestRegisterGrantsSignupBonus(t *testing.T) {
	db := setupDB(t)
	auth := newAuth(db)

	resp, err := auth.Register(&dto.RegisterRequest{
		Email:       "ada@example.com",
		Password:    "correct-horse",
		DisplayName: "Ada",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, 50, resp.User.Points)
	require.False(t, resp.User.IsStaff)

	// The bonus is on the ledger, not just the balance column.
	history, err := NewLedgerService(db).History(resp.User.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, ReasonSignupBonus, history[0].Reason)
}

func TestRegisterValidation(t *testing.T) {
	db := setupDB(t)
	auth := newAuth(db)

	_, err := auth.Register(&dto.RegisterRequest{Email: "", Password: "long-enough"})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = auth.Register(&dto.RegisterRequest{Email: "a@example.com", Password: "short"})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupDB(t)
	auth := newAuth(db)

	_, err := auth.Register(&dto.RegisterRequest{Email: "dup@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = auth.Register(&dto.RegisterRequest{Email: "dup@example.com", Password: "correct-horse"})
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestLogin(t *testing.T) {
	db := setupDB(t)
	auth := newAuth(db)

	_, err := auth.Register(&dto.RegisterRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	resp, err := auth.Login(&dto.LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	_, err = auth.Login(&dto.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	require.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	_, err = auth.Login(&dto.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})
	require.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestRefreshRotatesToken(t *testing.T) {
	db := setupDB(t)
	auth := newAuth(db)

	registered, err := auth.Register(&dto.RegisterRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	refreshed, err := auth.Refresh(&dto.RefreshRequest{RefreshToken: registered.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// The old token is single-use.
	_, err = auth.Refresh(&dto.RefreshRequest{RefreshToken: registered.RefreshToken})
	require.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := setupDB(t)
	auth := newAuth(db)

	registered, err := auth.Register(&dto.RegisterRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(&dto.LogoutRequest{RefreshToken: registered.RefreshToken}))

	_, err = auth.Refresh(&dto.RefreshRequest{RefreshToken: registered.RefreshToken})
	require.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestMe(t *testing.T) {
	db := setupDB(t)
	auth := newAuth(db)

	registered, err := auth.Register(&dto.RegisterRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	user, err := auth.Me(registered.User.ID)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)
	require.Equal(t, 50, user.Points)

	_, err = auth.Me(uuid.New())
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
