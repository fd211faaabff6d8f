package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/config"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/database"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/handlers"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/models"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db // health endpoint pings the package-level handle

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		JWTAccessExpiry:   time.Hour,
		JWTRefreshExpiry:  24 * time.Hour,
		SignupBonusPoints: 50,
		TradeRewardPoints: 10,
		LockTimeout:       5 * time.Second,
	}

	contentFilter := services.NewContentFilter()
	ledger := services.NewLedgerService(db)
	escrow := services.NewEscrowService(db, ledger, cfg.TradeRewardPoints, cfg.LockTimeout)
	catalog := services.NewCatalogService(db, contentFilter)
	moderation := services.NewModerationService(db, escrow)
	authService := services.NewAuthService(db, cfg, ledger)

	app := fiber.New()
	Setup(app, cfg, db,
		handlers.NewAuthHandler(authService),
		handlers.NewHealthHandler(),
		handlers.NewItemHandler(catalog),
		handlers.NewSwapHandler(escrow),
		handlers.NewModerationHandler(moderation),
	)
	return app, db
}

func request(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode(t *testing.T, raw []byte, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out))
}

func registerUser(t *testing.T, app *fiber.App, email string) (token string, id string, points float64) {
	t.Helper()
	status, raw := request(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	var resp struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID     string  `json:"id"`
			Points float64 `json:"points"`
		} `json:"user"`
	}
	decode(t, raw, &resp)
	return resp.AccessToken, resp.User.ID, resp.User.Points
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := setupApp(t)
	status, raw := request(t, app, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
}

func TestRedemptionLifecycleOverHTTP(t *testing.T) {
	app, db := setupApp(t)

	ownerToken, _, _ := registerUser(t, app, "owner@example.com")
	requesterToken, _, _ := registerUser(t, app, "requester@example.com")
	staffToken, staffID, _ := registerUser(t, app, "staff@example.com")
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", staffID).
		Update("is_staff", true).Error)

	// List an item for 30 points.
	status, raw := request(t, app, http.MethodPost, "/api/items", ownerToken, fiber.Map{
		"title":       "Corduroy blazer",
		"description": "Barely worn, size L",
		"point_value": 30,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var item struct {
		ID               string `json:"id"`
		ModerationStatus string `json:"moderation_status"`
	}
	decode(t, raw, &item)
	require.Equal(t, "pending", item.ModerationStatus)

	// Pending items are invisible to the public.
	status, raw = request(t, app, http.MethodGet, "/api/items", "", nil)
	require.Equal(t, http.StatusOK, status)
	var listing []json.RawMessage
	decode(t, raw, &listing)
	require.Empty(t, listing)

	// Staff approve it through the moderation panel.
	status, raw = request(t, app, http.MethodGet, "/api/moderation/items?status=pending", staffToken, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var queue []json.RawMessage
	decode(t, raw, &queue)
	require.Len(t, queue, 1)

	status, raw = request(t, app, http.MethodPatch,
		"/api/moderation/items/"+item.ID+"/approve", staffToken, nil)
	require.Equal(t, http.StatusOK, status, string(raw))

	// Moderation is staff-gated.
	status, _ = request(t, app, http.MethodGet, "/api/moderation/items", ownerToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	// The requester redeems it; the hold lands immediately.
	status, raw = request(t, app, http.MethodPost, "/api/swaps", requesterToken, fiber.Map{
		"item_id": item.ID,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var swap struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Kind   string `json:"kind"`
	}
	decode(t, raw, &swap)
	require.Equal(t, "pending", swap.Status)
	require.Equal(t, "points", swap.Kind)

	status, raw = request(t, app, http.MethodGet, "/api/me", requesterToken, nil)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		Points float64 `json:"points"`
	}
	decode(t, raw, &me)
	require.Equal(t, float64(20), me.Points)

	// A duplicate pending request is refused.
	status, _ = request(t, app, http.MethodPost, "/api/swaps", requesterToken, fiber.Map{
		"item_id": item.ID,
	})
	require.Equal(t, http.StatusConflict, status)

	// Only the owner may resolve.
	status, _ = request(t, app, http.MethodPatch,
		"/api/swaps/"+swap.ID+"/approve", requesterToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, raw = request(t, app, http.MethodPatch,
		"/api/swaps/"+swap.ID+"/approve", ownerToken, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	decode(t, raw, &swap)
	require.Equal(t, "approved", swap.Status)

	// Uploader is paid the point value on top of their signup bonus.
	status, raw = request(t, app, http.MethodGet, "/api/me", ownerToken, nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, raw, &me)
	require.Equal(t, float64(80), me.Points)

	// The retired item is gone from the public catalog.
	status, _ = request(t, app, http.MethodGet, "/api/items/"+item.ID, "", nil)
	require.Equal(t, http.StatusNotFound, status)

	// A second approval of the same swap is refused.
	status, _ = request(t, app, http.MethodPatch,
		"/api/swaps/"+swap.ID+"/approve", ownerToken, nil)
	require.Equal(t, http.StatusConflict, status)
}

func TestSwapEndpointsRequireAuth(t *testing.T) {
	app, _ := setupApp(t)

	status, _ := request(t, app, http.MethodPost, "/api/swaps", "", fiber.Map{})
	require.Equal(t, http.StatusUnauthorized, status)
	status, _ = request(t, app, http.MethodGet, "/api/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	status, _ = request(t, app, http.MethodPost, "/api/items", "", fiber.Map{})
	require.Equal(t, http.StatusUnauthorized, status)
}
