package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/auth"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/httpx"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthRequired(secret), func(c *fiber.Ctx) error {
		id, err := httpx.LocalString(c, httpx.LocalUserID)
		if err != nil {
			return err
		}
		return c.SendString(id)
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	valid, err := auth.GenerateToken("u1", secret, time.Now(), time.Hour)
	require.NoError(t, err)
	expired, err := auth.GenerateToken("u1", secret, time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing header", "", 401, common.CodeUnauthorized},
		{"wrong scheme", "Basic abc", 401, common.CodeUnauthorized},
		{"garbage token", "Bearer not.a.jwt", 401, common.CodeUnauthorized},
		{"expired token", "Bearer " + expired, 401, common.CodeTokenExpired},
		{"valid token", "Bearer " + valid, 200, ""},
	}

	app := newTestApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantCode != "" {
				var env api.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
				assert.Equal(t, tt.wantCode, env.Code)
			}
		})
	}
}
