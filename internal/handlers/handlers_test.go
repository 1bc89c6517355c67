package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/biashadrive/biashadrive-backend/internal/routes"
	"github.com/biashadrive/biashadrive-backend/internal/services"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

const (
	testAdminKey = "test-admin-key"
	testPhone    = "254712345678"
)

// newTestApp wires a full API over the in-memory store with OTP delivery in
// development mode, so flows run end to end without external services.
func newTestApp(t *testing.T) (*fiber.App, *storage.MemoryStore) {
	t.Helper()
	t.Setenv("ADMIN_API_KEY", testAdminKey)

	store := storage.NewMemoryStore()
	dispatcher := services.NewDispatcher()

	app := fiber.New()
	routes.SetupRoutes(app, store, routes.Services{
		OTP:        services.NewOTPService(store, dispatcher, true),
		Auth:       services.NewAuthService(store, []byte("test-secret")),
		Mpesa:      services.NewMpesaService(store, dispatcher),
		Reports:    services.NewReportService(store),
		Dispatcher: dispatcher,
	})
	return app, store
}

// doJSON performs a request with an optional JSON body and extra headers,
// returning the response and its decoded body.
func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	decoded := map[string]interface{}{}
	if len(raw) > 0 && json.Valid(raw) {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

// loginUser runs the dev-mode OTP flow and returns a session token
func loginUser(t *testing.T, app *fiber.App, phone string) string {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/send-otp", fiber.Map{"phone": phone}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	code, _ := body["devOtp"].(string)
	require.Len(t, code, 6)

	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/verify-otp", fiber.Map{"phone": phone, "code": code}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func authHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func adminHeader() map[string]string {
	return map[string]string{"X-Admin-Key": testAdminKey}
}
