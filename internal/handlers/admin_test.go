package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biashadrive/biashadrive-backend/internal/models"
)

func TestExportReport(t *testing.T) {
	app, store := newTestApp(t)

	user, err := store.CreateUser(&models.User{Phone: testPhone})
	require.NoError(t, err)
	_, err = store.CreateTransaction(&models.Transaction{UserID: user.UserID, Amount: 1500})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/reports/export", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "attachment;"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	// xlsx files are zip archives
	require.Greater(t, len(data), 4)
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}

func TestExportReportRequiresAdminKey(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/reports/export", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
