package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biashadrive/biashadrive-backend/internal/models"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

func seedExpert(t *testing.T, store *storage.MemoryStore, name, domains string, rating float64, verified, available bool) *models.Expert {
	t.Helper()

	expert := &models.Expert{
		Name:      name,
		Email:     name + "@example.com",
		Phone:     "254733000001",
		County:    "Nairobi",
		RateMin:   1000,
		RateMax:   3000,
		Rating:    rating,
		Verified:  verified,
		Available: available,
	}
	expert.SetDomainTags([]string{domains})

	expert, err := store.CreateExpert(expert)
	require.NoError(t, err)
	return expert
}

func TestExpertListOnlyVerifiedAvailable(t *testing.T) {
	app, store := newTestApp(t)

	seedExpert(t, store, "grace", "accounting", 4.8, true, true)
	seedExpert(t, store, "unverified", "accounting", 5.0, false, true)
	seedExpert(t, store, "unavailable", "accounting", 5.0, true, false)

	resp, body := doJSON(t, app, http.MethodGet, "/api/experts/", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	experts := body["experts"].([]interface{})
	require.Len(t, experts, 1)
	assert.Equal(t, "grace", experts[0].(map[string]interface{})["name"])
}

func TestExpertListDomainFilterAndOrdering(t *testing.T) {
	app, store := newTestApp(t)

	seedExpert(t, store, "lowrated", "tax", 3.5, true, true)
	seedExpert(t, store, "toprated", "tax", 4.9, true, true)
	seedExpert(t, store, "marketer", "marketing", 5.0, true, true)

	resp, body := doJSON(t, app, http.MethodGet, "/api/experts/?domain=tax", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	experts := body["experts"].([]interface{})
	require.Len(t, experts, 2)
	assert.Equal(t, "toprated", experts[0].(map[string]interface{})["name"])
	assert.Equal(t, "lowrated", experts[1].(map[string]interface{})["name"])
}

func TestCreateBookingCreatesPendingPair(t *testing.T) {
	app, store := newTestApp(t)
	token := loginUser(t, app, testPhone)
	expert := seedExpert(t, store, "grace", "accounting", 4.8, true, true)

	resp, body := doJSON(t, app, http.MethodPost, "/api/experts/bookings", fiber.Map{
		"expertId": expert.ExpertID,
		"service":  "Tax compliance review",
		"message":  "Need help before the filing deadline",
		"amount":   1500,
	}, authHeader(token))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	booking := body["booking"].(map[string]interface{})
	txn := body["transaction"].(map[string]interface{})
	assert.Equal(t, "pending", booking["status"])
	assert.Equal(t, "pending", txn["status"])
	assert.Equal(t, txn["id"], booking["transactionId"])
	assert.Equal(t, float64(1500), txn["amount"])

	stored, err := store.GetBookingByTransaction(txn["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, expert.ExpertID, stored.ExpertID)
}

func TestCreateBookingValidation(t *testing.T) {
	app, store := newTestApp(t)
	token := loginUser(t, app, testPhone)
	expert := seedExpert(t, store, "grace", "accounting", 4.8, true, true)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"missing expert", fiber.Map{"service": "Review", "amount": 1500}},
		{"missing service", fiber.Map{"expertId": expert.ExpertID, "amount": 1500}},
		{"zero amount", fiber.Map{"expertId": expert.ExpertID, "service": "Review", "amount": 0}},
		{"negative amount", fiber.Map{"expertId": expert.ExpertID, "service": "Review", "amount": -100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, http.MethodPost, "/api/experts/bookings", tt.body, authHeader(token))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCreateBookingUnknownExpert(t *testing.T) {
	app, _ := newTestApp(t)
	token := loginUser(t, app, testPhone)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/experts/bookings", fiber.Map{
		"expertId": "no-such-expert",
		"service":  "Review",
		"amount":   1500,
	}, authHeader(token))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateBookingRequiresAuth(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/experts/bookings", fiber.Map{
		"expertId": "x", "service": "y", "amount": 100,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
