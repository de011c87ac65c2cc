package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subtrack/models"
	"subtrack/repository"
)

type memStore struct {
	subs []models.Subscription
	err  error
}

func (s *memStore) Create(sub *models.Subscription) error {
	if s.err != nil {
		return s.err
	}
	sub.CreatedAt = time.Now()
	s.subs = append(s.subs, *sub)
	return nil
}

func (s *memStore) ListByOwner(owner string) ([]models.Subscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Subscription
	for _, sub := range s.subs {
		if sub.OwnerEmail == owner {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *memStore) DeleteByOwner(id uuid.UUID, owner string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	for i, sub := range s.subs {
		if sub.ID == id && sub.OwnerEmail == owner {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) SummaryByOwner(owner string) (repository.SpendingSummary, error) {
	if s.err != nil {
		return repository.SpendingSummary{}, s.err
	}
	var out repository.SpendingSummary
	for _, sub := range s.subs {
		if sub.OwnerEmail != owner {
			continue
		}
		out.TotalSubscriptions++
		if sub.BillingCycle == models.CycleMonthly {
			out.MonthlyCount++
			out.MonthlySpend += sub.Cost
		} else {
			out.YearlyCount++
			out.MonthlySpend += sub.Cost / 12
		}
	}
	return out, nil
}

// newTestRouter wires the handler behind a stub identity middleware.
// email == "" simulates a request that never authenticated.
func newTestRouter(store SubscriptionStore, email string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if email != "" {
		r.Use(func(c *gin.Context) {
			c.Set("userEmail", email)
		})
	}

	h := NewSubscriptionHandler(store)
	r.GET("/api/subscriptions", h.List)
	r.POST("/api/subscriptions", h.Create)
	r.DELETE("/api/subscriptions/:id", h.Delete)
	r.GET("/api/subscriptions/summary", h.Summary)
	return r
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seeded(t *testing.T, name, owner string, cost float64, start string) models.Subscription {
	t.Helper()
	startDate, err := models.ParseDate(start)
	require.NoError(t, err)
	return models.Subscription{
		ID:              uuid.New(),
		ServiceName:     name,
		Cost:            cost,
		BillingCycle:    models.CycleMonthly,
		StartDate:       startDate,
		NextRenewalDate: models.NewDate(startDate.AddDate(0, 1, 0)),
		OwnerEmail:      owner,
	}
}

func TestCreateComputesRenewalAndStampsOwner(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store, "a@example.com")

	w := perform(r, http.MethodPost, "/api/subscriptions",
		`{"service_name":"Netflix","cost":15.99,"billing_cycle":"MONTHLY","start_date":"2024-01-31"}`)

	require.Equal(t, http.StatusCreated, w.Code)

	var got models.Subscription
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, "a@example.com", got.OwnerEmail)
	// Roll-forward convention: Jan 31 + 1 month lands on Mar 2 in 2024.
	assert.Equal(t, "2024-03-02", got.NextRenewalDate.String())

	require.Len(t, store.subs, 1)
	assert.Equal(t, "a@example.com", store.subs[0].OwnerEmail)
}

func TestCreateIgnoresClientSuppliedOwnerAndRenewal(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store, "a@example.com")

	w := perform(r, http.MethodPost, "/api/subscriptions",
		`{"service_name":"Netflix","cost":10,"billing_cycle":"YEARLY","start_date":"2024-05-20",`+
			`"owner_email":"mallory@example.com","next_renewal_date":"2099-01-01"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.subs, 1)
	assert.Equal(t, "a@example.com", store.subs[0].OwnerEmail)
	assert.Equal(t, "2025-05-20", store.subs[0].NextRenewalDate.String())
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing name", `{"cost":5,"billing_cycle":"MONTHLY","start_date":"2024-01-01"}`},
		{"negative cost", `{"service_name":"X","cost":-1,"billing_cycle":"MONTHLY","start_date":"2024-01-01"}`},
		{"bad cycle", `{"service_name":"X","cost":5,"billing_cycle":"WEEKLY","start_date":"2024-01-01"}`},
		{"bad date", `{"service_name":"X","cost":5,"billing_cycle":"MONTHLY","start_date":"01-2024"}`},
		{"not json", `nope`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memStore{}
			r := newTestRouter(store, "a@example.com")
			w := perform(r, http.MethodPost, "/api/subscriptions", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, store.subs)
		})
	}
}

func TestListReturnsOnlyOwnRecords(t *testing.T) {
	store := &memStore{subs: []models.Subscription{
		seeded(t, "Netflix", "a@example.com", 15.99, "2024-01-01"),
		seeded(t, "Netflix", "b@example.com", 15.99, "2024-02-01"),
		seeded(t, "Spotify", "b@example.com", 9.99, "2024-03-01"),
	}}
	r := newTestRouter(store, "a@example.com")

	w := perform(r, http.MethodGet, "/api/subscriptions", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.Subscription
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Netflix", got[0].ServiceName)
	assert.Equal(t, "a@example.com", got[0].OwnerEmail)
}

func TestListEmptyIsJSONArray(t *testing.T) {
	r := newTestRouter(&memStore{}, "a@example.com")

	w := perform(r, http.MethodGet, "/api/subscriptions", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	store := &memStore{subs: []models.Subscription{
		seeded(t, "Netflix", "a@example.com", 15.99, "2024-01-01"),
	}}
	r := newTestRouter(store, "")

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/api/subscriptions", "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/api/subscriptions",
		`{"service_name":"X","cost":1,"billing_cycle":"MONTHLY","start_date":"2024-01-01"}`).Code)
	assert.Equal(t, http.StatusUnauthorized,
		perform(r, http.MethodDelete, "/api/subscriptions/"+store.subs[0].ID.String(), "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/api/subscriptions/summary", "").Code)
	assert.Len(t, store.subs, 1)
}

func TestDeleteOwnRecord(t *testing.T) {
	own := seeded(t, "Netflix", "a@example.com", 15.99, "2024-01-01")
	store := &memStore{subs: []models.Subscription{own}}
	r := newTestRouter(store, "a@example.com")

	w := perform(r, http.MethodDelete, "/api/subscriptions/"+own.ID.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.subs)
}

func TestDeleteForeignRecordIsNotFound(t *testing.T) {
	foreign := seeded(t, "Netflix", "b@example.com", 15.99, "2024-01-01")
	store := &memStore{subs: []models.Subscription{foreign}}
	r := newTestRouter(store, "a@example.com")

	w := perform(r, http.MethodDelete, "/api/subscriptions/"+foreign.ID.String(), "")

	// Never 403: existence of another user's record is not revealed.
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, store.subs, 1, "foreign record must be left unchanged")
}

func TestDeleteUnknownID(t *testing.T) {
	r := newTestRouter(&memStore{}, "a@example.com")

	assert.Equal(t, http.StatusNotFound,
		perform(r, http.MethodDelete, "/api/subscriptions/"+uuid.NewString(), "").Code)
	assert.Equal(t, http.StatusBadRequest,
		perform(r, http.MethodDelete, "/api/subscriptions/not-a-uuid", "").Code)
}

func TestSummaryIsOwnerScoped(t *testing.T) {
	yearly := seeded(t, "Prime", "a@example.com", 120, "2024-01-01")
	yearly.BillingCycle = models.CycleYearly
	store := &memStore{subs: []models.Subscription{
		seeded(t, "Netflix", "a@example.com", 10, "2024-01-01"),
		yearly,
		seeded(t, "Spotify", "b@example.com", 9.99, "2024-01-01"),
	}}
	r := newTestRouter(store, "a@example.com")

	w := perform(r, http.MethodGet, "/api/subscriptions/summary", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got repository.SpendingSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.TotalSubscriptions)
	assert.Equal(t, 1, got.MonthlyCount)
	assert.Equal(t, 1, got.YearlyCount)
	assert.InDelta(t, 20.0, got.MonthlySpend, 0.001)
}

func TestStoreFailuresSurfaceAsServerErrors(t *testing.T) {
	store := &memStore{err: errors.New("connection refused")}
	r := newTestRouter(store, "a@example.com")

	assert.Equal(t, http.StatusInternalServerError, perform(r, http.MethodGet, "/api/subscriptions", "").Code)
	assert.Equal(t, http.StatusInternalServerError, perform(r, http.MethodPost, "/api/subscriptions",
		`{"service_name":"X","cost":1,"billing_cycle":"MONTHLY","start_date":"2024-01-01"}`).Code)
	assert.Equal(t, http.StatusInternalServerError,
		perform(r, http.MethodDelete, "/api/subscriptions/"+uuid.NewString(), "").Code)
}
