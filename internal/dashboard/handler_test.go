package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	counts    Counts
	recent    []RecentVolunteer
	countsErr error
	limit     int
}

func (f *fakeStore) Counts(context.Context) (*Counts, error) {
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	c := f.counts
	return &c, nil
}

func (f *fakeStore) RecentVolunteers(_ context.Context, limit int) ([]RecentVolunteer, error) {
	f.limit = limit
	return f.recent, nil
}

func serve(store Store) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/admin/dashboard", NewHandler(store, zap.NewNop()).Overview)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	return w
}

func TestOverview(t *testing.T) {
	store := &fakeStore{
		counts: Counts{Volunteers: 12, PendingVolunteers: 3, Donations: 4, TotalDonated: 410.5, Events: 2, NewsPosts: 7},
		recent: []RecentVolunteer{{ID: uuid.New(), FullName: "Aline", Status: models.VolunteerPending}},
	}
	w := serve(store)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, RecentLimit, store.limit)

	var body struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.JSONEq(t, "12", string(body.Data["volunteers"]))
	assert.JSONEq(t, "410.5", string(body.Data["total_donated"]))
	assert.Contains(t, string(body.Data["recent_volunteers"]), "Aline")
}

func TestOverviewFailure(t *testing.T) {
	w := serve(&fakeStore{countsErr: errors.New("db down")})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to load dashboard")
}
