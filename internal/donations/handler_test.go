package donations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/cache"
	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/internal/validation"
	"github.com/ejoheza/backend/pkg/database"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Register()
}

const meURL = "https://www.paypal.me/alainpromethee"

type fakeStore struct {
	mu        sync.Mutex
	rows      []models.Donation
	listCalls int
	createErr error
}

func (f *fakeStore) Create(_ context.Context, d *models.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	f.rows = append([]models.Donation{*d}, f.rows...)
	return nil
}

func (f *fakeStore) List(context.Context) ([]models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]models.Donation(nil), f.rows...), nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.rows {
		if d.ID == id {
			d := d
			return &d, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, s models.DonationStatus) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Status = s
			d := f.rows[i]
			return &d, nil
		}
	}
	return nil, database.ErrNotFound
}

type fakeExporter struct {
	key  string
	body string
	err  error
}

func (e *fakeExporter) UploadExport(_ context.Context, key, _ string, body io.Reader) error {
	if e.err != nil {
		return e.err
	}
	b, _ := io.ReadAll(body)
	e.key, e.body = key, string(b)
	return nil
}

func (e *fakeExporter) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://signed.example/" + key, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRouter(store *fakeStore, exporter Exporter) *gin.Engine {
	h := NewHandler(store, cache.NewCollections(cache.NewMemoryBackend(), time.Minute, nil), exporter, meURL, zap.NewNop())
	r := gin.New()
	r.POST("/donations", h.Donate)
	r.GET("/donations/presets", h.Presets)
	r.GET("/admin/donations", h.List)
	r.GET("/admin/donations/export", h.Export)
	r.GET("/admin/donations/:id", h.GetByID)
	r.PATCH("/admin/donations/:id/status", h.UpdateStatus)
	return r
}

func call(r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestPaymentLink(t *testing.T) {
	assert.Equal(t, meURL+"/25", PaymentLink(meURL, 25))
	assert.Equal(t, meURL+"/12.5", PaymentLink(meURL+"/", 12.5))
}

func TestDonateRecordsPendingDonation(t *testing.T) {
	store := &fakeStore{}
	r := newRouter(store, nil)

	w, env := call(r, http.MethodPost, "/donations", gin.H{
		"donor_name": "Jean", "email": "jean@example.org", "amount": 50.456,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp DonateResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.True(t, resp.Recorded)
	assert.Equal(t, meURL+"/50.46", resp.PaymentURL)
	require.NotNil(t, resp.Donation)
	assert.Equal(t, models.DonationPending, resp.Donation.Status)
	assert.Equal(t, models.DonationOneTime, resp.Donation.DonationType)
	assert.Equal(t, models.DefaultPurpose, resp.Donation.Purpose)
	assert.Len(t, store.rows, 1)
}

func TestDonateAnonymousHidesName(t *testing.T) {
	store := &fakeStore{}
	r := newRouter(store, nil)
	w, _ := call(r, http.MethodPost, "/donations", gin.H{
		"email": "x@example.org", "amount": 10, "is_anonymous": true, "donation_type": "monthly",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.AnonymousDonor, store.rows[0].DonorName)
	assert.Equal(t, models.DonationMonthly, store.rows[0].DonationType)
}

func TestDonateStillReturnsLinkWhenInsertFails(t *testing.T) {
	store := &fakeStore{createErr: errors.New("db down")}
	r := newRouter(store, nil)
	w, env := call(r, http.MethodPost, "/donations", gin.H{
		"donor_name": "Jean", "email": "jean@example.org", "amount": 25,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp DonateResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.False(t, resp.Recorded)
	assert.Nil(t, resp.Donation)
	assert.Equal(t, meURL+"/25", resp.PaymentURL)
}

func TestDonateValidation(t *testing.T) {
	store := &fakeStore{}
	r := newRouter(store, nil)

	w, env := call(r, http.MethodPost, "/donations", gin.H{"donor_name": "J", "email": "j@example.org", "amount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "amount must be greater than 0", env.Error)

	w, env = call(r, http.MethodPost, "/donations", gin.H{"email": "j@example.org", "amount": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "donor_name is required", env.Error)

	w, _ = call(r, http.MethodPost, "/donations", gin.H{"donor_name": "J", "email": "j@example.org", "amount": 5, "donation_type": "weekly"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.rows)
}

func seed(store *fakeStore) {
	now := time.Now()
	store.rows = []models.Donation{
		{ID: uuid.New(), DonorName: "Alice", Email: "alice@example.org", Amount: 100, Purpose: "equipment", Status: models.DonationCompleted, CreatedAt: now},
		{ID: uuid.New(), DonorName: "Bob", Email: "bob@example.org", Amount: 50, Purpose: "general", Status: models.DonationPending, CreatedAt: now},
		{ID: uuid.New(), DonorName: "Anonymous", Email: "c@example.org", Amount: 25.5, Purpose: "general", Status: models.DonationFailed, CreatedAt: now},
	}
}

func TestDonateRejectsAmountThatRoundsToZero(t *testing.T) {
	store := &fakeStore{}
	r := newRouter(store, nil)

	w, env := call(r, http.MethodPost, "/donations", gin.H{"donor_name": "J", "email": "j@example.org", "amount": 0.004})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "amount must be greater than 0", env.Error)
	assert.Empty(t, store.rows)
}

func TestListStatsAndFilters(t *testing.T) {
	store := &fakeStore{}
	seed(store)
	r := newRouter(store, nil)

	w, env := call(r, http.MethodGet, "/admin/donations?search=equip", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp ListResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Alice", resp.Items[0].DonorName)
	assert.Equal(t, Stats{Count: 3, TotalAmount: 175.5, CompletedCount: 1, PendingCount: 1, AverageAmount: 58.5}, resp.Stats)

	_, env = call(r, http.MethodGet, "/admin/donations?status=pending", nil)
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Bob", resp.Items[0].DonorName)
	assert.Equal(t, 1, store.listCalls)
}

func TestUpdateStatusInvalidatesCache(t *testing.T) {
	store := &fakeStore{}
	seed(store)
	r := newRouter(store, nil)
	call(r, http.MethodGet, "/admin/donations", nil)

	id := store.rows[1].ID
	w, _ := call(r, http.MethodPatch, "/admin/donations/"+id.String()+"/status", gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)

	_, env := call(r, http.MethodGet, "/admin/donations", nil)
	var resp ListResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 2, resp.Stats.CompletedCount)
	assert.Equal(t, 2, store.listCalls)

	w, _ = call(r, http.MethodPatch, "/admin/donations/"+id.String()+"/status", gin.H{"status": "refunded"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = call(r, http.MethodPatch, "/admin/donations/"+uuid.NewString()+"/status", gin.H{"status": "failed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = call(r, http.MethodGet, "/admin/donations/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportStreamsCSVWithoutStorage(t *testing.T) {
	store := &fakeStore{}
	seed(store)
	r := newRouter(store, nil)

	w, _ := call(r, http.MethodGet, "/admin/donations/export?status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,donor_name,email"))
	assert.Contains(t, lines[1], "Alice")
	assert.Contains(t, lines[1], "100.00")
}

func TestWriteCSVNeutralizesFormulas(t *testing.T) {
	rows := []models.Donation{{
		ID:              uuid.New(),
		DonorName:       `=HYPERLINK("http://evil.example","x")`,
		Email:           "@sum@example.org",
		Phone:           "+250788000000",
		Amount:          10,
		DonationType:    models.DonationOneTime,
		Purpose:         "-1+1",
		Status:          models.DonationPending,
		ProviderOrderID: "ORDER-1",
		CreatedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	out := buf.String()
	assert.Contains(t, out, `"'=HYPERLINK(""http://evil.example"",""x"")"`)
	assert.Contains(t, out, ",'@sum@example.org,'+250788000000,10.00,")
	assert.Contains(t, out, ",'-1+1,")
	assert.Contains(t, out, ",ORDER-1,")
}

func TestExportUploadsToStorage(t *testing.T) {
	store := &fakeStore{}
	seed(store)
	exp := &fakeExporter{}
	r := newRouter(store, exp)

	w, env := call(r, http.MethodGet, "/admin/donations/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp ExportResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 3, resp.Rows)
	assert.True(t, strings.HasPrefix(resp.Key, "exports/donations/"))
	assert.Equal(t, "https://signed.example/"+resp.Key, resp.DownloadURL)
	assert.Contains(t, exp.body, "Bob")

	exp.err = errors.New("s3 down")
	w, _ = call(r, http.MethodGet, "/admin/donations/export", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
