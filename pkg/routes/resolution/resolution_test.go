package resolution

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/container"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/resolver"
)

type fakeResolver struct {
	tenantID string
	records  []models.RawExtraction
	cached   bool
	limit    int
	offset   int
}

func (f *fakeResolver) Resolve(_ context.Context, tenantID string, records []models.RawExtraction) (*models.Resolution, error) {
	f.tenantID, f.records = tenantID, records
	return &models.Resolution{ID: "r1", TenantID: tenantID, InputCount: len(records), Cached: f.cached}, nil
}

func (f *fakeResolver) Get(_ context.Context, tenantID, id string) (*models.Resolution, error) {
	if id != "r1" {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "resolution not found")
	}
	return &models.Resolution{ID: id, TenantID: tenantID}, nil
}

func (f *fakeResolver) List(_ context.Context, _ string, limit, offset int) ([]models.Resolution, error) {
	f.limit, f.offset = limit, offset
	return []models.Resolution{{ID: "r1"}}, nil
}

// newServer serves the resolution routes with service registered in a fresh
// dependency container. A nil service leaves the container without one.
func newServer(t *testing.T, service Resolver) *echo.Echo {
	t.Helper()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	id := uuid.NewString()
	c, err := container.New(id, logger)
	require.NoError(t, err)
	if service != nil {
		require.NoError(t, ectoinject.RegisterInstance[Resolver](c, service))
	}

	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(middleware.Context())
	e.Use(middleware.Container(id))

	api := e.Group("/api/v1", middleware.RequireTenant())
	NewHandler(matching.NewScorer(matching.DefaultScoringConfig()), 3).Register(api)
	return e
}

func do(e *echo.Echo, method, target, body string, tenant bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if tenant {
		req.Header.Set(middleware.HeaderTenantID, "tenant-1")
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		tenant bool
		cached bool
		status int
	}{
		{name: "resolves a batch", body: `{"records":[{"full_name":"Jane"},{"company":"Acme"}]}`, tenant: true, status: http.StatusCreated},
		{name: "cached batch", body: `{"records":[{"full_name":"Jane"}]}`, tenant: true, cached: true, status: http.StatusOK},
		{name: "missing tenant", body: `{"records":[{"full_name":"Jane"}]}`, status: http.StatusBadRequest},
		{name: "empty records", body: `{"records":[]}`, tenant: true, status: http.StatusBadRequest},
		{name: "invalid body", body: `{"records":`, tenant: true, status: http.StatusBadRequest},
		{name: "batch too large", body: `{"records":[{},{},{},{}]}`, tenant: true, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeResolver{cached: tt.cached}
			rec := do(newServer(t, service), http.MethodPost, "/api/v1/resolutions", tt.body, tt.tenant)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			if tt.status < http.StatusBadRequest {
				assert.Equal(t, "tenant-1", service.tenantID)
				var resolution models.Resolution
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolution))
				assert.Equal(t, len(service.records), resolution.InputCount)
			} else {
				var body middleware.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body.Message)
				assert.NotEmpty(t, body.RequestID)
			}
		})
	}
}

func TestGet(t *testing.T) {
	e := newServer(t, &fakeResolver{})

	rec := do(e, http.MethodGet, "/api/v1/resolutions/r1", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/resolutions/missing", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestList(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedLimit  int
		expectedOffset int
	}{
		{name: "explicit page", query: "?limit=5&offset=10", expectedLimit: 5, expectedOffset: 10},
		{name: "defaults", query: "", expectedLimit: resolver.DefaultListLimit, expectedOffset: 0},
		{name: "clamped", query: "?limit=1000", expectedLimit: resolver.MaxListLimit, expectedOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeResolver{}
			rec := do(newServer(t, service), http.MethodGet, "/api/v1/resolutions"+tt.query, "", true)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.expectedLimit, service.limit)
			assert.Equal(t, tt.expectedOffset, service.offset)

			var body ListResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body.Resolutions, 1)
			assert.Equal(t, tt.expectedLimit, body.Limit)
			assert.Equal(t, tt.expectedOffset, body.Offset)
		})
	}

	rec := do(newServer(t, &fakeResolver{}), http.MethodGet, "/api/v1/resolutions?limit=abc", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutesWithoutResolver(t *testing.T) {
	e := newServer(t, nil)

	rec := do(e, http.MethodPost, "/api/v1/resolutions", `{"records":[{"full_name":"Jane"}]}`, true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/resolutions/r1", "", true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// the debug view needs no resolver
	rec = do(e, http.MethodPost, "/api/v1/fingerprints", `{"records":[{"full_name":"Jane"}]}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFingerprints(t *testing.T) {
	e := newServer(t, &fakeResolver{})
	body := `{"records":[
		{"company":"Acme Pvt Ltd","filename":"back.jpg"},
		{"full_name":" Jane Doe ","phones":["+91 98765 43210"],"filename":"front.jpg"}
	]}`

	rec := do(e, http.MethodPost, "/api/v1/fingerprints", body, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp FingerprintResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Fingerprints, 2)
	assert.Equal(t, "acmepvtltd", resp.Fingerprints[0].Company)
	assert.Equal(t, "jane doe", resp.Fingerprints[1].Name)
	assert.Equal(t, []string{"9876543210"}, resp.Fingerprints[1].Phones)

	require.Len(t, resp.Pairs, 1)
	assert.Equal(t, string(matching.RuleComplement), resp.Pairs[0].Rule)
	assert.False(t, resp.Pairs[0].ScoredMerge)
}
