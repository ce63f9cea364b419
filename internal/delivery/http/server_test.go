package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rock-radar/internal/config"
	delivery "github.com/rock-radar/internal/delivery/http"
	"github.com/rock-radar/internal/delivery/http/handler"
	"github.com/rock-radar/internal/domain"
	"github.com/rock-radar/internal/repository/file"
	"github.com/rock-radar/internal/usecase"
	"github.com/rock-radar/internal/usecase/dto"
)

const usaJSON = `[
  {"id": "1", "name": "Illusion Dweller", "grade": "5.10b", "route_types": ["Trad"],
   "num_pitches": 1, "length": 100, "rating": 3.8, "num_reviewers": 300,
   "area": ["USA", "California", "Joshua Tree"]},
  {"id": "2", "name": "Sail Away", "grade": "5.8", "route_types": ["Trad"],
   "num_pitches": 1, "length": 80, "rating": 3.5, "num_reviewers": 200,
   "area": ["USA", "California", "Joshua Tree"]},
  {"id": "3", "name": "Epinephrine", "grade": "5.9", "route_types": ["Trad"],
   "num_pitches": 13, "length": 1600, "rating": 3.9, "num_reviewers": 420,
   "area": ["USA", "Nevada", "Red Rock"]}
]`

const canadaJSON = `[
  {"id": "4", "name": "The Grand Wall", "grade": "5.11a", "route_types": ["Trad"],
   "num_pitches": 10, "length": 1000, "rating": 3.9, "num_reviewers": 250,
   "area": ["Canada", "Squamish"]}
]`

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta *struct {
		Total    int    `json:"total"`
		Snapshot string `json:"snapshot"`
	} `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type failingCheck struct{}

func (failingCheck) Health(context.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T, checks map[string]delivery.HealthChecker) *delivery.Server {
	t.Helper()
	logger := zap.NewNop()

	repo := file.NewRouteRepositoryFS(fstest.MapFS{
		"USA.json":    {Data: []byte(usaJSON)},
		"Canada.json": {Data: []byte(canadaJSON)},
	}, "", logger)

	builder := usecase.NewTreeBuilder(repo, 2, logger)
	tree, _, err := builder.BuildRegions(context.Background(), "World", []string{"USA"})
	require.NoError(t, err)

	radarUC := usecase.NewRadarUseCase(tree, domain.NewStatsContext(), nil, time.Minute, logger)
	regionUC := usecase.NewRegionUseCase(builder, radarUC, nil, logger)
	regionUC.MarkLoaded("USA")

	cfg := &config.Config{}
	return delivery.NewServer(cfg, logger,
		handler.NewRadarHandler(radarUC, logger),
		handler.NewRegionHandler(regionUC, logger),
		checks,
	)
}

func do(t *testing.T, s *delivery.Server, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestServer_GetRoot(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := do(t, s, nethttp.MethodGet, "/api/v1/areas/root", nil)
	require.Equal(t, nethttp.StatusOK, status)

	view := decode[dto.AreaView](t, env)
	assert.Equal(t, "World", view.Name)
	assert.Equal(t, 3, view.TotalRoutes)
	require.Len(t, view.SubAreas, 1)
	assert.Equal(t, "USA", view.SubAreas[0].Name)

	require.NotNil(t, env.Meta)
	assert.NotEmpty(t, env.Meta.Snapshot)
}

func TestServer_GetAreaByPath(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := do(t, s, nethttp.MethodGet, "/api/v1/areas/by-path?path=USA/California/Joshua%20Tree", nil)
	require.Equal(t, nethttp.StatusOK, status)

	view := decode[dto.AreaView](t, env)
	assert.True(t, view.IsCrag)
	assert.Equal(t, []string{"USA", "California", "Joshua Tree"}, view.Path)
	require.Len(t, view.Routes, 2)
	assert.Equal(t, "Illusion Dweller (5.10b)", view.Routes[0].Label)
	assert.Equal(t, "Sail Away (5.8)", view.Routes[1].Label)

	status, env = do(t, s, nethttp.MethodGet, "/api/v1/areas/by-path?path=USA/Utah", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "AREA_NOT_FOUND", env.Error.Code)

	status, _ = do(t, s, nethttp.MethodGet, "/api/v1/areas/by-path", nil)
	assert.Equal(t, nethttp.StatusBadRequest, status)
}

func TestServer_GetAreaAndRoute(t *testing.T) {
	s := newTestServer(t, nil)

	_, env := do(t, s, nethttp.MethodGet, "/api/v1/areas/by-path?path=USA/Nevada/Red%20Rock", nil)
	crag := decode[dto.AreaView](t, env)
	require.Len(t, crag.Routes, 1)

	status, env := do(t, s, nethttp.MethodGet, "/api/v1/areas/"+strconv.Itoa(crag.ID), nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "Red Rock", decode[dto.AreaView](t, env).Name)

	status, env = do(t, s, nethttp.MethodGet, "/api/v1/routes/"+strconv.Itoa(crag.Routes[0].ID), nil)
	require.Equal(t, nethttp.StatusOK, status)
	route := decode[dto.RouteView](t, env)
	assert.Equal(t, "Epinephrine", route.Name)
	assert.Equal(t, 13, route.Pitches)
	assert.Equal(t, crag.ID, route.CragID)

	status, env = do(t, s, nethttp.MethodGet, "/api/v1/areas/abc", nil)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)

	status, env = do(t, s, nethttp.MethodGet, "/api/v1/routes/999", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "ROUTE_NOT_FOUND", env.Error.Code)
}

func TestServer_MoveArea(t *testing.T) {
	s := newTestServer(t, nil)

	_, env := do(t, s, nethttp.MethodGet, "/api/v1/areas/by-path?path=USA/Nevada", nil)
	nevada := decode[dto.AreaView](t, env)
	_, env = do(t, s, nethttp.MethodGet, "/api/v1/areas/by-path?path=USA/California", nil)
	california := decode[dto.AreaView](t, env)

	status, env := do(t, s, nethttp.MethodPut, "/api/v1/areas/"+strconv.Itoa(nevada.ID)+"/parent",
		map[string]interface{}{"parent_id": california.ID})
	require.Equal(t, nethttp.StatusOK, status)
	moved := decode[dto.AreaView](t, env)
	assert.Equal(t, "California", moved.Name)
	assert.Equal(t, 3, moved.TotalRoutes)
	require.Len(t, moved.SubAreas, 2)

	_, env = do(t, s, nethttp.MethodGet, "/api/v1/areas/by-path?path=USA/California/Nevada/Red%20Rock", nil)
	crag := decode[dto.AreaView](t, env)
	assert.Equal(t, "Red Rock", crag.Name)

	status, env = do(t, s, nethttp.MethodPut, "/api/v1/areas/"+strconv.Itoa(california.ID)+"/parent",
		map[string]interface{}{"parent_id": crag.ID})
	assert.Equal(t, nethttp.StatusConflict, status)
	assert.Equal(t, "STRUCTURAL_ERROR", env.Error.Code)

	status, env = do(t, s, nethttp.MethodPut, "/api/v1/areas/"+strconv.Itoa(nevada.ID)+"/parent",
		map[string]interface{}{})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}

func TestServer_SetFilter(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := do(t, s, nethttp.MethodPut, "/api/v1/settings/filter", map[string]interface{}{
		"lower_grade": "5.10a",
	})
	require.Equal(t, nethttp.StatusOK, status)
	settings := decode[dto.SettingsResponse](t, env)
	assert.Equal(t, "5.10a", settings.Filter.LowerGrade)

	_, env = do(t, s, nethttp.MethodGet, "/api/v1/areas/root", nil)
	root := decode[dto.AreaView](t, env)
	assert.Equal(t, 1, root.Stats.MatchingRoutes)
	assert.Equal(t, 3, root.TotalRoutes)
	assert.Equal(t, settings.Snapshot, env.Meta.Snapshot)

	status, env = do(t, s, nethttp.MethodPut, "/api/v1/settings/filter", map[string]interface{}{
		"upper_grade": "5.x",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "INVALID_GRADE", env.Error.Code)

	status, env = do(t, s, nethttp.MethodPut, "/api/v1/settings/filter", map[string]interface{}{
		"min_length": -5,
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}

func TestServer_SetModelAndSort(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := do(t, s, nethttp.MethodPut, "/api/v1/settings/model", map[string]interface{}{
		"model": "logistic", "params": []float64{50, 0.2},
	})
	require.Equal(t, nethttp.StatusOK, status)
	model := decode[dto.SettingsResponse](t, env).Model
	assert.Equal(t, "logistic", model.Model)
	assert.Equal(t, 50.0, model.TargetPopularity)

	status, env = do(t, s, nethttp.MethodPut, "/api/v1/settings/model", map[string]interface{}{"model": "bogus"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "INVALID_CONFIG", env.Error.Code)

	status, env = do(t, s, nethttp.MethodPut, "/api/v1/settings/model", map[string]interface{}{})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)

	status, env = do(t, s, nethttp.MethodPut, "/api/v1/settings/sort", map[string]interface{}{
		"node_primary": "Matching Routes", "leaf_primary": "grade",
	})
	require.Equal(t, nethttp.StatusOK, status)
	var raw struct {
		Sort map[string]string `json:"sort"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &raw))
	assert.Equal(t, "matching routes", raw.Sort["node_primary"])
	assert.Equal(t, "matching routes", raw.Sort["node_secondary"])
	assert.Equal(t, "grade", raw.Sort["leaf_primary"])

	_, env = do(t, s, nethttp.MethodGet, "/api/v1/areas/by-path?path=USA/California/Joshua%20Tree", nil)
	crag := decode[dto.AreaView](t, env)
	require.Len(t, crag.Routes, 2)
	assert.Equal(t, "Sail Away (5.8)", crag.Routes[0].Label)
}

func TestServer_SetMetricsAndOptions(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := do(t, s, nethttp.MethodPut, "/api/v1/settings/metrics", map[string]interface{}{
		"area_metric": "total routes",
	})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "total routes", decode[dto.SettingsResponse](t, env).AreaMetric)

	_, env = do(t, s, nethttp.MethodGet, "/api/v1/areas/root", nil)
	root := decode[dto.AreaView](t, env)
	require.Len(t, root.SubAreas, 1)
	assert.EqualValues(t, 3, root.SubAreas[0].Value)

	status, env = do(t, s, nethttp.MethodPut, "/api/v1/settings/metrics", map[string]interface{}{
		"route_metric": "colour",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "INVALID_CONFIG", env.Error.Code)

	status, env = do(t, s, nethttp.MethodGet, "/api/v1/options", nil)
	require.Equal(t, nethttp.StatusOK, status)
	opts := decode[dto.OptionsResponse](t, env)
	assert.Equal(t, []string{"Trad"}, opts.RouteTypes)
	assert.Contains(t, opts.Models, "logarithmic")
	assert.Contains(t, opts.NodeSortKeys, "Average Score")

	status, env = do(t, s, nethttp.MethodPost, "/api/v1/refresh", nil)
	require.Equal(t, nethttp.StatusOK, status)
	refreshed := decode[dto.RefreshResponse](t, env)
	require.NotNil(t, refreshed.Root)
	assert.Equal(t, "total routes", refreshed.Settings.AreaMetric)
	assert.Equal(t, "total routes", refreshed.Root.Metric)
	require.Len(t, refreshed.Root.SubAreas, 1)
	assert.EqualValues(t, 3, refreshed.Root.SubAreas[0].Value)
}

func TestServer_Regions(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := do(t, s, nethttp.MethodGet, "/api/v1/regions", nil)
	require.Equal(t, nethttp.StatusOK, status)
	available := decode[[]dto.RegionView](t, env)
	require.Len(t, available, 1)
	assert.Equal(t, "Canada", available[0].Name)

	_, env = do(t, s, nethttp.MethodGet, "/api/v1/regions?all=true", nil)
	assert.Len(t, decode[[]dto.RegionView](t, env), 2)

	status, env = do(t, s, nethttp.MethodPost, "/api/v1/regions/import", map[string]interface{}{"region": "Canada"})
	require.Equal(t, nethttp.StatusOK, status)
	imported := decode[dto.ImportResponse](t, env)
	assert.Equal(t, 1, imported.Routes)
	assert.Equal(t, 4, imported.TotalRoutes)

	_, env = do(t, s, nethttp.MethodGet, "/api/v1/areas/root", nil)
	assert.Len(t, decode[dto.AreaView](t, env).SubAreas, 2)

	status, env = do(t, s, nethttp.MethodPost, "/api/v1/regions/import", map[string]interface{}{"region": "Atlantis"})
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "REGION_NOT_FOUND", env.Error.Code)

	status, env = do(t, s, nethttp.MethodPost, "/api/v1/regions/import", map[string]interface{}{"region": "Canada", "async": true})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)

	status, _ = do(t, s, nethttp.MethodPost, "/api/v1/regions/import", map[string]interface{}{})
	assert.Equal(t, nethttp.StatusBadRequest, status)
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/health", nil)
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	s = newTestServer(t, map[string]delivery.HealthChecker{"redis": failingCheck{}})
	req = httptest.NewRequest(nethttp.MethodGet, "/api/v1/health", nil)
	resp, err = s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)

	var body struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "connection refused", body.Dependencies["redis"])
}

func TestServer_UnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := do(t, s, nethttp.MethodGet, "/api/v1/nowhere", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "HTTP_ERROR", env.Error.Code)
}
