package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/itbasis/go-clock"
	"github.com/mww/stats_proxy/cache"
	"github.com/mww/stats_proxy/config"
	"github.com/mww/stats_proxy/controller"
	"github.com/mww/stats_proxy/controller/mockcontroller"
	"github.com/mww/stats_proxy/logging"
	"github.com/mww/stats_proxy/model"
	"github.com/mww/stats_proxy/testutils"
	"github.com/mww/stats_proxy/upstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(ctrl controller.C, opts routerOptions) http.Handler {
	opts.log = logging.Discard()
	return getRouter(ctrl, newRender(), opts)
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPlayerHandler(t *testing.T) {
	tests := []struct {
		name   string
		target string
		setup  func(c *mockcontroller.C)
		want   string
	}{
		{
			name:   "found",
			target: "/player?id=" + testutils.JustinTuckerID,
			setup: func(c *mockcontroller.C) {
				c.On("GetPlayerByID", mock.Anything, testutils.JustinTuckerID).Return(testutils.JustinTucker)
			},
			want: `{"player_id":"11443","entry_id":"4","name":"Justin Tucker","position":"K",
				"fld_goals_made":38,"fld_goals_att":39,"extra_pt_made":27,"extra_pt_att":28}`,
		},
		{
			name:   "not found",
			target: "/player?id=42",
			setup: func(c *mockcontroller.C) {
				c.On("GetPlayerByID", mock.Anything, "42").Return(nil)
			},
			want: `{}`,
		},
		{
			name:   "id is trimmed",
			target: "/player?id=%2042%20",
			setup: func(c *mockcontroller.C) {
				c.On("GetPlayerByID", mock.Anything, "42").Return(nil)
			},
			want: `{}`,
		},
		{name: "missing id", target: "/player", want: `{}`},
		{name: "blank id", target: "/player?id=%20", want: `{}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := &mockcontroller.C{}
			if tc.setup != nil {
				tc.setup(ctrl)
			}

			rec := serve(newTestRouter(ctrl, routerOptions{}), http.MethodGet, tc.target)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tc.want, rec.Body.String())
			assert.Equal(t, playerCacheControl, rec.Header().Get("Cache-Control"))
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			ctrl.AssertExpectations(t)
		})
	}
}

func TestPlayersHandlers(t *testing.T) {
	elliott := *testutils.EzekielElliott
	tucker := *testutils.JustinTucker

	tests := []struct {
		name    string
		target  string
		method  string
		ids     []string
		players []model.Player
		want    string
	}{
		{
			name:    "players",
			target:  "/players?ids=14885,11443",
			method:  "GetMultiplePlayersByIDs",
			ids:     []string{"14885", "11443"},
			players: []model.Player{elliott, tucker},
			want:    `["14885","11443"]`,
		},
		{
			name:    "ids are trimmed and repeated ids dropped",
			target:  "/players?ids=%2014885,,11443%20,14885",
			method:  "GetMultiplePlayersByIDs",
			ids:     []string{"14885", "11443"},
			players: []model.Player{elliott, tucker},
			want:    `["14885","11443"]`,
		},
		{
			name:    "no matches",
			target:  "/players?ids=1,2",
			method:  "GetMultiplePlayersByIDs",
			ids:     []string{"1", "2"},
			players: []model.Player{},
			want:    `{}`,
		},
		{
			name:    "latest",
			target:  "/latest?ids=14885",
			method:  "GetLatestPlayersByIDs",
			ids:     []string{"14885"},
			players: []model.Player{elliott},
			want:    `["14885"]`,
		},
		{
			name:    "latest no matches",
			target:  "/latest?ids=14885",
			method:  "GetLatestPlayersByIDs",
			ids:     []string{"14885"},
			players: nil,
			want:    `{}`,
		},
		{name: "players without ids", target: "/players", want: `{}`},
		{name: "players with only commas", target: "/players?ids=,,", want: `{}`},
		{name: "latest without ids", target: "/latest?ids=", want: `{}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := &mockcontroller.C{}
			if tc.method != "" {
				ctrl.On(tc.method, mock.Anything, tc.ids).Return(tc.players)
			}

			rec := serve(newTestRouter(ctrl, routerOptions{}), http.MethodGet, tc.target)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, playerCacheControl, rec.Header().Get("Cache-Control"))
			if tc.want == `{}` {
				assert.JSONEq(t, tc.want, rec.Body.String())
			} else {
				var got []model.Player
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				ids, _ := json.Marshal(testutils.PlayerIDs(got))
				assert.JSONEq(t, tc.want, string(ids))
			}
			ctrl.AssertExpectations(t)
		})
	}
}

func TestRootHandler(t *testing.T) {
	ctrl := &mockcontroller.C{}
	ctrl.On("GetAllPlayers", mock.Anything).Return([]model.Player{*testutils.EzekielElliott, *testutils.JustinTucker})

	rec := serve(newTestRouter(ctrl, routerOptions{}), http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "14885,11443")
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestRootHandler_noPlayers(t *testing.T) {
	ctrl := &mockcontroller.C{}
	ctrl.On("GetAllPlayers", mock.Anything).Return([]model.Player{})

	rec := serve(newTestRouter(ctrl, routerOptions{}), http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No players are available")
}

func TestHealthHandler(t *testing.T) {
	rec := serve(newTestRouter(&mockcontroller.C{}, routerOptions{}), http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestInvalidateHandler(t *testing.T) {
	opts := routerOptions{adminEnabled: true, adminUser: "admin", adminPassword: "secret"}

	tests := []struct {
		name     string
		path     string
		noAuth   bool
		password string
		list     model.ListType
		err      error
		call     bool
		want     int
	}{
		{name: "all players", path: "/admin/cache/AllPlayers", list: model.AllPlayers, call: true, want: http.StatusNoContent},
		{name: "latest players", path: "/admin/cache/latest", list: model.LatestPlayers, call: true, want: http.StatusNoContent},
		{name: "unknown list", path: "/admin/cache/teams", want: http.StatusBadRequest},
		{name: "store error", path: "/admin/cache/all", list: model.AllPlayers, call: true, err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "no credentials", path: "/admin/cache/all", noAuth: true, want: http.StatusUnauthorized},
		{name: "wrong password", path: "/admin/cache/all", password: "guess", want: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := &mockcontroller.C{}
			if tc.call {
				ctrl.On("Invalidate", mock.Anything, tc.list).Return(tc.err)
			}

			req := httptest.NewRequest(http.MethodDelete, tc.path, nil)
			if !tc.noAuth {
				password := opts.adminPassword
				if tc.password != "" {
					password = tc.password
				}
				req.SetBasicAuth(opts.adminUser, password)
			}
			rec := httptest.NewRecorder()
			newTestRouter(ctrl, opts).ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			ctrl.AssertExpectations(t)
		})
	}
}

func TestInvalidateHandler_disabledWithoutCredentials(t *testing.T) {
	ctrl := &mockcontroller.C{}

	rec := serve(newTestRouter(ctrl, routerOptions{}), http.MethodDelete, "/admin/cache/all")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	ctrl.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestRecoverer(t *testing.T) {
	ctrl := &mockcontroller.C{}
	ctrl.On("GetPlayerByID", mock.Anything, "1").Run(func(args mock.Arguments) {
		panic("lookup exploded")
	}).Return(nil)

	rec := serve(newTestRouter(ctrl, routerOptions{}), http.MethodGet, "/player?id=1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"An error occured "}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/players?ids=1", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()

	newTestRouter(&mockcontroller.C{}, routerOptions{}).ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_requests_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	rec := serve(newTestRouter(&mockcontroller.C{}, routerOptions{gatherer: reg}), http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_requests_total 1")

	rec = serve(newTestRouter(&mockcontroller.C{}, routerOptions{}), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// Runs the router against a real lookup service backed by the fake stats
// feed and the in-memory store.
func TestRouter_endToEnd(t *testing.T) {
	fake := testutils.NewFakeUpstreamServer()
	defer fake.Close()

	reg := prometheus.NewRegistry()
	ctrl, err := controller.New(
		&config.Settings{RefreshDays: 7},
		logging.Discard(),
		upstream.NewForTest(fake.AllPlayersURL(), fake.LatestPlayersURL()),
		cache.NewMemoryStore(clock.New()),
		reg)
	require.NoError(t, err)
	defer ctrl.Wait()

	h := newTestRouter(ctrl, routerOptions{gatherer: reg})

	rec := serve(h, http.MethodGet, "/player?id="+testutils.EzekielElliottID)
	require.Equal(t, http.StatusOK, rec.Code)
	var p model.Player
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, *testutils.EzekielElliott, p)
	ctrl.Wait()

	ids := strings.Join([]string{testutils.JulioJonesID, "0", testutils.ToddGurleyID}, ",")
	rec = serve(h, http.MethodGet, "/players?ids="+ids)
	var players []model.Player
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	assert.Equal(t, []string{testutils.ToddGurleyID, testutils.JulioJonesID}, testutils.PlayerIDs(players))

	rec = serve(h, http.MethodGet, "/latest?ids="+testutils.CamNewtonID)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = serve(h, http.MethodGet, "/")
	assert.Contains(t, rec.Body.String(), strings.Join(testutils.AllPlayerIDs, ","))

	assert.Equal(t, 1, fake.AllHits())
	assert.Equal(t, 1, fake.LatestHits())

	rec = serve(h, http.MethodGet, "/metrics")
	assert.Contains(t, rec.Body.String(), "player_cache_lookups_total")
}
