package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mww/stats_proxy/config"
	"github.com/mww/stats_proxy/controller/mockcontroller"
	"github.com/mww/stats_proxy/logging"
	"github.com/mww/stats_proxy/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: nil},
		{raw: " , ,", want: nil},
		{raw: "1", want: []string{"1"}},
		{raw: "1,2,3", want: []string{"1", "2", "3"}},
		{raw: " 1 ,2 , 3", want: []string{"1", "2", "3"}},
		{raw: "3,1,3,1", want: []string{"3", "1"}},
		{raw: "1,,2", want: []string{"1", "2"}},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got := parseIDs(tc.raw)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil, &mockcontroller.C{}, nil, nil)
	assert.Error(t, err)

	s, err := NewServer(&config.Settings{Port: 8123}, &mockcontroller.C{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ":8123", s.server.Addr)
}

func TestNewServer_adminRoutes(t *testing.T) {
	tests := []struct {
		name     string
		settings *config.Settings
		want     int
	}{
		{name: "enabled", settings: &config.Settings{Port: 8123, AdminUser: "admin", AdminPassword: "secret"}, want: http.StatusNoContent},
		{name: "no password", settings: &config.Settings{Port: 8123, AdminUser: "admin"}, want: http.StatusNotFound},
		{name: "no user", settings: &config.Settings{Port: 8123, AdminPassword: "secret"}, want: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := &mockcontroller.C{}
			ctrl.On("Invalidate", mock.Anything, model.AllPlayers).Return(nil).Maybe()

			s, err := NewServer(tc.settings, ctrl, logging.Discard(), nil)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodDelete, "/admin/cache/all", nil)
			req.SetBasicAuth("admin", "secret")
			rec := httptest.NewRecorder()
			s.server.Handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
