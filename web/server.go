package web

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mww/stats_proxy/config"
	"github.com/mww/stats_proxy/controller"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

//go:embed templates
var templates embed.FS

type Server struct {
	server *http.Server
	log    logrus.FieldLogger
}

func NewServer(settings *config.Settings, ctrl controller.C, logger logrus.FieldLogger, gatherer prometheus.Gatherer) (*Server, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings are required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	render := newRender()
	router := getRouter(ctrl, render, routerOptions{
		log:           logger,
		gatherer:      gatherer,
		adminEnabled:  settings.AdminEnabled(),
		adminUser:     settings.AdminUser,
		adminPassword: settings.AdminPassword,
	})

	s := &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", settings.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: logger.WithField("component", "web"),
	}
	return s, nil
}

func (s *Server) ListenAndServe(shutdown chan bool, wg *sync.WaitGroup) {
	go func() {
		defer wg.Done()

		// Wait for the shutdown signal and safely close the server.
		<-shutdown

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			s.log.Fatalf("fatal error shutting down server: %v", err)
		}
	}()

	s.log.Infof("web server is listening on %s", s.server.Addr)
	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		s.log.Fatalf("fatal error with server: %v", err)
	}
}

func newRender() *render.Render {
	return render.New(render.Options{
		Directory: "templates",
		Layout:    "layout",
		FileSystem: &render.EmbedFileSystem{
			FS: templates,
		},
	})
}
