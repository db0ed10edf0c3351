// Package server exposes the websocket call endpoint and health check.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/torqlabs/voice-concierge/agent/dispatch"
	"github.com/torqlabs/voice-concierge/session"
)

type Config struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
	Debug           bool          `envconfig:"DEBUG" default:"false"`
}

type Server struct {
	cfg        Config
	dispatcher *dispatch.Dispatcher
	manager    *session.Manager
	upgrader   websocket.Upgrader
	httpSrv    *http.Server
}

func New(cfg Config, dispatcher *dispatch.Dispatcher, manager *session.Manager) (*Server, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if manager == nil {
		return nil, errors.New("session manager is required")
	}

	s := &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		manager:    manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)
	router.GET("/v1/call", s.handleCall)

	s.httpSrv = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	return s, nil
}

// Run serves until ctx is cancelled, then drains within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info().Str("port", s.cfg.Port).Msg("call server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.manager.Shutdown()
	return s.httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"active_calls": s.manager.ActiveCalls(),
	})
}
