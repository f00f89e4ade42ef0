// Package headserve serves pages whose head is composed per request from
// declaration files and the request's own language and title.
package headserve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/louisbranch/headstate/internal/head"
	"github.com/louisbranch/headstate/internal/head/declfile"
	"github.com/louisbranch/headstate/internal/platform/timeouts"
	"golang.org/x/text/language"
)

// Config defines startup inputs for the headserve service.
type Config struct {
	HTTPAddr  string
	Files     []string
	Languages []string
	Logger    head.Logger
}

// Server hosts the headserve HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
}

// NewServer loads the declaration files and constructs a server.
func NewServer(cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}

	var contributors []declfile.Contributor
	for _, path := range cfg.Files {
		file, err := declfile.Load(path, cfg.Logger)
		if err != nil {
			return nil, fmt.Errorf("load declarations: %w", err)
		}
		contributors = append(contributors, file.Contributors...)
	}

	languages, err := ParseLanguages(cfg.Languages)
	if err != nil {
		return nil, err
	}

	handler, err := NewHandler(HandlerConfig{
		Contributors: contributors,
		Languages:    languages,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("compose headserve handler: %w", err)
	}
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

// ParseLanguages parses BCP 47 tags, skipping blanks.
func ParseLanguages(values []string) ([]language.Tag, error) {
	var tags []language.Tag
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		tag, err := language.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("parse language %q: %w", v, err)
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil, errors.New("at least one language is required")
	}
	return tags, nil
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("headserve server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown headserve http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve headserve http: %w", err)
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
}
