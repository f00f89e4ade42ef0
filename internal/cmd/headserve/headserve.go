// Package headserve wires the headserve HTTP service command.
package headserve

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"

	entrypoint "github.com/louisbranch/headstate/internal/platform/cmd"
	"github.com/louisbranch/headstate/internal/services/headserve"
)

// Config holds headserve command configuration.
type Config struct {
	HTTPAddr  string   `env:"SERVE_HTTP_ADDR" envDefault:"localhost:8090"`
	Languages []string `env:"SERVE_LANGUAGES" envDefault:"en" envSeparator:","`

	Files []string `env:"-"`
}

// ParseConfig parses environment and flags into a Config. Remaining
// arguments name declaration files, outermost first.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	languages := strings.Join(cfg.Languages, ",")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&languages, "languages", languages, "comma-separated supported languages, default first")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Languages = strings.Split(languages, ",")
	cfg.Files = fs.Args()
	if len(cfg.Files) == 0 {
		return Config{}, errors.New("at least one declaration file is required")
	}
	return cfg, nil
}

// Run starts the headserve service until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceHeadServe, func(ctx context.Context) error {
		server, err := headserve.NewServer(headserve.Config{
			HTTPAddr:  cfg.HTTPAddr,
			Files:     cfg.Files,
			Languages: cfg.Languages,
			Logger:    log.Default(),
		})
		if err != nil {
			return err
		}
		defer server.Close()

		log.Printf("listening on %s", cfg.HTTPAddr)
		return server.ListenAndServe(ctx)
	})
}
