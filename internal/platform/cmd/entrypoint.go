// Package cmd holds the startup plumbing shared by headstate commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/louisbranch/headstate/internal/platform/config"
	"github.com/louisbranch/headstate/internal/platform/otel"
	"github.com/louisbranch/headstate/internal/platform/timeouts"
	otelapi "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// Service names, used as telemetry service names and log prefixes.
const (
	ServiceHeadRender = "headrender"
	ServiceHeadServe  = "headserve"
)

// ParseConfig loads HEADSTATE_* environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// Main prefixes the standard logger with the service name and runs run until
// it returns or the process is interrupted. A run error is fatal.
func Main(service string, run func(context.Context) error) {
	log.SetPrefix("[" + strings.ToUpper(service) + "] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		log.Fatalf("%s: %v", service, err)
	}
}

// RunWithTelemetry sets up tracing for service and executes run inside a
// root span. Telemetry is flushed before it returns.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) (err error) {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if serr := shutdown(shutdownCtx); serr != nil {
			log.Printf("%s otel shutdown: %v", service, serr)
		}
	}()

	ctx, span := otelapi.Tracer("headstate/"+service).Start(ctx, service+".run")
	defer span.End()
	if err = run(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
