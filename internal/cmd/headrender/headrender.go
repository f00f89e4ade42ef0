// Package headrender composes declaration files into head markup from the
// command line.
package headrender

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Shopify/go-lua"
	"github.com/louisbranch/headstate/internal/head/commit"
	"github.com/louisbranch/headstate/internal/head/declfile"
	"github.com/louisbranch/headstate/internal/head/dom"
	"github.com/louisbranch/headstate/internal/head/registry"
	"github.com/louisbranch/headstate/internal/head/render"
	"github.com/louisbranch/headstate/internal/head/schedule"
	"github.com/louisbranch/headstate/internal/head/script"
	"github.com/louisbranch/headstate/internal/head/session"
	entrypoint "github.com/louisbranch/headstate/internal/platform/cmd"
)

// Output formats.
const (
	FormatHead = "head"
	FormatPage = "page"
)

// Config holds headrender command configuration.
type Config struct {
	Document   string `env:"RENDER_DOCUMENT"`
	Format     string `env:"RENDER_FORMAT"      envDefault:"head"`
	RunScripts bool   `env:"RENDER_RUN_SCRIPTS" envDefault:"false"`

	Files []string  `env:"-"`
	Out   io.Writer `env:"-"`
}

// ParseConfig parses environment and flags into a Config. Remaining
// arguments name declaration files, outermost first.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Document, "document", cfg.Document, "HTML document to update in place of server rendering")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "server output: head or page")
	fs.BoolVar(&cfg.RunScripts, "run-scripts", cfg.RunScripts, "run inline text/lua scripts added to the document")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Files = fs.Args()
	if len(cfg.Files) == 0 {
		return Config{}, errors.New("at least one declaration file is required")
	}
	if cfg.Format != FormatHead && cfg.Format != FormatPage {
		return Config{}, fmt.Errorf("unknown format %q", cfg.Format)
	}
	cfg.Out = os.Stdout
	return cfg, nil
}

// Run composes the declaration files and writes the result to cfg.Out.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceHeadRender, func(ctx context.Context) error {
		if cfg.Out == nil {
			cfg.Out = os.Stdout
		}
		if cfg.Document != "" {
			return renderDocument(ctx, cfg)
		}
		return renderServer(ctx, cfg)
	})
}

func load(s *session.Session, files []string) error {
	for _, path := range files {
		file, err := declfile.Load(path, log.Default())
		if err != nil {
			return err
		}
		for _, c := range file.Contributors {
			if _, err := s.Register(c.Declaration, registry.AtDepth(c.Depth)); err != nil {
				log.Printf("%s: %v", path, err)
			}
		}
	}
	return nil
}

func renderServer(ctx context.Context, cfg Config) error {
	s := session.New()
	if err := load(s, cfg.Files); err != nil {
		return err
	}
	h, err := s.Rewind()
	if err != nil {
		return fmt.Errorf("rewind: %w", err)
	}

	if cfg.Format == FormatPage {
		return render.Page(h, nil).Render(ctx, cfg.Out)
	}
	_, err = io.WriteString(cfg.Out, h.String()+"\n")
	return err
}

func renderDocument(ctx context.Context, cfg Config) error {
	data, err := os.ReadFile(cfg.Document)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	doc, err := dom.Parse(bytes.NewReader(data))
	if err != nil {
		return err
	}

	var exec script.Executor = script.Noop{}
	if cfg.RunScripts {
		exec = script.NewLua(script.WithFunction("headlog", func(state *lua.State) int {
			log.Printf("script: %s", lua.CheckString(state, 1))
			return 0
		}))
	}

	frame := &schedule.ManualFrame{}
	s := session.New(
		session.WithFrame(frame),
		session.WithExecutor(exec),
		session.WithDocument(doc),
	)
	s.Subscribe(func(c commit.Change) {
		log.Printf("commit: %d added, %d removed", c.Added.Count(), c.Removed.Count())
	})
	if err := load(s, cfg.Files); err != nil {
		return err
	}
	s.Flush()
	log.Printf("reconciled %d contributors, title %q", len(s.Contributors()), s.Committed().Title)

	if err := ctx.Err(); err != nil {
		return err
	}
	return doc.Render(cfg.Out)
}
