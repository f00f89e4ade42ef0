package headserve

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/louisbranch/headstate/internal/head"
	"github.com/louisbranch/headstate/internal/head/declfile"
	"github.com/louisbranch/headstate/internal/head/registry"
	"github.com/louisbranch/headstate/internal/head/render"
	"github.com/louisbranch/headstate/internal/head/session"
	apperrors "github.com/louisbranch/headstate/internal/platform/errors"
	"github.com/louisbranch/headstate/internal/platform/timeouts"
	"golang.org/x/text/language"
)

const (
	// LangParam overrides Accept-Language negotiation.
	LangParam = "lang"
	// TitleParam sets the page title from the request.
	TitleParam = "title"

	maxComposeBody = 1 << 20
)

// HandlerConfig defines the inputs of the page handler.
type HandlerConfig struct {
	// Contributors are composed into every page, outermost first.
	Contributors []declfile.Contributor
	// Languages lists the supported page languages; the first is the default.
	Languages []language.Tag
	Logger    head.Logger
}

type handler struct {
	contributors []declfile.Contributor
	languages    []language.Tag
	matcher      language.Matcher
	logger       head.Logger
	requestDepth int
}

// NewHandler builds the HTTP surface:
//
//	GET  /         full page with the composed head
//	GET  /head     composed head markup only
//	POST /compose  head markup for a YAML declaration body
//	GET  /healthz  liveness
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if len(cfg.Languages) == 0 {
		return nil, errors.New("at least one language is required")
	}
	h := &handler{
		contributors: cfg.Contributors,
		languages:    cfg.Languages,
		matcher:      language.NewMatcher(cfg.Languages),
		logger:       head.LoggerOrDefault(cfg.Logger),
	}
	for _, c := range cfg.Contributors {
		h.requestDepth = max(h.requestDepth, c.Depth+1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.page)
	mux.HandleFunc("GET /head", h.headOnly)
	mux.HandleFunc("POST /compose", h.compose)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	return requestLogger(log.Default(), http.TimeoutHandler(mux, timeouts.Request, "request timed out")), nil
}

// session composes the configured contributors plus the request's own
// contributor, innermost, carrying the negotiated language and title.
func (h *handler) session(r *http.Request) *session.Session {
	s := session.New(session.WithLogger(h.logger))
	for _, c := range h.contributors {
		h.register(s, c.Declaration, c.Depth)
	}

	decl := head.Declaration{HTMLAttributes: head.Pairs("lang", h.resolveLanguage(r).String())}
	if title := strings.TrimSpace(r.URL.Query().Get(TitleParam)); title != "" {
		decl.Title = head.Text(title)
	}
	h.register(s, decl, h.requestDepth)
	return s
}

func (h *handler) register(s *session.Session, decl head.Declaration, depth int) {
	if _, err := s.Register(decl, registry.AtDepth(depth)); err != nil {
		h.logger.Printf("headserve: register contributor: %v", err)
	}
}

// resolveLanguage picks the page language from the lang query parameter,
// then Accept-Language, then the default.
func (h *handler) resolveLanguage(r *http.Request) language.Tag {
	var wanted []language.Tag
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if tag, err := language.Parse(v); err == nil {
			wanted = append(wanted, tag)
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			wanted = append(wanted, tags...)
		}
	}
	if len(wanted) == 0 {
		return h.languages[0]
	}
	_, index, _ := h.matcher.Match(wanted...)
	return h.languages[index]
}

func (h *handler) page(w http.ResponseWriter, r *http.Request) {
	composed, err := h.session(r).Rewind()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Page(composed, pageBody(composed.State.Title)).Render(r.Context(), w); err != nil {
		h.logger.Printf("headserve: render page: %v", err)
	}
}

func (h *handler) headOnly(w http.ResponseWriter, r *http.Request) {
	composed, err := h.session(r).Rewind()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, composed.String())
}

func (h *handler) compose(w http.ResponseWriter, r *http.Request) {
	file, err := declfile.Decode(http.MaxBytesReader(w, r.Body, maxComposeBody), h.logger)
	if err != nil {
		writeError(w, err)
		return
	}
	s := session.New(session.WithLogger(h.logger))
	for _, c := range file.Contributors {
		h.register(s, c.Declaration, c.Depth)
	}
	composed, err := s.Rewind()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, composed.String())
}

func pageBody(title string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<main><h1>"+templ.EscapeString(title)+"</h1></main>")
		return err
	})
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), apperrors.CodeOf(err).HTTPStatus())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
