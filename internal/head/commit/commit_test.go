package commit

import (
	"context"
	"testing"

	"github.com/louisbranch/headstate/internal/head"
	"github.com/louisbranch/headstate/internal/head/dom"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func mustParse(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(src)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func attrOf(t *testing.T, doc *dom.Document, which string, key string) (string, bool) {
	t.Helper()
	switch which {
	case "html":
		return dom.Attr(doc.HTML(), key)
	case "body":
		return dom.Attr(doc.Body(), key)
	case "title":
		return dom.Attr(doc.TitleElement(), key)
	}
	t.Fatalf("unknown element %q", which)
	return "", false
}

func TestApplyHTMLAttributesReplacesManagedKeys(t *testing.T) {
	t.Parallel()

	doc := dom.New()
	engine := New()
	ctx := context.Background()

	first := head.EmptyState()
	first.HTMLAttributes = head.Attributes{
		{Key: "lang", Value: head.Text("en")},
		{Key: "amp", Value: head.Empty()},
	}
	engine.Apply(ctx, doc, first)
	if amp, ok := attrOf(t, doc, "html", "amp"); !ok || amp != "" {
		t.Fatalf("amp = %q (%t), want empty attribute", amp, ok)
	}
	if marker, _ := attrOf(t, doc, "html", head.ManagedAttribute); marker != "lang,amp" {
		t.Fatalf("marker = %q, want %q", marker, "lang,amp")
	}

	second := head.EmptyState()
	second.HTMLAttributes = head.Pairs("id", "x", "title", "y")
	engine.Apply(ctx, doc, second)

	for _, key := range []string{"lang", "amp"} {
		if _, ok := attrOf(t, doc, "html", key); ok {
			t.Fatalf("expected %s removed", key)
		}
	}
	if id, _ := attrOf(t, doc, "html", "id"); id != "x" {
		t.Fatalf("id = %q, want %q", id, "x")
	}
	if title, _ := attrOf(t, doc, "html", "title"); title != "y" {
		t.Fatalf("title = %q, want %q", title, "y")
	}
	if marker, _ := attrOf(t, doc, "html", head.ManagedAttribute); marker != "id,title" {
		t.Fatalf("marker = %q, want %q", marker, "id,title")
	}
}

func TestApplyHTMLAttributesOverwriteAndNew(t *testing.T) {
	t.Parallel()

	doc := dom.New()
	engine := New()
	ctx := context.Background()

	first := head.EmptyState()
	first.HTMLAttributes = head.Attributes{{Key: "lang", Value: head.Text("en")}, {Key: "amp", Value: head.Empty()}}
	engine.Apply(ctx, doc, first)

	second := head.EmptyState()
	second.HTMLAttributes = head.Pairs("lang", "ja", "id", "html-tag", "title", "html tag")
	engine.Apply(ctx, doc, second)

	if _, ok := attrOf(t, doc, "html", "amp"); ok {
		t.Fatal("expected amp removed")
	}
	if lang, _ := attrOf(t, doc, "html", "lang"); lang != "ja" {
		t.Fatalf("lang = %q, want %q", lang, "ja")
	}
	if marker, _ := attrOf(t, doc, "html", head.ManagedAttribute); marker != "lang,id,title" {
		t.Fatalf("marker = %q, want %q", marker, "lang,id,title")
	}
}

func TestApplyForeignAttributes(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<html test="test"><head></head><body></body></html>`)
	engine := New()
	ctx := context.Background()

	engine.Apply(ctx, doc, head.EmptyState())
	if got, _ := attrOf(t, doc, "html", "test"); got != "test" {
		t.Fatalf("test = %q, want untouched foreign value", got)
	}
	if _, ok := attrOf(t, doc, "html", head.ManagedAttribute); ok {
		t.Fatal("expected no marker without managed attributes")
	}

	managed := head.EmptyState()
	managed.HTMLAttributes = head.Pairs("test", "helmet-attr")
	engine.Apply(ctx, doc, managed)
	if got, _ := attrOf(t, doc, "html", "test"); got != "helmet-attr" {
		t.Fatalf("test = %q, want %q", got, "helmet-attr")
	}
	if marker, _ := attrOf(t, doc, "html", head.ManagedAttribute); marker != "test" {
		t.Fatalf("marker = %q, want %q", marker, "test")
	}

	engine.Apply(ctx, doc, head.EmptyState())
	if _, ok := attrOf(t, doc, "html", "test"); ok {
		t.Fatal("expected managed attribute cleared")
	}
	if _, ok := attrOf(t, doc, "html", head.ManagedAttribute); ok {
		t.Fatal("expected marker cleared")
	}
}

func TestApplyTitleAndTitleAttributes(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<html><head><title>Test Title</title></head><body></body></html>`)
	engine := New()
	ctx := context.Background()

	state := head.EmptyState()
	state.TitleAttributes = head.Attributes{
		{Key: "lang", Value: head.Text("ja")},
		{Key: "hidden", Value: head.Empty()},
	}
	engine.Apply(ctx, doc, state)
	if got := doc.Title(); got != "Test Title" {
		t.Fatalf("Title() = %q, want untouched %q", got, "Test Title")
	}
	if marker, _ := attrOf(t, doc, "title", head.ManagedAttribute); marker != "lang,hidden" {
		t.Fatalf("marker = %q, want %q", marker, "lang,hidden")
	}
	if hidden, ok := attrOf(t, doc, "title", "hidden"); !ok || hidden != "" {
		t.Fatalf("hidden = %q (%t), want empty attribute", hidden, ok)
	}

	next := head.EmptyState()
	next.Title = "Test Title with itemProp"
	next.TitleAttributes = head.Pairs("itemprop", "name")
	engine.Apply(ctx, doc, next)
	if got := doc.Title(); got != "Test Title with itemProp" {
		t.Fatalf("Title() = %q, want %q", got, "Test Title with itemProp")
	}
	if _, ok := attrOf(t, doc, "title", "lang"); ok {
		t.Fatal("expected lang removed from title")
	}
	if marker, _ := attrOf(t, doc, "title", head.ManagedAttribute); marker != "itemprop" {
		t.Fatalf("marker = %q, want %q", marker, "itemprop")
	}
}

func TestApplyReportsAddedTags(t *testing.T) {
	t.Parallel()

	doc := dom.New()
	state := head.EmptyState()
	state.Title = "Main Title"
	state.Base = head.Pairs("href", "http://mysite.com/")
	state.Meta = []head.Tag{{Type: head.TagMeta, Attributes: head.Pairs("charset", "utf-8")}}
	state.Link = []head.Tag{{Type: head.TagLink, Attributes: head.Pairs("href", "http://localhost/helmet", "rel", "canonical")}}
	state.Script = []head.Tag{{Type: head.TagScript, Attributes: head.Pairs("src", "http://localhost/test.js", "type", "text/javascript")}}

	change := New().Apply(context.Background(), doc, state)

	wants := map[head.TagType]string{
		head.TagBase:   `<base href="http://mysite.com/" data-head-managed="true"/>`,
		head.TagMeta:   `<meta charset="utf-8" data-head-managed="true"/>`,
		head.TagLink:   `<link href="http://localhost/helmet" rel="canonical" data-head-managed="true"/>`,
		head.TagScript: `<script src="http://localhost/test.js" type="text/javascript" data-head-managed="true"></script>`,
	}
	for tagType, want := range wants {
		added := change.Added[tagType]
		if len(added) != 1 {
			t.Fatalf("len(Added[%s]) = %d, want 1", tagType, len(added))
		}
		if got := dom.OuterHTML(added[0]); got != want {
			t.Fatalf("Added[%s] = %q, want %q", tagType, got, want)
		}
	}
	if len(change.Removed) != 0 {
		t.Fatalf("Removed = %v, want empty", change.Removed)
	}
	if doc.Title() != "Main Title" {
		t.Fatalf("Title() = %q, want %q", doc.Title(), "Main Title")
	}
}

func TestApplyOnlyAddsNewTags(t *testing.T) {
	t.Parallel()

	doc := dom.New()
	engine := New()
	ctx := context.Background()

	stylesheet := head.Pairs("href", "http://localhost/style.css", "rel", "stylesheet", "type", "text/css")
	first := head.EmptyState()
	first.Link = []head.Tag{{Type: head.TagLink, Attributes: stylesheet}}
	first.Meta = []head.Tag{{Type: head.TagMeta, Attributes: head.Pairs("name", "description", "content", "Test description")}}
	engine.Apply(ctx, doc, first)

	second := head.EmptyState()
	second.Link = []head.Tag{
		{Type: head.TagLink, Attributes: stylesheet},
		{Type: head.TagLink, Attributes: head.Pairs("href", "http://localhost/style2.css", "rel", "stylesheet", "type", "text/css")},
	}
	second.Meta = []head.Tag{{Type: head.TagMeta, Attributes: head.Pairs("name", "description", "content", "New description")}}
	change := engine.Apply(ctx, doc, second)

	if got := dom.OuterHTML(change.Added[head.TagMeta][0]); got != `<meta name="description" content="New description" data-head-managed="true"/>` {
		t.Fatalf("added meta = %q", got)
	}
	if got := dom.OuterHTML(change.Added[head.TagLink][0]); got != `<link href="http://localhost/style2.css" rel="stylesheet" type="text/css" data-head-managed="true"/>` {
		t.Fatalf("added link = %q", got)
	}
	if got := dom.OuterHTML(change.Removed[head.TagMeta][0]); got != `<meta name="description" content="Test description" data-head-managed="true"/>` {
		t.Fatalf("removed meta = %q", got)
	}
	if _, ok := change.Removed[head.TagLink]; ok {
		t.Fatal("expected no link removal")
	}
	if got := len(doc.Managed(head.TagLink)); got != 2 {
		t.Fatalf("managed links = %d, want 2", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	doc := dom.New()
	engine := New()
	ctx := context.Background()

	state := head.EmptyState()
	state.Title = "Test Title"
	state.HTMLAttributes = head.Pairs("lang", "en")
	state.Meta = []head.Tag{
		{Type: head.TagMeta, Attributes: head.Pairs("name", "description", "content", "x")},
		{Type: head.TagMeta, Attributes: head.Pairs("name", "description", "content", "x")},
	}
	state.Noscript = []head.Tag{{Type: head.TagNoscript, Attributes: head.Pairs("id", "foo", head.InnerHTMLKey, `<link rel="stylesheet" href="foo.css" />`)}}

	if first := engine.Apply(ctx, doc, state); first.Empty() {
		t.Fatal("expected first commit to add tags")
	}
	before := doc.String()
	if second := engine.Apply(ctx, doc, state); !second.Empty() {
		t.Fatalf("second commit added %v removed %v, want nothing", second.Added, second.Removed)
	}
	if after := doc.String(); after != before {
		t.Fatalf("document changed on identical commit:\n%s\n%s", before, after)
	}
}

func TestApplyKeepsForeignAndServerRenderedElements(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<html><head>`+
		`<meta name="description" content="foreign">`+
		`<script data-head-managed="true" src="http://localhost/test.js" type="text/javascript"></script>`+
		`</head><body></body></html>`)

	state := head.EmptyState()
	state.Script = []head.Tag{{Type: head.TagScript, Attributes: head.Pairs("src", "http://localhost/test.js", "type", "text/javascript")}}
	change := New().Apply(context.Background(), doc, state)

	if !change.Empty() {
		t.Fatalf("change added %v removed %v, want nothing", change.Added, change.Removed)
	}

	cleared := New().Apply(context.Background(), doc, head.EmptyState())
	if got := len(cleared.Removed[head.TagScript]); got != 1 {
		t.Fatalf("removed scripts = %d, want 1", got)
	}
	if _, ok := cleared.Removed[head.TagMeta]; ok {
		t.Fatal("expected foreign meta to be left alone")
	}
	if doc.Head().FirstChild == nil {
		t.Fatal("expected foreign meta to stay in head")
	}
}

func TestApplyMatchesServerRenderedKeysIgnoringCase(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<html><head>`+
		`<link data-head-managed="true" rel="alternate" hrefLang="pt-BR" href="http://localhost/pt">`+
		`</head><body></body></html>`)

	state := head.EmptyState()
	state.Link = []head.Tag{{Type: head.TagLink, Attributes: head.Pairs("rel", "alternate", "hrefLang", "pt-BR", "href", "http://localhost/pt")}}
	if change := New().Apply(context.Background(), doc, state); !change.Empty() {
		t.Fatalf("change added %v removed %v, want nothing", change.Added, change.Removed)
	}

	state.Link = append(state.Link, head.Tag{Type: head.TagLink, Attributes: head.Pairs("rel", "alternate", "hrefLang", "en", "href", "http://localhost/en")})
	change := New().Apply(context.Background(), doc, state)
	added := change.Added[head.TagLink]
	if len(added) != 1 {
		t.Fatalf("added links = %d, want 1", len(added))
	}
	want := `<link rel="alternate" hreflang="en" href="http://localhost/en" data-head-managed="true"/>`
	if got := dom.OuterHTML(added[0]); got != want {
		t.Fatalf("OuterHTML() = %q, want %q", got, want)
	}
	if again := New().Apply(context.Background(), doc, state); !again.Empty() {
		t.Fatalf("second apply added %v removed %v, want nothing", again.Added, again.Removed)
	}
}

func TestApplyRecordsSpan(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	engine := New(WithTracerProvider(provider))

	state := head.EmptyState()
	state.Meta = []head.Tag{{Type: head.TagMeta, Attributes: head.Pairs("charset", "utf-8")}}
	engine.Apply(context.Background(), dom.New(), state)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if got := spans[0].Name(); got != "head.commit" {
		t.Fatalf("span name = %q, want %q", got, "head.commit")
	}
	counts := map[string]int64{}
	for _, kv := range spans[0].Attributes() {
		counts[string(kv.Key)] = kv.Value.AsInt64()
	}
	if counts["head.added"] != 1 || counts["head.removed"] != 0 {
		t.Fatalf("span attributes = %v, want added=1 removed=0", counts)
	}
}
