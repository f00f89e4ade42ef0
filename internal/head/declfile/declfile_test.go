package declfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/headstate/internal/head"
	apperrors "github.com/louisbranch/headstate/internal/platform/errors"
)

type captureLogger struct {
	lines []string
}

func (l *captureLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

const sample = `
contributors:
  - depth: 0
    title: Main Title
    titleTemplate: "%s | Site"
    defaultTitle: Fallback
    defer: false
    encodeSpecialCharacters: true
    htmlAttributes: {lang: en, amp: null}
    base: {target: _blank, href: "http://localhost/"}
    meta:
      - {name: description, content: Test}
      - {charset: utf-8}
    style:
      - type: text/css
        cssText: |
          body {background-color: green;}
  - depth: 1
    title: ""
    bodyAttributes:
      class: page
      data-theme: dark
    script:
      - {src: "http://localhost/test.js", async: null}
`

func TestParseSample(t *testing.T) {
	t.Parallel()

	logger := &captureLogger{}
	file, err := Parse([]byte(sample), logger)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(logger.lines) != 0 {
		t.Fatalf("diagnostics = %v, want none", logger.lines)
	}
	if len(file.Contributors) != 2 {
		t.Fatalf("len(Contributors) = %d, want 2", len(file.Contributors))
	}

	outer := file.Contributors[0].Declaration
	if outer.Title.String() != "Main Title" || outer.TitleTemplate.String() != "%s | Site" || outer.DefaultTitle.String() != "Fallback" {
		t.Fatalf("titles = %q %q %q", outer.Title, outer.TitleTemplate, outer.DefaultTitle)
	}
	if outer.Deferred() {
		t.Fatal("expected defer=false")
	}
	if outer.EncodeSpecialCharacters == nil || !*outer.EncodeSpecialCharacters {
		t.Fatal("expected encodeSpecialCharacters=true")
	}
	if got := strings.Join(outer.HTMLAttributes.Keys(), ","); got != "lang,amp" {
		t.Fatalf("htmlAttributes keys = %s, want lang,amp", got)
	}
	if !outer.HTMLAttributes.Get("amp").IsEmpty() {
		t.Fatal("expected amp to be valueless")
	}
	if got := strings.Join(outer.Base.Keys(), ","); got != "target,href" {
		t.Fatalf("base keys = %s, want target,href", got)
	}
	if len(outer.Meta) != 2 || outer.Meta[1].Get("charset").String() != "utf-8" {
		t.Fatalf("meta = %v", outer.Meta)
	}
	if got := outer.Style[0].Get(head.CSSTextKey).String(); got != "body {background-color: green;}\n" {
		t.Fatalf("cssText = %q", got)
	}

	inner := file.Contributors[1]
	if inner.Depth != 1 {
		t.Fatalf("Depth = %d, want 1", inner.Depth)
	}
	if inner.Declaration.Title.Kind() != head.KindText || inner.Declaration.Title.String() != "" {
		t.Fatalf("title = %#v, want empty text", inner.Declaration.Title)
	}
	if inner.Declaration.TitleTemplate.IsSet() {
		t.Fatal("expected titleTemplate absent")
	}
	if got := strings.Join(inner.Declaration.BodyAttributes.Keys(), ","); got != "class,data-theme" {
		t.Fatalf("bodyAttributes keys = %s", got)
	}
	if !inner.Declaration.Script[0].Get("async").IsEmpty() {
		t.Fatal("expected async to be valueless")
	}
}

func TestParseDropsWrongShapes(t *testing.T) {
	t.Parallel()

	logger := &captureLogger{}
	file, err := Parse([]byte(`
contributors:
  - title: [not, a, scalar]
    meta: {name: description}
    link:
      - {rel: canonical, href: /}
      - just a string
      - {rel: [x]}
    depth: deep
    defer: maybe
    colour: blue
  - not a mapping
`), logger)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(file.Contributors) != 1 {
		t.Fatalf("len(Contributors) = %d, want 1", len(file.Contributors))
	}
	d := file.Contributors[0].Declaration
	if d.Title.IsSet() {
		t.Fatal("expected non-scalar title dropped")
	}
	if d.Meta != nil {
		t.Fatalf("meta = %v, want dropped", d.Meta)
	}
	if len(d.Link) != 2 {
		t.Fatalf("len(link) = %d, want 2 (string entry dropped)", len(d.Link))
	}
	if len(d.Link[1]) != 0 {
		t.Fatalf("link[1] = %v, want non-scalar attribute dropped", d.Link[1])
	}
	if d.Defer != nil {
		t.Fatal("expected invalid defer dropped")
	}

	wantFragments := []string{
		"title must be a scalar",
		"meta must be a list",
		"link entry must be a mapping",
		"link.rel must be a scalar",
		"depth must be an integer",
		"defer must be a boolean",
		`unknown field "colour"`,
		"contributor must be a mapping",
	}
	all := strings.Join(logger.lines, "\n")
	for _, want := range wantFragments {
		if !strings.Contains(all, want) {
			t.Fatalf("diagnostics missing %q:\n%s", want, all)
		}
	}
}

func TestParseDocumentErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		code apperrors.Code
	}{
		{name: "syntax", data: "contributors: [", code: apperrors.CodeDeclarationRead},
		{name: "not a mapping", data: "- a\n- b\n", code: apperrors.CodeDeclarationShape},
		{name: "contributors not a list", data: "contributors: {title: x}\n", code: apperrors.CodeDeclarationShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.data), &captureLogger{})
			if code := apperrors.CodeOf(err); code != tt.code {
				t.Fatalf("CodeOf() = %q, want %q (err %v)", code, tt.code, err)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	file, err := Parse(nil, &captureLogger{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(file.Contributors) != 0 {
		t.Fatalf("len(Contributors) = %d, want 0", len(file.Contributors))
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "head.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	file, err := Load(path, &captureLogger{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(file.Contributors) != 2 {
		t.Fatalf("len(Contributors) = %d, want 2", len(file.Contributors))
	}

	_, err = Load(filepath.Join(dir, "missing.yaml"), &captureLogger{})
	if code := apperrors.CodeOf(err); code != apperrors.CodeDeclarationRead {
		t.Fatalf("CodeOf() = %q, want %q", code, apperrors.CodeDeclarationRead)
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	file, err := Decode(strings.NewReader("contributors:\n  - title: T\n"), &captureLogger{})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := file.Contributors[0].Declaration.Title.String(); got != "T" {
		t.Fatalf("title = %q, want %q", got, "T")
	}
}
