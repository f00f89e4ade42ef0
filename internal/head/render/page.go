package render

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Page renders a complete HTML document around body, carrying the composed
// head and the managed <html> and <body> attributes.
func Page(h Head, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!DOCTYPE html><html"); err != nil {
			return err
		}
		if err := templ.RenderAttributes(ctx, w, h.HTMLAttributes.Templ()); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "><head>"); err != nil {
			return err
		}
		if err := h.Component().Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</head><body"); err != nil {
			return err
		}
		if err := templ.RenderAttributes(ctx, w, h.BodyAttributes.Templ()); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}
