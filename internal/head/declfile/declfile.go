// Package declfile reads head declarations from YAML files.
//
// A file lists contributors outermost first:
//
//	contributors:
//	  - depth: 0
//	    title: Main Title
//	    titleTemplate: "%s | Site"
//	    htmlAttributes: {lang: en, amp: null}
//	    meta:
//	      - {name: description, content: Test}
//
// Attribute mappings keep file order and a null value declares a valueless
// attribute. Fields or entries with the wrong shape are dropped with a
// diagnostic instead of failing the whole file.
package declfile

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/louisbranch/headstate/internal/head"
	apperrors "github.com/louisbranch/headstate/internal/platform/errors"
	"gopkg.in/yaml.v3"
)

// Contributor is one declaration read from a file.
type Contributor struct {
	Depth       int
	Declaration head.Declaration
}

// File is a parsed declaration file.
type File struct {
	Contributors []Contributor
}

// Load reads and parses path.
func Load(path string, logger head.Logger) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, apperrors.WrapWithMetadata(apperrors.CodeDeclarationRead,
			fmt.Sprintf("read declarations %s: %v", path, err), map[string]string{"path": path}, err)
	}
	return Parse(data, logger)
}

// Decode parses declarations from r.
func Decode(r io.Reader, logger head.Logger) (File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return File{}, apperrors.Wrap(apperrors.CodeDeclarationRead, "read declarations: "+err.Error(), err)
	}
	return Parse(data, logger)
}

// Parse parses a declaration document. An empty document has no
// contributors.
func Parse(data []byte, logger head.Logger) (File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return File{}, apperrors.Wrap(apperrors.CodeDeclarationRead, "parse declarations: "+err.Error(), err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return File{}, nil
	}

	doc := resolve(root.Content[0])
	if doc.Kind != yaml.MappingNode {
		return File{}, shapeError(doc, "document must be a mapping")
	}

	p := parser{logger: head.LoggerOrDefault(logger)}
	var file File
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], resolve(doc.Content[i+1])
		if key.Value != "contributors" {
			p.warn(key, "unknown field %q", key.Value)
			continue
		}
		if value.Kind != yaml.SequenceNode {
			return File{}, shapeError(value, "contributors must be a list")
		}
		for _, item := range value.Content {
			item = resolve(item)
			if item.Kind != yaml.MappingNode {
				p.warn(item, "contributor must be a mapping")
				continue
			}
			file.Contributors = append(file.Contributors, p.contributor(item))
		}
	}
	return file, nil
}

type parser struct {
	logger head.Logger
}

func (p parser) warn(n *yaml.Node, format string, v ...any) {
	p.logger.Printf("declfile: line %d: %s", n.Line, fmt.Sprintf(format, v...))
}

func (p parser) contributor(n *yaml.Node) Contributor {
	var c Contributor
	d := &c.Declaration
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], resolve(n.Content[i+1])
		switch key.Value {
		case "depth":
			if err := value.Decode(&c.Depth); err != nil {
				p.warn(value, "depth must be an integer")
			}
		case "title":
			d.Title = p.value(key.Value, value)
		case "defaultTitle":
			d.DefaultTitle = p.value(key.Value, value)
		case "titleTemplate":
			d.TitleTemplate = p.value(key.Value, value)
		case "defer":
			d.Defer = p.flag(key.Value, value)
		case "encodeSpecialCharacters":
			d.EncodeSpecialCharacters = p.flag(key.Value, value)
		case "titleAttributes":
			d.TitleAttributes = p.attributes(key.Value, value)
		case "htmlAttributes":
			d.HTMLAttributes = p.attributes(key.Value, value)
		case "bodyAttributes":
			d.BodyAttributes = p.attributes(key.Value, value)
		case "base":
			d.Base = p.attributes(key.Value, value)
		case "meta":
			d.Meta = p.tags(key.Value, value)
		case "link":
			d.Link = p.tags(key.Value, value)
		case "script":
			d.Script = p.tags(key.Value, value)
		case "noscript":
			d.Noscript = p.tags(key.Value, value)
		case "style":
			d.Style = p.tags(key.Value, value)
		default:
			p.warn(key, "unknown field %q", key.Value)
		}
	}
	return c
}

func (p parser) value(field string, n *yaml.Node) head.Value {
	if n.Kind != yaml.ScalarNode {
		p.warn(n, "%s must be a scalar", field)
		return head.Value{}
	}
	if n.ShortTag() == "!!null" {
		return head.Empty()
	}
	return head.Text(n.Value)
}

func (p parser) flag(field string, n *yaml.Node) *bool {
	var v bool
	if n.Kind != yaml.ScalarNode || n.Decode(&v) != nil {
		p.warn(n, "%s must be a boolean", field)
		return nil
	}
	return head.Bool(v)
}

func (p parser) attributes(field string, n *yaml.Node) head.Attributes {
	if n.Kind != yaml.MappingNode {
		p.warn(n, "%s must be a mapping", field)
		return nil
	}
	attrs := head.Attributes{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], resolve(n.Content[i+1])
		name := strings.TrimSpace(key.Value)
		if name == "" {
			p.warn(key, "%s has an empty attribute name", field)
			continue
		}
		if value.Kind != yaml.ScalarNode {
			p.warn(value, "%s.%s must be a scalar", field, name)
			continue
		}
		attrs = attrs.Set(name, p.value(field+"."+name, value))
	}
	return attrs
}

func (p parser) tags(field string, n *yaml.Node) []head.Attributes {
	if n.Kind != yaml.SequenceNode {
		p.warn(n, "%s must be a list", field)
		return nil
	}
	var out []head.Attributes
	for _, item := range n.Content {
		item = resolve(item)
		if item.Kind != yaml.MappingNode {
			p.warn(item, "%s entry must be a mapping", field)
			continue
		}
		out = append(out, p.attributes(field, item))
	}
	return out
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func shapeError(n *yaml.Node, msg string) error {
	return apperrors.WithMetadata(apperrors.CodeDeclarationShape,
		fmt.Sprintf("line %d: %s", n.Line, msg), map[string]string{"line": fmt.Sprint(n.Line)})
}
