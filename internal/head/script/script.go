// Package script runs inline scripts that a commit adds to a live document.
package script

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/Shopify/go-lua"
	"github.com/louisbranch/headstate/internal/head"
	apperrors "github.com/louisbranch/headstate/internal/platform/errors"
)

// Executor runs one inline script tag.
type Executor interface {
	Execute(ctx context.Context, tag head.Tag) error
}

// Noop ignores every script.
type Noop struct{}

// Execute implements Executor.
func (Noop) Execute(context.Context, head.Tag) error { return nil }

// LuaTypes are the script type attributes the Lua executor runs.
var LuaTypes = []string{"text/lua", "application/lua"}

// IsLua reports whether tag is an inline Lua script.
func IsLua(tag head.Tag) bool {
	if tag.Type != head.TagScript || tag.Content() == "" {
		return false
	}
	return slices.Contains(LuaTypes, strings.ToLower(tag.Attributes.Get("type").String()))
}

// Lua runs inline Lua scripts in one shared interpreter, the way a page
// shares one global scope between its scripts. Other scripts are skipped.
type Lua struct {
	mu    sync.Mutex
	state *lua.State
}

// LuaOption configures a Lua executor.
type LuaOption func(*lua.State)

// WithFunction exposes fn to scripts as the global name.
func WithFunction(name string, fn lua.Function) LuaOption {
	return func(state *lua.State) {
		state.Register(name, fn)
	}
}

// NewLua creates a Lua executor with the standard libraries loaded.
func NewLua(opts ...LuaOption) *Lua {
	state := lua.NewState()
	lua.OpenLibraries(state)
	for _, opt := range opts {
		opt(state)
	}
	return &Lua{state: state}
}

// Execute implements Executor.
func (e *Lua) Execute(ctx context.Context, tag head.Tag) error {
	if !IsLua(tag) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := lua.DoString(e.state, tag.Content()); err != nil {
		return apperrors.WrapWithMetadata(apperrors.CodeScriptFailed, "run inline script: "+err.Error(),
			map[string]string{"type": tag.Attributes.Get("type").String()}, err)
	}
	return nil
}
