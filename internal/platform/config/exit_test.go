package config

import (
	"bytes"
	"os"
	"testing"
)

func TestExitf(t *testing.T) {
	var out bytes.Buffer
	code := -1
	stderr, exit = &out, func(c int) { code = c }
	t.Cleanup(func() { stderr, exit = os.Stderr, os.Exit })

	Exitf("headrender: %s", "no declaration files")
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if got, want := out.String(), "headrender: no declaration files\n"; got != want {
		t.Fatalf("stderr = %q, want %q", got, want)
	}

	out.Reset()
	Exitf("done\n")
	if got := out.String(); got != "done\n" {
		t.Fatalf("stderr = %q, want a single newline", got)
	}
}
