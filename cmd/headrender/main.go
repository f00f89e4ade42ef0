// Package main composes head declaration files into markup.
//
// Without -document it prints the server-rendered head (or a full page with
// -format page); with -document it reconciles the named HTML file as a live
// document and prints the result.
package main

import (
	"context"
	"flag"
	"os"

	headrendercmd "github.com/louisbranch/headstate/internal/cmd/headrender"
	entrypoint "github.com/louisbranch/headstate/internal/platform/cmd"
	"github.com/louisbranch/headstate/internal/platform/config"
)

func main() {
	cfg, err := headrendercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("headrender: %v", err)
	}
	entrypoint.Main(entrypoint.ServiceHeadRender, func(ctx context.Context) error {
		return headrendercmd.Run(ctx, cfg)
	})
}
