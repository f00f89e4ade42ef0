// Package main starts the headserve HTTP service.
package main

import (
	"context"
	"flag"
	"os"

	headservecmd "github.com/louisbranch/headstate/internal/cmd/headserve"
	entrypoint "github.com/louisbranch/headstate/internal/platform/cmd"
	"github.com/louisbranch/headstate/internal/platform/config"
)

func main() {
	cfg, err := headservecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("headserve: %v", err)
	}
	entrypoint.Main(entrypoint.ServiceHeadServe, func(ctx context.Context) error {
		return headservecmd.Run(ctx, cfg)
	})
}
