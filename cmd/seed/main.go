package main

import (
	"context"
	"flag"
	"os"

	seedcmd "github.com/duskhaven/duskhaven/internal/cmd/seed"
	"github.com/duskhaven/duskhaven/internal/platform/config"
)

func main() {
	cfg, err := seedcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	if err := seedcmd.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("seed tables: %v", err)
	}
}
