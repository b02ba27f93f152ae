// Copyright (c) 2025 BVK Chaitanya

package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"github.com/bvk/inflight/subcmds"
	"github.com/bvk/inflight/subcmds/orders"
	"github.com/bvk/inflight/subcmds/throttle"
	"github.com/visvasity/cli"
	"github.com/visvasity/sglog"
)

var (
	logDir = flag.String("log-dir", "", "path to the log files directory")
	debug  = flag.Bool("debug", false, "enable debug level logging")
)

func main() {
	flag.Parse()

	var opts sglog.Options
	if len(*logDir) != 0 {
		opts.LogDirs = []string{*logDir}
	}
	backend := sglog.NewBackend(&opts)
	defer backend.Close()
	if *debug {
		backend.SetLevel(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(backend.Handler()))

	orderCmds := []cli.Command{
		new(orders.List),
		new(orders.Get),
		new(orders.Export),
		new(orders.Import),
	}

	throttleCmds := []cli.Command{
		new(throttle.Probe),
	}

	cmds := []cli.Command{
		new(subcmds.IDGen),
		cli.NewGroup("orders", "View checkpointed orders", orderCmds...),
		cli.NewGroup("throttle", "Experiment with rate-limit windows", throttleCmds...),
	}
	if err := cli.Run(context.Background(), cmds, flag.Args()); err != nil {
		log.Fatal(err)
	}
}
