// Copyright (c) 2025 BVK Chaitanya

// Package throttle implements subcommands to experiment with rate-limit
// window configurations.
package throttle

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/bvk/inflight/throttle"
	"github.com/visvasity/cli"
)

type Probe struct {
	limit  int64
	period time.Duration

	count  int
	weight int64
}

func (c *Probe) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	throttler, err := throttle.New(c.limit, c.period, nil)
	if err != nil {
		return err
	}

	stdout := cli.Stdout(ctx)
	start := time.Now()
	for i := 0; i < c.count; i++ {
		if err := throttler.Acquire(ctx, c.weight); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%d: weight %d admitted after %v (window usage %d/%d)\n", i, c.weight, time.Since(start), throttler.Used(), throttler.Limit())
	}
	return nil
}

func (c *Probe) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("probe", flag.ContinueOnError)
	fset.Int64Var(&c.limit, "limit", 10, "total weight admitted within one window")
	fset.DurationVar(&c.period, "period", time.Second, "length of the sliding window")
	fset.IntVar(&c.count, "count", 20, "number of operations to admit")
	fset.Int64Var(&c.weight, "weight", 1, "weight of each operation")
	return "probe", fset, cli.CmdFunc(c.run)
}

func (c *Probe) Purpose() string {
	return "Reports admission timing for a rate-limit window configuration"
}
