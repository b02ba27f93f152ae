// Copyright (c) 2025 BVK Chaitanya

// Package orders implements subcommands to inspect checkpointed orders.
package orders

import (
	"context"
	"flag"
	"fmt"
	"path"

	"github.com/bvk/inflight/gobs"
	"github.com/bvk/inflight/kvutil"
	"github.com/bvk/inflight/subcmds/cmdutil"
	"github.com/bvkgo/kv"
	"github.com/visvasity/cli"
)

type List struct {
	cmdutil.DBFlags

	keyPrefix string
}

func (c *List) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	stdout := cli.Stdout(ctx)
	begin, end := kvutil.PathRange(path.Join(c.keyPrefix, "orders"))
	return kvutil.AscendDB(ctx, db, begin, end, func(ctx context.Context, _ kv.Reader, key string, v *gobs.Order) error {
		fmt.Fprintf(stdout, "%s %s %s %s %s %s@%s state=%s\n", v.ClientOrderID, v.ExchangeOrderID, v.TradingPair, v.Side, v.OrderType, v.Amount, v.Price, v.LastState)
		return nil
	})
}

func (c *List) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.keyPrefix, "key-prefix", "/inflight", "key prefix for the order checkpoints")
	return "list", fset, cli.CmdFunc(c.run)
}

func (c *List) Purpose() string {
	return "Prints a summary of all checkpointed orders"
}
