// Copyright (c) 2025 BVK Chaitanya

package orders

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"path"

	"github.com/bvk/inflight/gobs"
	"github.com/bvk/inflight/kvutil"
	"github.com/bvk/inflight/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Get struct {
	cmdutil.DBFlags

	keyPrefix string
}

func (c *Get) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes one (client-order-id) argument")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	key := path.Join(c.keyPrefix, "orders", args[0])
	v, err := kvutil.GetDB[gobs.Order](ctx, db, key)
	if err != nil {
		return fmt.Errorf("could not read order at key %q: %w", key, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.Stdout(ctx), "%s\n", data)
	return nil
}

func (c *Get) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("get", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.keyPrefix, "key-prefix", "/inflight", "key prefix for the order checkpoints")
	return "get", fset, cli.CmdFunc(c.run)
}

func (c *Get) Purpose() string {
	return "Prints one checkpointed order as JSON"
}
