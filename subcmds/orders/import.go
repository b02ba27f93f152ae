// Copyright (c) 2025 BVK Chaitanya

package orders

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/bvk/inflight/gobs"
	"github.com/bvk/inflight/kvutil"
	"github.com/bvk/inflight/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Import struct {
	cmdutil.DBFlags

	keyPrefix string
}

func (c *Import) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes one (input file) argument")
	}

	fp, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("could not open input file %q: %w", args[0], err)
	}
	defer fp.Close()

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	decoder := json.NewDecoder(fp)
	for {
		v := new(gobs.Order)
		if err := decoder.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("could not decode order from %q: %w", args[0], err)
		}
		if len(v.ClientOrderID) == 0 {
			return fmt.Errorf("order in %q has no client order id", args[0])
		}
		key := path.Join(c.keyPrefix, "orders", v.ClientOrderID)
		if err := kvutil.SetDB(ctx, db, key, v); err != nil {
			return fmt.Errorf("could not write order at key %q: %w", key, err)
		}
	}
}

func (c *Import) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("import", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.keyPrefix, "key-prefix", "/inflight", "key prefix for the order checkpoints")
	return "import", fset, cli.CmdFunc(c.run)
}

func (c *Import) Purpose() string {
	return "Loads orders exported as JSON lines into the database"
}
