// Copyright (c) 2025 BVK Chaitanya

package orders

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/bvk/inflight/gobs"
	"github.com/bvk/inflight/kvutil"
	"github.com/bvk/inflight/subcmds/cmdutil"
	"github.com/bvkgo/kv"
	"github.com/visvasity/cli"
)

type Export struct {
	cmdutil.DBFlags

	keyPrefix string

	outfile string
}

func (c *Export) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	out := cli.Stdout(ctx)
	if len(c.outfile) != 0 {
		fp, err := os.Create(c.outfile)
		if err != nil {
			return fmt.Errorf("could not create output file %q: %w", c.outfile, err)
		}
		defer fp.Close()
		out = fp
	}

	encoder := json.NewEncoder(out)
	begin, end := kvutil.PathRange(path.Join(c.keyPrefix, "orders"))
	return kvutil.AscendDB(ctx, db, begin, end, func(ctx context.Context, _ kv.Reader, key string, v *gobs.Order) error {
		return encoder.Encode(v)
	})
}

func (c *Export) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("export", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.keyPrefix, "key-prefix", "/inflight", "key prefix for the order checkpoints")
	fset.StringVar(&c.outfile, "outfile", "", "path to the output file (default stdout)")
	return "export", fset, cli.CmdFunc(c.run)
}

func (c *Export) Purpose() string {
	return "Writes all checkpointed orders as JSON lines"
}
