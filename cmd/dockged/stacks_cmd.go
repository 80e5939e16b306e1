package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/cfilipov/dockge/internal/compose"
)

// StacksCmd lists the compose stacks found under the configured
// stacks directory, adapted from ls_cmd.go's tabwriter listing.
type StacksCmd struct{}

func (c *StacksCmd) Run(cctx *Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	list, err := compose.GetStackList(ctx, cctx.Cfg.StacksDir)
	if err != nil {
		slog.ErrorContext(ctx, "GetStackList", "error", err)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tSTARTED\t")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%v\t\n", s.Name, s.Status, s.Started)
	}
	return w.Flush()
}
