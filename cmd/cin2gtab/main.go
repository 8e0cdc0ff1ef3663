// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// cin2gtab compiles a .cin table definition into a binary .gtab table.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/oouyang/gtab"
)

var verbose bool

func main() {
	cmd := &cobra.Command{
		Use:          "cin2gtab <input.cin> <output.gtab>",
		Short:        "Compile a table definition into a binary table",
		Args:         cobra.ExactArgs(2),
		RunE:         run,
		SilenceUsage: true,
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log compile progress")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	def, err := gtab.ParseDefinitionFile(args[0])
	if err != nil {
		return err
	}

	var opts []gtab.CompileOption
	if verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		opts = append(opts, gtab.WithLogger(logger))
	}
	table, err := gtab.Compile(def, opts...)
	if err != nil {
		return err
	}
	if err := table.WriteFile(args[1]); err != nil {
		return err
	}

	stats := table.Stats()
	key64 := "no"
	if table.Key64() {
		key64 = "yes"
	}
	fmt.Fprintf(os.Stderr, "  cname:      %s\n", def.CName)
	fmt.Fprintf(os.Stderr, "  key_count:  %d\n", len(def.Keys))
	fmt.Fprintf(os.Stderr, "  entries:    %d\n", stats.ItemCount)
	fmt.Fprintf(os.Stderr, "  max_press:  %d\n", stats.MaxPress)
	fmt.Fprintf(os.Stderr, "  keybits:    %d\n", stats.KeyBits)
	fmt.Fprintf(os.Stderr, "  key64:      %s\n", key64)
	fmt.Fprintf(os.Stderr, "  wrote:      %s\n", args[1])
	return nil
}
