// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// gtab2cin converts a binary .gtab table (current or legacy layout)
// back into .cin definition text.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oouyang/gtab"
)

var (
	inPath  string
	outPath string
	machine bool
)

func main() {
	cmd := &cobra.Command{
		Use:          "gtab2cin -i <gtab> -o <cin>",
		Short:        "Convert a binary table back to definition text",
		RunE:         run,
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&inPath, "input", "i", "", "input table (.gtab) filename")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output table (.cin) filename")
	cmd.Flags().BoolVarP(&machine, "machine", "b", false, "machine-readable status output")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	status, stats, err := convert()
	if machine {
		fmt.Print(statusLine(status, stats))
	}
	if err != nil {
		return err
	}
	if !machine {
		fmt.Println("gtab2cin done")
	}
	return nil
}

// statusLine formats the machine-readable result as
// status:keybits:max_press:entry_count, with no trailing newline.
func statusLine(status int, stats gtab.Stats) string {
	if status != 0 {
		return fmt.Sprintf("%d:0:0:0", status)
	}
	return fmt.Sprintf("0:%d:%d:%d", stats.KeyBits, stats.MaxPress, stats.ItemCount)
}

func convert() (int, gtab.Stats, error) {
	if inPath == "" || outPath == "" {
		return -1, gtab.Stats{}, errors.New("both --input and --output are required")
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		return 1, gtab.Stats{}, err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return 2, gtab.Stats{}, err
	}

	stats, err := gtab.Reconstruct(out, data, filepath.Base(inPath))
	if err != nil {
		_ = out.Close()
		_ = os.Remove(outPath)
		return 1, gtab.Stats{}, err
	}
	if err := out.Close(); err != nil {
		return 2, gtab.Stats{}, err
	}
	return 0, stats, nil
}
