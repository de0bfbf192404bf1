// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.16
//

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	m "github.com/mkhts/gorinex"
)

func newMergeCommand(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <file> <file>...",
		Short: "Merge files of the same type into one",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readAll(opts, args)
			if err != nil {
				return err
			}
			out := files[0]
			for i, r := range files[1:] {
				if err := out.Merge(r, opts.cfg.ProducerID()); err != nil {
					return fmt.Errorf("failed to merge %s: %w", args[i+1], err)
				}
			}
			return opts.write(out, opts.output, cmd.OutOrStdout())
		},
	}
}

// Read files in parallel, results in argument order. The first error wins.
func readAll(opts *rootOpts, paths []string) ([]*m.Rinex, error) {
	files := make([]*m.Rinex, len(paths))
	var g errgroup.Group
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			r, err := opts.read(p)
			if err != nil {
				return err
			}
			files[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
