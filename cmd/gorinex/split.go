// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	m "github.com/mkhts/gorinex"
)

func newSplitCommand(opts *rootOpts) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "split <file>",
		Short: "Split at an epoch, or at the merge boundaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.read(args[0])
			if err != nil {
				return err
			}
			var e *m.Epoch
			if at != "" {
				x, err := m.ParseEpoch(at)
				if err != nil {
					return fmt.Errorf("bad --at: %w", err)
				}
				e = &x
			}
			parts, err := r.Split(e)
			if err != nil {
				return err
			}
			base := opts.output
			if base == "" {
				base = args[0]
			}
			for i, p := range parts {
				fn := partName(base, i)
				if err := p.ToFile(fn, opts.cfg.ProducerID()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), fn)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", `split epoch "yyyy mm dd hh mm ss"`)
	return cmd
}

// "name.ext" -> "name-<i>.ext"
func partName(path string, i int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), i, ext)
}
