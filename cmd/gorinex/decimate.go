// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
)

func newDecimateCommand(opts *rootOpts) *cobra.Command {
	var (
		interval time.Duration
		ratio    int
		resample bool
		cleanup  bool
	)
	cmd := &cobra.Command{
		Use:   "decimate <file>",
		Short: "Reduce the sampling rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (interval > 0) == (ratio > 0) {
				return errors.New("exactly one of --interval or --ratio is required")
			}
			r, err := opts.read(args[0])
			if err != nil {
				return err
			}
			if cleanup {
				r.Cleanup()
			}
			switch {
			case ratio > 0:
				r.DecimateByRatio(ratio)
			case resample:
				r.Resample(interval)
			default:
				r.DecimateByInterval(interval)
			}
			return opts.write(r, opts.output, cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "minimum spacing between kept epochs (e.g. 30s)")
	cmd.Flags().IntVar(&ratio, "ratio", 0, "keep one epoch out of n")
	cmd.Flags().BoolVar(&resample, "resample", false, "keep epochs spaced by at least --interval")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "drop observation epochs not flagged Ok")
	return cmd
}
