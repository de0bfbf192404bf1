// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newCrx2rnxCommand(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "crx2rnx <file>",
		Short: "Decompress a CRINEX observation file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.read(args[0])
			if err != nil {
				return err
			}
			if !r.Header.IsCompact() {
				return fmt.Errorf("%s is not a compact RINEX file", args[0])
			}
			r.Header.Crinex = nil
			fn := opts.output
			if fn == "" {
				fn = crxToRnxName(args[0])
			}
			return r.ToFile(fn, opts.cfg.ProducerID())
		},
	}
}

func newRnx2crxCommand(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "rnx2crx <file>",
		Short: "Compress a RINEX observation file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.read(args[0])
			if err != nil {
				return err
			}
			if !r.Header.IsObservation() {
				return fmt.Errorf("%s: only observation files can be compressed, got %s", args[0], r.Header.Type)
			}
			r.WithCrinex(opts.cfg.Hatanaka.Version, opts.cfg.ProducerID(), time.Now())
			fn := opts.output
			if fn == "" {
				fn = rnxToCrxName(args[0])
			}
			return r.ToFile(fn, opts.cfg.ProducerID())
		},
	}
}

// "xxx.21d" -> "xxx.21o", "xxx.crx" -> "xxx.rnx"
func crxToRnxName(fn string) string {
	switch {
	case strings.HasSuffix(fn, "d"):
		return strings.TrimSuffix(fn, "d") + "o"
	case strings.HasSuffix(fn, "D"):
		return strings.TrimSuffix(fn, "D") + "O"
	case strings.HasSuffix(fn, "crx"):
		return strings.TrimSuffix(fn, "crx") + "rnx"
	}
	return fn + ".rnx"
}

// "xxx.21o" -> "xxx.21d", "xxx.rnx" -> "xxx.crx"
func rnxToCrxName(fn string) string {
	switch {
	case strings.HasSuffix(fn, "o"):
		return strings.TrimSuffix(fn, "o") + "d"
	case strings.HasSuffix(fn, "O"):
		return strings.TrimSuffix(fn, "O") + "D"
	case strings.HasSuffix(fn, "rnx"):
		return strings.TrimSuffix(fn, "rnx") + "crx"
	}
	return fn + ".crx"
}
