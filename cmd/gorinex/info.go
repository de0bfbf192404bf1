// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	m "github.com/mkhts/gorinex"
)

func newInfoCommand(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>...",
		Short: "Print header summary, sampling, gaps and events",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, fn := range args {
				r, err := opts.read(fn)
				if err != nil {
					return err
				}
				printInfo(cmd.OutOrStdout(), fn, r)
			}
			return nil
		},
	}
}

func printInfo(w io.Writer, fn string, r *m.Rinex) {
	h := r.Header
	fmt.Fprintf(w, "--- %s ---\n", fn)
	fmt.Fprintf(w, "type       : %s %s", h.Type, h.Version)
	if h.Constellation != 0 {
		fmt.Fprintf(w, " (%s)", h.Constellation)
	}
	if h.IsCompact() {
		fmt.Fprintf(w, " CRINEX %s", h.Crinex.Version)
	}
	fmt.Fprintln(w)
	if h.Station != "" {
		fmt.Fprintf(w, "marker     : %s %s\n", h.Station, h.StationID)
	}
	if h.Coords != nil {
		llh := h.Coords.ToLLH()
		fmt.Fprintf(w, "position   : %s\n", llh.String())
	}
	for _, sys := range h.ObsSystems() {
		fmt.Fprintf(w, "codes %c    : %v\n", byte(sys), h.Obs.Codes[sys])
	}

	first, ok := r.FirstEpoch()
	if !ok {
		fmt.Fprintln(w, "epochs     : none")
		return
	}
	last, _ := r.LastEpoch()
	fmt.Fprintf(w, "epochs     : %d\n", len(r.Epochs()))
	fmt.Fprintf(w, "first      : %s (GPS %s)\n", first, first.GTime())
	fmt.Fprintf(w, "last       : %s (GPS %s)\n", last, last.GTime())
	if dt, ok := r.SamplingInterval(); ok {
		fmt.Fprintf(w, "interval   : %s\n", dt)
	}
	if gaps := r.DeadTimes(); len(gaps) > 0 {
		fmt.Fprintf(w, "gaps       : %d\n", len(gaps))
		for _, e := range gaps {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	for _, e := range r.EpochAnomalies(nil) {
		desc, _ := r.EventDescription(e)
		fmt.Fprintf(w, "event      : %s %s\n", e, desc)
	}
	if ll := r.LockLossEvents(); len(ll) > 0 {
		fmt.Fprintf(w, "lock loss  : %d epochs\n", len(ll))
	}
	if r.IsMerged() {
		fmt.Fprintf(w, "merged at  : %v\n", r.MergeBoundaries())
	}
	if rec, ok := r.Record.(m.IonexRecord); ok {
		for _, e := range rec.Epochs() {
			s := rec[e].Stats()
			fmt.Fprintf(w, "tec %s : n=%d mean=%.1f min=%.1f max=%.1f\n", e.Time.Format("15:04"), s.Points, s.Mean, s.Min, s.Max)
		}
	}
	fmt.Fprintf(w, "blocks     : %d (skipped %d, codec errors %d)\n", r.Stats.Blocks, r.Stats.SkippedBlocks, r.Stats.CodecErrors)
}
