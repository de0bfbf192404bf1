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
	"os"

	"github.com/spf13/cobra"

	m "github.com/mkhts/gorinex"
)

// Global flags
type rootOpts struct {
	verbose int
	config  string
	output  string

	cfg m.Config
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOpts{}
	cmd := &cobra.Command{
		Use:   "gorinex",
		Short: "RINEX / CRINEX toolbox",
		Long:  "Inspect, merge, split, decimate and (de)compress RINEX observation, navigation, meteo, clock and IONEX files.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "debug level (repeat for more)")
	cmd.PersistentFlags().StringVarP(&opts.config, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout or derived name)")

	cmd.AddCommand(newInfoCommand(opts))
	cmd.AddCommand(newMergeCommand(opts))
	cmd.AddCommand(newSplitCommand(opts))
	cmd.AddCommand(newDecimateCommand(opts))
	cmd.AddCommand(newCrx2rnxCommand(opts))
	cmd.AddCommand(newRnx2crxCommand(opts))
	return cmd
}

// Load config, the -v flag overrides the configured level
func (o *rootOpts) load(cmd *cobra.Command) error {
	o.cfg = m.DefaultConfig()
	if o.config != "" {
		cfg, err := m.LoadConfig(o.config)
		if err != nil {
			return err
		}
		o.cfg = cfg
	}
	level := o.cfg.LogLevel
	if cmd.Flags().Changed("verbose") {
		level = o.verbose
	}
	m.SetDebugLevel(level)
	return nil
}

// Read input and apply the configured compression order
func (o *rootOpts) read(path string) (*m.Rinex, error) {
	r, err := m.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r.CompressionOrder = o.cfg.Hatanaka.Order
	if r.Stats.SkippedBlocks > 0 || r.Stats.CodecErrors > 0 {
		m.Log.WithField("file", path).Warnf("%d blocks skipped, %d codec errors", r.Stats.SkippedBlocks, r.Stats.CodecErrors)
	}
	return r, nil
}

// Write to path, or stdout when empty
func (o *rootOpts) write(r *m.Rinex, path string, stdout io.Writer) error {
	if path == "" {
		return r.Write(stdout, o.cfg.ProducerID())
	}
	return r.ToFile(path, o.cfg.ProducerID())
}
