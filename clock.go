// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.16
//

package gorinex

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Clock data types
var clockTypes = []string{"AR", "AS", "CR", "DR", "MS"}

// Clock owner: a satellite (AS) or a station / receiver
type ClockSystem struct {
	Sat     SatType
	Station string
}

func (c ClockSystem) String() string {
	if c.Sat != "" {
		return string(c.Sat)
	}
	return c.Station
}

// Clock bias and its optional derivatives, in seconds
type ClockData struct {
	Bias       float64
	BiasSigma  *float64
	Rate       *float64
	RateSigma  *float64
	Accel      *float64
	AccelSigma *float64
}

func (d ClockData) values() []float64 {
	v := []float64{d.Bias}
	for _, p := range []*float64{d.BiasSigma, d.Rate, d.RateSigma, d.Accel, d.AccelSigma} {
		if p == nil {
			break
		}
		v = append(v, *p)
	}
	return v
}

type ClockRecord map[Epoch]map[string]map[ClockSystem]ClockData

func (ClockRecord) Type() FileType { return FileClock }

func (r ClockRecord) Len() int { return len(r) }

func (r ClockRecord) Epochs() []Epoch { return sortedEpochs(r) }

func (r ClockRecord) subset(keep func(Epoch) bool) Record {
	return ClockRecord(subsetMap(r, keep))
}

func (r ClockRecord) insert(e Epoch, typ string, sys ClockSystem, d ClockData) {
	if r[e] == nil {
		r[e] = map[string]map[ClockSystem]ClockData{}
	}
	if r[e][typ] == nil {
		r[e][typ] = map[ClockSystem]ClockData{}
	}
	r[e][typ][sys] = d
}

func (r ClockRecord) mergeFrom(o Record) {
	for e, m := range o.(ClockRecord) {
		n := make(map[string]map[ClockSystem]ClockData, len(m))
		for typ, s := range m {
			n[typ] = maps.Clone(s)
		}
		r[e] = n
	}
}

func (r ClockRecord) clone() Record {
	c := make(ClockRecord, len(r))
	for e, m := range r {
		c[e] = make(map[string]map[ClockSystem]ClockData, len(m))
		for typ, s := range m {
			c[e][typ] = maps.Clone(s)
		}
	}
	return c
}

func isClockLine(l string) bool {
	return slices.Contains(clockTypes, col(l, 0, 2)) && col(l, 2, 3) == " "
}

// One data line plus continuation lines
func decodeClockBlock(lines []string) (Epoch, string, ClockSystem, ClockData, error) {
	var sys ClockSystem
	var d ClockData
	f := strings.Fields(lines[0])
	if len(f) < 10 {
		return Epoch{}, "", sys, d, fmt.Errorf("clock line too short: %q", lines[0])
	}
	typ := f[0]
	if typ == "AS" {
		sat, err := ParseSat(f[1], 'G')
		if err != nil {
			return Epoch{}, "", sys, d, err
		}
		sys.Sat = sat
	} else {
		sys.Station = f[1]
	}
	e, err := ParseEpoch(strings.Join(f[2:8], " "))
	if err != nil {
		return Epoch{}, "", sys, d, err
	}
	n, err := strconv.Atoi(f[8])
	if err != nil || n < 1 || n > 6 {
		return Epoch{}, "", sys, d, fmt.Errorf("bad number of values %q", f[8])
	}

	vals := f[9:]
	for _, l := range lines[1:] {
		vals = append(vals, strings.Fields(l)...)
	}
	if len(vals) < n {
		return Epoch{}, "", sys, d, fmt.Errorf("expected %d values, got %d", n, len(vals))
	}
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i], err = parseFloat(vals[i])
		if err != nil {
			return Epoch{}, "", sys, d, err
		}
	}
	d.Bias = x[0]
	ptrs := []**float64{&d.BiasSigma, &d.Rate, &d.RateSigma, &d.Accel, &d.AccelSigma}
	for i := 1; i < n; i++ {
		v := x[i]
		*ptrs[i-1] = &v
	}
	return e, typ, sys, d, nil
}

func encodeClockLines(e Epoch, typ string, sys ClockSystem, d ClockData) []string {
	v := d.values()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-2s %-4s %s %2d  ", typ, sys, formatClockEpoch(e), len(v)))
	for i := 0; i < len(v) && i < NumClockPerLine; i++ {
		sb.WriteString(fmt.Sprintf("%19.12E ", v[i]))
	}
	out := []string{strings.TrimRight(sb.String(), " ")}
	for i := NumClockPerLine; i < len(v); i += NumClockPerContLn {
		sb.Reset()
		for j := i; j < len(v) && j < i+NumClockPerContLn; j++ {
			sb.WriteString(fmt.Sprintf("%19.12E ", v[j]))
		}
		out = append(out, strings.TrimRight(sb.String(), " "))
	}
	return out
}
