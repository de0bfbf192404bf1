// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.16
//

package gorinex

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
)

// Meteo observations by code ("PR", "TD", "HR", ...)
type MeteoRecord map[Epoch]map[string]float64

func (MeteoRecord) Type() FileType { return FileMeteo }

func (r MeteoRecord) Len() int { return len(r) }

func (r MeteoRecord) Epochs() []Epoch { return sortedEpochs(r) }

func (r MeteoRecord) subset(keep func(Epoch) bool) Record {
	return MeteoRecord(subsetMap(r, keep))
}

func (r MeteoRecord) mergeFrom(o Record) {
	for e, m := range o.(MeteoRecord) {
		r[e] = maps.Clone(m)
	}
}

func (r MeteoRecord) clone() Record {
	c := make(MeteoRecord, len(r))
	for e, m := range r {
		c[e] = maps.Clone(m)
	}
	return c
}

// Width of the epoch field
func meteoEpochWidth(v Version) int {
	if v.Major < 3 {
		return 18
	}
	return 20
}

func decodeMeteoBlock(lines []string, h *Header) (Epoch, map[string]float64, error) {
	w := meteoEpochWidth(h.Version)
	e, err := ParseEpoch(col(lines[0], 0, w))
	if err != nil {
		return Epoch{}, nil, err
	}
	if h.Meteo == nil {
		return e, map[string]float64{}, nil
	}
	codes := h.Meteo.Codes
	m := make(map[string]float64, len(codes))
	li, off, k := 0, w, 0
	for i, code := range codes {
		if i == NumMeteoPerLine || (i > NumMeteoPerLine && k == NumMeteoPerContLn) {
			li++
			off, k = 4, 0
			if li >= len(lines) {
				break
			}
		}
		s := col(lines[li], off+k*7, off+k*7+7)
		k++
		if strings.TrimSpace(s) == "" {
			continue
		}
		x, err := parseFloat(s)
		if err != nil {
			return Epoch{}, nil, fmt.Errorf("%s: %w", code, err)
		}
		m[code] = x
	}
	return e, m, nil
}

func encodeMeteoBlock(e Epoch, m map[string]float64, h *Header) []string {
	var out []string
	var sb strings.Builder
	sb.WriteString(formatMeteoEpoch(e, h.Version))
	k := 0
	for i, code := range h.Meteo.Codes {
		if i == NumMeteoPerLine || (i > NumMeteoPerLine && k == NumMeteoPerContLn) {
			out = append(out, strings.TrimRight(sb.String(), " "))
			sb.Reset()
			sb.WriteString("    ")
			k = 0
		}
		k++
		if x, ok := m[code]; ok {
			sb.WriteString(fmt.Sprintf("%7.1f", x))
		} else {
			sb.WriteString(strings.Repeat(" ", 7))
		}
	}
	return append(out, strings.TrimRight(sb.String(), " "))
}
