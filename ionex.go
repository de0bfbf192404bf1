// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.16
//

package gorinex

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// IONEX specification 1.0
// https://files.igs.org/pub/data/format/ionex1.pdf
//

// One grid value, degrees and km
type GridPoint struct {
	Lat   float64
	Lon   float64
	Alt   float64
	Value float64
}

// TEC, RMS and height maps of one epoch
type IonexMap struct {
	TEC    []GridPoint
	RMS    []GridPoint
	Height []GridPoint
}

// Summary of TEC values
type IonexStats struct {
	Points int
	Mean   float64
	Min    float64
	Max    float64
}

func (m IonexMap) Stats() IonexStats {
	if len(m.TEC) == 0 {
		return IonexStats{}
	}
	v := make([]float64, len(m.TEC))
	for i, p := range m.TEC {
		v[i] = p.Value
	}
	return IonexStats{
		Points: len(v),
		Mean:   stat.Mean(v, nil),
		Min:    floats.Min(v),
		Max:    floats.Max(v),
	}
}

func (m IonexMap) clone() IonexMap {
	return IonexMap{
		TEC:    append([]GridPoint(nil), m.TEC...),
		RMS:    append([]GridPoint(nil), m.RMS...),
		Height: append([]GridPoint(nil), m.Height...),
	}
}

type IonexRecord map[Epoch]IonexMap

func (IonexRecord) Type() FileType { return FileIonex }

func (r IonexRecord) Len() int { return len(r) }

func (r IonexRecord) Epochs() []Epoch { return sortedEpochs(r) }

func (r IonexRecord) subset(keep func(Epoch) bool) Record {
	return IonexRecord(subsetMap(r, keep))
}

// Merge one map section into the epoch
func (r IonexRecord) insert(e Epoch, m IonexMap) {
	cur := r[e]
	if len(m.TEC) > 0 {
		cur.TEC = m.TEC
	}
	if len(m.RMS) > 0 {
		cur.RMS = m.RMS
	}
	if len(m.Height) > 0 {
		cur.Height = m.Height
	}
	r[e] = cur
}

func (r IonexRecord) mergeFrom(o Record) {
	for e, m := range o.(IonexRecord) {
		r[e] = m.clone()
	}
}

func (r IonexRecord) clone() Record {
	c := make(IonexRecord, len(r))
	for e, m := range r {
		c[e] = m.clone()
	}
	return c
}

// Map kinds as they appear in START OF ... MAP
var ionexKinds = []string{"TEC", "RMS", "HEIGHT"}

// Kind of a START OF ... MAP line, empty otherwise
func ionexMapStart(l string) string {
	lb := getHeaderLabel(l)
	for _, k := range ionexKinds {
		if lb == "START OF "+k+" MAP" {
			return k
		}
	}
	return ""
}

// Band of grid values: one latitude, one height, a run of longitudes
type ionexBand struct {
	lat, lon1, lon2, dlon, h float64
}

func (b ionexBand) len() int {
	if b.dlon == 0 {
		return 1
	}
	return int(math.Round((b.lon2-b.lon1)/b.dlon)) + 1
}

func parseIonexBand(l string) (ionexBand, error) {
	var v [5]float64
	for i := range v {
		x, err := parseFloat(col(l, 2+i*6, 8+i*6))
		if err != nil {
			return ionexBand{}, fmt.Errorf("bad grid band %q: %w", l, err)
		}
		v[i] = x
	}
	return ionexBand{lat: v[0], lon1: v[1], lon2: v[2], dlon: v[3], h: v[4]}, nil
}

// Decode one map section, from START OF to the next section
func decodeIonexBlock(lines []string, h *Header) (Epoch, IonexMap, error) {
	kind := ionexMapStart(lines[0])
	exp := DefaultIonexExponent
	if h.Ionex != nil {
		exp = h.Ionex.Exponent
	}
	var e Epoch
	var haveEpoch bool
	var pts []GridPoint
	var band ionexBand
	var bandLeft, bandIdx int

	for _, l := range lines[1:] {
		lb := getHeaderLabel(l)
		switch {
		case lb == "EPOCH OF CURRENT MAP":
			var err error
			e, err = ParseEpoch(col(l, 0, 36))
			if err != nil {
				return Epoch{}, IonexMap{}, err
			}
			haveEpoch = true
		case lb == "LAT/LON1/LON2/DLON/H":
			b, err := parseIonexBand(l)
			if err != nil {
				return Epoch{}, IonexMap{}, err
			}
			band, bandLeft, bandIdx = b, b.len(), 0
		case lb == "EXPONENT":
			n, err := parseIntBlank(col(l, 0, 6))
			if err != nil {
				return Epoch{}, IonexMap{}, err
			}
			exp = n
		case strings.HasPrefix(lb, "END OF"):
		default:
			for i := 0; i < NumIonexPerLine && bandLeft > 0; i++ {
				s := strings.TrimSpace(col(l, i*5, i*5+5))
				if s == "" {
					break
				}
				n, err := strconv.Atoi(s)
				if err != nil {
					return Epoch{}, IonexMap{}, fmt.Errorf("bad grid value %q", s)
				}
				if n != IonexMissingValue {
					pts = append(pts, GridPoint{
						Lat:   band.lat,
						Lon:   band.lon1 + float64(bandIdx)*band.dlon,
						Alt:   band.h,
						Value: float64(n) * math.Pow10(exp),
					})
				}
				bandIdx++
				bandLeft--
			}
		}
	}
	if !haveEpoch {
		return Epoch{}, IonexMap{}, fmt.Errorf("%s map without EPOCH OF CURRENT MAP", kind)
	}

	var m IonexMap
	switch kind {
	case "TEC":
		m.TEC = pts
	case "RMS":
		m.RMS = pts
	case "HEIGHT":
		m.Height = pts
	}
	return e, m, nil
}

// Grid key, rounded to 1/1000 degree and km
type gridKey struct {
	lat, lon, alt int64
}

func keyOf(lat, lon, alt float64) gridKey {
	return gridKey{int64(math.Round(lat * 1000)), int64(math.Round(lon * 1000)), int64(math.Round(alt * 1000))}
}

// Map sections of one epoch, numbered idx
func encodeIonexMap(idx int, e Epoch, m IonexMap, h *Header) []string {
	x := h.Ionex
	scale := math.Pow10(-x.Exponent)
	var out []string
	for i, pts := range [][]GridPoint{m.TEC, m.RMS, m.Height} {
		if len(pts) == 0 {
			continue
		}
		kind := ionexKinds[i]
		vals := make(map[gridKey]float64, len(pts))
		for _, p := range pts {
			vals[keyOf(p.Lat, p.Lon, p.Alt)] = p.Value
		}
		out = append(out, headerLine(fmt.Sprintf("%6d", idx), "START OF "+kind+" MAP"))
		out = append(out, headerLine(formatIonexEpoch(e.Time), "EPOCH OF CURRENT MAP"))
		for hi := 0; hi < x.Height.Len(); hi++ {
			alt := x.Height.Start + float64(hi)*x.Height.Step
			for li := 0; li < x.Lat.Len(); li++ {
				lat := x.Lat.Start + float64(li)*x.Lat.Step
				out = append(out, headerLine(fmt.Sprintf("  %6.1f%6.1f%6.1f%6.1f%6.1f", lat, x.Lon.Start, x.Lon.End, x.Lon.Step, alt), "LAT/LON1/LON2/DLON/H"))
				var sb strings.Builder
				n := x.Lon.Len()
				for k := 0; k < n; k++ {
					if k > 0 && k%NumIonexPerLine == 0 {
						out = append(out, sb.String())
						sb.Reset()
					}
					lon := x.Lon.Start + float64(k)*x.Lon.Step
					v, ok := vals[keyOf(lat, lon, alt)]
					if ok {
						sb.WriteString(fmt.Sprintf("%5d", int(math.Round(v*scale))))
					} else {
						sb.WriteString(fmt.Sprintf("%5d", IonexMissingValue))
					}
				}
				out = append(out, sb.String())
			}
		}
		out = append(out, headerLine(fmt.Sprintf("%6d", idx), "END OF "+kind+" MAP"))
	}
	return out
}
