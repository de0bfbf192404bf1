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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/maps"
)

// Broadcast orbit values of a GPS frame, line by line
var gpsOrbit = [][]string{
	{"-1.234567890123D-04", "-1.136868377216D-12", " 0.000000000000D+00"},
	{" 2.300000000000D+01", "-1.218750000000D+01", " 4.590191198710D-09", " 2.549348616504D+00"},
	{"-6.407499313354D-07", " 1.094920933247D-02", " 5.558505654335D-06", " 5.153671308517D+03"},
	{" 4.320000000000D+05", " 1.303851604462D-07", "-1.101934375110D+00", " 2.048909664154D-08"},
	{" 9.589591098558D-01", " 2.775625000000D+02", " 4.938869215935D-01", "-8.166769594048D-09"},
	{" 3.571577478604D-10", " 1.000000000000D+00", " 2.139000000000D+03", " 0.000000000000D+00"},
	{" 2.000000000000D+00", " 0.000000000000D+00", "-1.117587089539D-08", " 2.300000000000D+01"},
	{" 4.254180000000D+05", " 4.000000000000D+00"},
}

var glonassOrbit = [][]string{
	{"-4.610531032085E-05", " 0.000000000000E+00", " 9.000000000000E+02"},
	{" 1.234567871094E+04", " 1.234567871094E+00", " 0.000000000000E+00", " 0.000000000000E+00"},
	{"-2.345678906250E+04", "-2.345678906250E+00", " 9.313225746155E-10", "-4.000000000000E+00"},
	{" 3.456789013672E+03", " 3.456789013672E-01", "-1.862645149231E-09", " 0.000000000000E+00"},
}

// Frame lines: epoch field then 19 column values
func navFrameLines(epoch string, cont int, orbit [][]string, exp string) []string {
	var out []string
	for i, vals := range orbit {
		var sb strings.Builder
		if i == 0 {
			sb.WriteString(epoch)
		} else {
			sb.WriteString(strings.Repeat(" ", cont))
		}
		for _, v := range vals {
			sb.WriteString(fmt.Sprintf("%19s", strings.Replace(v, "D", exp, 1)))
		}
		out = append(out, strings.TrimRight(sb.String(), " "))
	}
	return out
}

func navV2() string {
	l := []string{
		firstLineOf("2.11", "N: GPS NAV DATA", ""),
		hl("teqc  2019Feb25     IGS                 20210101 00:00:00UTC", "PGM / RUN BY / DATE"),
		hl("    18", "LEAP SECONDS"),
		hl("", "END OF HEADER"),
	}
	l = append(l, navFrameLines(" 5 21  1  1  0  0  0.0", 3, gpsOrbit, "D")...)
	l = append(l, navFrameLines("12 21  1  1  2  0  0.0", 3, gpsOrbit, "D")...)
	return joinLines(l...)
}

func navV3() string {
	l := []string{
		firstLineOf("3.04", "N: GNSS NAV DATA", "M: MIXED"),
		hl("", "END OF HEADER"),
	}
	l = append(l, navFrameLines("G05 2021 01 01 00 00 00", 4, gpsOrbit, "E")...)
	l = append(l, navFrameLines("R07 2021 01 01 00 15 00", 4, glonassOrbit, "E")...)
	return joinLines(l...)
}

func TestReadNavV2(t *testing.T) {
	r := readString(t, navV2())
	assert.Equal(t, SysType('G'), r.Header.Constellation)
	assert.Equal(t, &LeapSeconds{Leap: 18}, r.Header.Leap)

	rec, ok := r.Record.(NavRecord)
	require.True(t, ok)
	assert.Equal(t, []Epoch{at(0), at(7200)}, r.Epochs())

	f := rec[at(0)]["G05"]
	require.NotNil(t, f)
	assert.Len(t, f, 29)
	assert.InDelta(t, -1.234567890123e-04, f["af0"], 1e-18)
	assert.Equal(t, 23.0, f["iode"])
	assert.Equal(t, 2139.0, f["week"])
	assert.InDelta(t, 5153.671308517, f["sqrtA"], 1e-9)
	assert.Equal(t, 4.0, f["fitInterval"])
	assert.Contains(t, rec[at(7200)], SatType("G12"))
}

func TestReadNavV3(t *testing.T) {
	r := readString(t, navV3())
	rec := r.Record.(NavRecord)
	assert.Equal(t, []Epoch{at(0), at(900)}, r.Epochs())

	g := rec[at(0)]["G05"]
	assert.Equal(t, 2139.0, g["week"])

	glo := rec[at(900)]["R07"]
	assert.Len(t, glo, 15)
	assert.Equal(t, -4.0, glo["freqNum"])
	assert.InDelta(t, 12345.67871094, glo["posX"], 1e-8)
	assert.Equal(t, 900.0, glo["tk"])
}

func TestReadNavV4(t *testing.T) {
	l := []string{
		firstLineOf("4.00", "N: GNSS NAV DATA", "M: MIXED"),
		hl("", "END OF HEADER"),
		"> EPH G05 LNAV",
	}
	l = append(l, navFrameLines("G05 2021 01 01 00 00 00", 4, gpsOrbit, "E")...)
	l = append(l,
		"> ION G LNAV",
		"    2021 01 01 00 00 00 1.117587089539E-08 2.235174179077E-08-5.960464477539E-08",
		"    -1.192092895508E-07",
	)
	r := readString(t, joinLines(l...))
	assert.Equal(t, []Epoch{at(0)}, r.Epochs())
	assert.Equal(t, 2, r.Stats.Blocks)
	assert.Zero(t, r.Stats.SkippedBlocks)
	assert.Len(t, r.Record.(NavRecord)[at(0)]["G05"], 29)

	// Written back with the frame marker
	text := writeString(t, r)
	assert.Contains(t, text, "\n> EPH G05 LNAV\n")
	r2 := readString(t, text)
	if d := cmp.Diff(r.Record, r2.Record); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestEncodeNavFrame(t *testing.T) {
	for _, src := range []string{navV2(), navV3()} {
		r := readString(t, src)
		rec := r.Record.(NavRecord)

		// Canonical input is written back unchanged
		var body []string
		for _, e := range rec.Epochs() {
			for _, sat := range Sorted(maps.Keys(rec[e])) {
				body = append(body, encodeNavFrame(e, sat, rec[e][sat], r.Header)...)
			}
		}
		_, want, _ := strings.Cut(src, headerLine("", "END OF HEADER")+"\n")
		assert.Equal(t, want, joinLines(body...))

		r2 := readString(t, writeString(t, r))
		if d := cmp.Diff(r.Record, r2.Record); d != "" {
			t.Errorf("(-want +got):\n%s", d)
		}
	}
}

func TestNavBlockErrors(t *testing.T) {
	h := &Header{Version: Version{3, 4}, Type: FileNavigation, Constellation: SysMixed}
	_, _, _, _, err := decodeNavBlock([]string{"G05 2021 01 01 00 00 00 bad"}, h)
	assert.Error(t, err)

	_, _, _, _, err = decodeNavBlock([]string{"X05 2021 01 01 00 00 00"}, h)
	assert.Error(t, err)

	// Unparsable frames are counted and skipped
	src := joinLines(
		firstLineOf("3.04", "N: GNSS NAV DATA", "G: GPS"),
		hl("", "END OF HEADER"),
		"G05 2021 01 01 00 00 00 bad",
	)
	r := readString(t, src)
	assert.Equal(t, ParseStats{Blocks: 1, SkippedBlocks: 1}, r.Stats)
	assert.Zero(t, r.Record.Len())

	// Missing lines leave parameters out
	short := navFrameLines("G05 2021 01 01 00 00 00", 4, gpsOrbit[:2], "E")
	e, sat, f, ok, err := decodeNavBlock(short, h)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, SatType("G05"), sat)
	assert.True(t, e.Time.Equal(t0))
	assert.Len(t, f, 7)
}
