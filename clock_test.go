// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.16
//

package gorinex

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clockBody = []string{
	"AR TSK1 2021 01 01 00 00  0.000000  2  -1.234567890123E-06  1.000000000000E-10",
	"AS G05  2021 01 01 00 00  0.000000  6   1.234567890123E-04  2.000000000000E-11",
	" 1.000000000000E-12  2.000000000000E-13  3.000000000000E-14  4.000000000000E-15",
	"AS G05  2021 01 01 00 00 30.000000  1   1.234567901234E-04",
}

var clockV3 = joinLines(append([]string{
	firstLineOf("3.04", "C", "G"),
	hl("     2    AS    AR", "# / TYPES OF DATA"),
	hl("IGS  IGS-ACC @ GA and MIT", "ANALYSIS CENTER"),
	hl("", "END OF HEADER"),
}, clockBody...)...)

func TestReadClock(t *testing.T) {
	r := readString(t, clockV3)
	h := r.Header
	assert.Equal(t, FileClock, h.Type)
	assert.Equal(t, SysType('G'), h.Constellation)
	require.NotNil(t, h.Clock)
	assert.Equal(t, []string{"AS", "AR"}, h.Clock.Codes)
	assert.Equal(t, &AnalysisCenter{Code: "IGS", Name: "IGS-ACC @ GA and MIT"}, h.Clock.Agency)

	rec, ok := r.Record.(ClockRecord)
	require.True(t, ok)
	assert.Equal(t, []Epoch{at(0), at(30)}, r.Epochs())

	ar := rec[at(0)]["AR"][ClockSystem{Station: "TSK1"}]
	assert.InDelta(t, -1.234567890123e-06, ar.Bias, 1e-20)
	require.NotNil(t, ar.BiasSigma)
	assert.InDelta(t, 1e-10, *ar.BiasSigma, 1e-24)
	assert.Nil(t, ar.Rate)

	as := rec[at(0)]["AS"][ClockSystem{Sat: "G05"}]
	assert.Equal(t, []float64{1.234567890123e-04, 2e-11, 1e-12, 2e-13, 3e-14, 4e-15}, as.values())
	assert.Equal(t, "G05", ClockSystem{Sat: "G05"}.String())
	assert.Equal(t, "TSK1", ClockSystem{Station: "TSK1"}.String())

	late := rec[at(30)]["AS"][ClockSystem{Sat: "G05"}]
	assert.Nil(t, late.BiasSigma)
}

func TestClockRoundTrip(t *testing.T) {
	r := readString(t, clockV3)
	rec := r.Record.(ClockRecord)

	body := encodeClockLines(at(0), "AR", ClockSystem{Station: "TSK1"}, rec[at(0)]["AR"][ClockSystem{Station: "TSK1"}])
	body = append(body, encodeClockLines(at(0), "AS", ClockSystem{Sat: "G05"}, rec[at(0)]["AS"][ClockSystem{Sat: "G05"}])...)
	body = append(body, encodeClockLines(at(30), "AS", ClockSystem{Sat: "G05"}, rec[at(30)]["AS"][ClockSystem{Sat: "G05"}])...)
	assert.Equal(t, strings.Join(clockBody, "\n"), strings.Join(body, "\n"))

	text := writeString(t, r)
	assert.Contains(t, text, strings.Join(clockBody, "\n"))
	r2 := readString(t, text)
	if d := cmp.Diff(r.Record, r2.Record); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
	if d := cmp.Diff(r.Header.Clock, r2.Header.Clock); d != "" {
		t.Errorf("clock header (-want +got):\n%s", d)
	}
}

func TestClockBlockErrors(t *testing.T) {
	var testData = []struct {
		description string
		lines       []string
	}{
		{"too short", []string{"AR TSK1 2021 01 01 00 00"}},
		{"bad count", []string{"AR TSK1 2021 01 01 00 00  0.000000  9  1.0E-06"}},
		{"missing values", []string{"AR TSK1 2021 01 01 00 00  0.000000  3  1.0E-06  2.0E-10"}},
		{"bad value", []string{"AR TSK1 2021 01 01 00 00  0.000000  1  x"}},
		{"bad satellite", []string{"AS X05  2021 01 01 00 00  0.000000  1  1.0E-06"}},
	}

	for _, td := range testData {
		_, _, _, _, err := decodeClockBlock(td.lines)
		assert.Error(t, err, td.description)
	}
	assert.True(t, isClockLine(clockBody[0]))
	assert.False(t, isClockLine(clockBody[2]))
}
