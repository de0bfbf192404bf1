// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.16
//

package gorinex

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kylelemons/godebug/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u8(v uint8) *uint8 { return &v }

func f64(v float64) *float64 { return &v }

func testObsHeader(major int, codes ...CodeType) *Header {
	v := Version{3, 4}
	if major < 3 {
		v = Version{2, 11}
	}
	return &Header{
		Version:       v,
		Type:          FileObservation,
		Constellation: 'G',
		Obs:           &ObsHeader{Codes: map[SysType][]CodeType{'G': codes}},
	}
}

func TestArc(t *testing.T) {
	// Second order polynomial: third differences vanish
	values := []int64{1, 4, 9, 16, 25}
	enc := newArc(3, 0)
	dec := newArc(3, 0)
	var diffs []int64
	for _, v := range values {
		d := enc.differentiate(v)
		diffs = append(diffs, d)
		assert.Equal(t, v, dec.integrate(d))
	}
	assert.Equal(t, []int64{1, 2, 0, 0, 0}, diffs)
}

func TestParseArcField(t *testing.T) {
	v, a, err := parseArcField("3&1000", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), v)
	require.NotNil(t, a)
	assert.Equal(t, 3, a.order)

	v, a, err = parseArcField("-25", a)
	require.NoError(t, err)
	assert.Equal(t, int64(975), v)

	v, _, err = parseArcField("42", nil)
	assert.ErrorIs(t, err, errNoArc)
	assert.Equal(t, int64(42), v)

	for _, s := range []string{"x&1", "3&y", "1.5"} {
		_, _, err = parseArcField(s, a)
		assert.ErrorIs(t, err, errBadField, s)
	}
}

func TestTextDiff(t *testing.T) {
	var testData = []struct {
		old, cur, diff string
	}{
		{"abc", "abc", ""},
		{"abc", "ab", "  &"},
		{"ab", "abcd", "  cd"},
		{"", "   1", "   1"},
		{"   1", "", "   &"},
		{"a b", "axb", " x"},
	}

	for _, td := range testData {
		got := makeTextDiff(td.old, td.cur)
		assert.Equal(t, td.diff, got, "%q -> %q", td.old, td.cur)
		assert.Equal(t, td.cur, applyTextDiff(td.old, got), "%q + %q", td.old, got)
	}
}

func TestFmtFixed(t *testing.T) {
	assert.Equal(t, "     -1234.567", fmtFixed(-1234567, 3, 14))
	assert.Equal(t, "-0.005", fmtFixed(-5, 3, 0))
	assert.Equal(t, " 0.000000000123", fmtFixed(123, 12, 15))
	assert.Equal(t, "     20000.000", fmtFixed(20000000, 3, 14))
}

func TestCompressorOutput(t *testing.T) {
	h := testObsHeader(3, "C1C", "L1C")
	c := NewCompressor(h, 3)

	e1 := ObsEpoch{Data: map[SatType]map[CodeType]ObsData{
		"G01": {"C1C": {Value: 20000000}, "L1C": {Value: 100, SSI: u8(1)}},
	}}
	e2 := ObsEpoch{Data: map[SatType]map[CodeType]ObsData{
		"G01": {"C1C": {Value: 20000001}, "L1C": {Value: 101.5}},
	}}

	got := c.Compress(at(0), e1, nil)
	assert.Equal(t, []string{
		"> 2021 01 01 00 00  0.0000000  0  1      G01",
		"",
		"3&20000000000 3&100000    1",
	}, got)

	got = c.Compress(at(30), e2, nil)
	assert.Equal(t, []string{
		strings.Repeat(" ", 19) + "3",
		"",
		"1000 1500    &",
	}, got)
}

func TestCompressorEvent(t *testing.T) {
	h := testObsHeader(2, "C1")
	c := NewCompressor(h, 0)
	assert.Equal(t, DefaultHatanakaOrder, c.order)

	oe := ObsEpoch{Data: map[SatType]map[CodeType]ObsData{"G01": {"C1": {Value: 1}}}}
	c.Compress(at(0), oe, nil)

	special := []string{hl("antenna moved", "COMMENT")}
	got := c.Compress(NewEpoch(t0.Add(30*time.Second), EpochNewSiteOccupation), ObsEpoch{}, special)
	assert.Equal(t, []string{"&21  1  1  0  0 30.0000000  3  1", special[0]}, got)

	// Next epoch line is written in full
	got = c.Compress(at(60), oe, nil)
	assert.Equal(t, "&21  1  1  0  1  0.0000000  0  1G01", got[0])
}

// Feed compact lines, collect native lines
func decompressAll(t *testing.T, d *Decompressor, lines []string) []string {
	t.Helper()
	var out []string
	for _, l := range lines {
		n, err := d.Decompress(l)
		require.NoError(t, err, l)
		out = append(out, n...)
	}
	return out
}

func TestCodecRoundTrip(t *testing.T) {
	for _, major := range []int{2, 3} {
		h := testObsHeader(major, "C1C", "L1C", "D1C", "S1C", "C2W", "L2W")
		if major < 3 {
			h.Obs.Codes['G'] = []CodeType{"C1", "L1", "D1", "S1", "P2", "L2"}
		}
		codes := h.Obs.Codes['G']
		epochs := []ObsEpoch{
			{ClockOffset: f64(0.000000123), Data: map[SatType]map[CodeType]ObsData{
				"G01": {codes[0]: {Value: 23619095.45}, codes[1]: {Value: 124118749.123, LLI: u8(0), SSI: u8(7)},
					codes[2]: {Value: -1234.567}, codes[3]: {Value: 45.25}, codes[5]: {Value: 96718599.558, SSI: u8(5)}},
				"G02": {codes[0]: {Value: 20542135.775}, codes[4]: {Value: 20542136.96}},
			}},
			{ClockOffset: f64(0.000000125), Data: map[SatType]map[CodeType]ObsData{
				"G01": {codes[0]: {Value: 23619123.205}, codes[1]: {Value: 124118895.002, LLI: u8(1), SSI: u8(7)},
					codes[2]: {Value: -1233}, codes[3]: {Value: 45}, codes[5]: {Value: 96718713.217, SSI: u8(5)}},
				"G02": {codes[0]: {Value: 20542101.1}, codes[4]: {Value: 20542102.3}},
			}},
			{Data: map[SatType]map[CodeType]ObsData{
				"G02": {codes[0]: {Value: 20542070.5}, codes[4]: {Value: 20542071.75}},
			}},
			{Data: map[SatType]map[CodeType]ObsData{
				"G01": {codes[0]: {Value: 23619180.002}},
				"G02": {codes[0]: {Value: 20542040.25}, codes[4]: {Value: 20542041.5}},
			}},
		}

		c := NewCompressor(h, 3)
		var compact, want []string
		for i, oe := range epochs {
			e := at(30 * i)
			compact = append(compact, c.Compress(e, oe, nil)...)
			want = append(want, encodeObsBlock(e, oe, h, 0)...)
		}

		dec := NewDecompressor(h)
		got := decompressAll(t, dec, compact)
		if d := diff.Diff(strings.Join(want, "\n"), strings.Join(got, "\n")); d != "" {
			t.Errorf("v%d native lines differ:\n%s", major, d)
		}
		assert.Zero(t, dec.Errors)
	}
}

func TestCodecResetOnReappearance(t *testing.T) {
	h := testObsHeader(3, "C1C")
	c := NewCompressor(h, 1)
	both := ObsEpoch{Data: map[SatType]map[CodeType]ObsData{"G01": {"C1C": {Value: 1}}, "G02": {"C1C": {Value: 2}}}}
	one := ObsEpoch{Data: map[SatType]map[CodeType]ObsData{"G01": {"C1C": {Value: 1.5}}}}

	c.Compress(at(0), both, nil)
	c.Compress(at(30), one, nil)
	got := c.Compress(at(60), both, nil)
	require.Len(t, got, 4)
	assert.Equal(t, "-500", got[2])
	assert.Equal(t, "1&2000", got[3])
}

func TestDecompressMissingArc(t *testing.T) {
	h := testObsHeader(3, "C1C", "L1C")
	d := NewDecompressor(h)
	got := decompressAll(t, d, []string{
		"> 2021 01 01 00 00  0.0000000  0  1      G01",
		"",
		"1000 1500",
	})
	assert.Equal(t, []string{
		"> 2021 01 01 00 00  0.0000000  0  1",
		"G01         1.000           1.500",
	}, got)
	assert.Equal(t, 2, d.Errors)

	// Arcs were started, the next differences apply
	got = decompressAll(t, d, []string{"", "", "1 1"})
	assert.Equal(t, "G01         1.001           1.501", got[1])
	assert.Equal(t, 2, d.Errors)
}

func TestDecompressErrors(t *testing.T) {
	h := testObsHeader(3, "C1C")
	d := NewDecompressor(h)

	_, err := d.Decompress("                   3")
	var ce *CodecError
	require.True(t, errors.As(err, &ce))
	assert.ErrorIs(t, err, errBadEpochLn)
	assert.Equal(t, -1, ce.Field)
	assert.Equal(t, 1, d.Errors)

	// Recovers on the next full epoch line
	got := decompressAll(t, d, []string{"> 2021 01 01 00 00  0.0000000  0  1      G01", "", "3&5"})
	assert.Equal(t, "G01         0.005", got[1])
}

func TestDecompressComments(t *testing.T) {
	h := testObsHeader(2, "C1")
	h.Crinex = &Crinex{Version: "1.0"}
	d := NewDecompressor(h)
	comment := hl("passed through", "COMMENT")
	got := decompressAll(t, d, []string{
		comment,
		"&21  1  1  0  0  0.0000000  0  1G01",
		"",
		"3&1000",
		"&21  1  1  0  0 30.0000000  4  1",
		comment,
	})
	assert.Equal(t, []string{
		comment,
		" 21  1  1  0  0  0.0000000  0  1G01",
		"         1.000",
		" 21  1  1  0  0 30.0000000  4  1",
		comment,
	}, got)
	assert.Equal(t, expectEpoch, d.state)
}
