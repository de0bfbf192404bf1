// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.16
//

package gorinex

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Compact RINEX (Hatanaka) format
// https://terras.gsi.go.jp/ja/crx2rnx/A_Compact_Format_of_RINEX_Obs.pdf
//

var (
	errNoArc      = errors.New("difference without initialized arc")
	errBadField   = errors.New("malformed field")
	errBadEpochLn = errors.New("malformed epoch line")
)

//-------------------------------------------------------------------
// Differential arc
//-------------------------------------------------------------------

// Difference chain of one field. y[0] is the value, y[k] the k-th difference.
type arc struct {
	order int
	n     int
	y     []int64
}

func newArc(order int, v int64) *arc {
	if order < 1 {
		order = 1
	}
	a := &arc{order: order, y: make([]int64, order+1)}
	a.y[0] = v
	return a
}

// Restore the value from the highest order difference
func (a *arc) integrate(d int64) int64 {
	if a.n < a.order {
		a.n++
	}
	a.y[a.n] = d
	for j := a.n - 1; j >= 0; j-- {
		a.y[j] += a.y[j+1]
	}
	return a.y[0]
}

// Highest order difference of the new value
func (a *arc) differentiate(v int64) int64 {
	if a.n < a.order {
		a.n++
	}
	z := make([]int64, len(a.y))
	z[0] = v
	for j := 1; j <= a.n; j++ {
		z[j] = z[j-1] - a.y[j-1]
	}
	a.y = z
	return z[a.n]
}

// Parse "M&v" (arc initialization) or a plain difference
func parseArcField(s string, a *arc) (int64, *arc, error) {
	if o, v, ok := strings.Cut(s, "&"); ok {
		order, err := strconv.Atoi(o)
		if err != nil {
			return 0, a, fmt.Errorf("%w: %q", errBadField, s)
		}
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, a, fmt.Errorf("%w: %q", errBadField, s)
		}
		return x, newArc(order, x), nil
	}
	d, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, a, fmt.Errorf("%w: %q", errBadField, s)
	}
	if a == nil {
		return d, nil, errNoArc
	}
	return a.integrate(d), a, nil
}

//-------------------------------------------------------------------
// Text differences
//-------------------------------------------------------------------

// ' ' keeps the previous character, '&' sets a blank, anything else overwrites
func applyTextDiff(old, diff string) string {
	n := len(old)
	if len(diff) > n {
		n = len(diff)
	}
	b := []byte(padRight(old, n))
	for i := 0; i < len(diff); i++ {
		switch c := diff[i]; c {
		case ' ':
		case '&':
			b[i] = ' '
		default:
			b[i] = c
		}
	}
	return strings.TrimRight(string(b), " ")
}

func makeTextDiff(old, cur string) string {
	n := len(old)
	if len(cur) > n {
		n = len(cur)
	}
	o, c := padRight(old, n), padRight(cur, n)
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		switch {
		case o[i] == c[i]:
			b[i] = ' '
		case c[i] == ' ':
			b[i] = '&'
		default:
			b[i] = c[i]
		}
	}
	return strings.TrimRight(string(b), " ")
}

// Fixed point text of a scaled integer, right justified
func fmtFixed(v int64, dec, width int) string {
	neg := v < 0
	if neg {
		v = -v
	}
	p := int64(math.Pow10(dec))
	s := fmt.Sprintf("%d.%0*d", v/p, dec, v%p)
	if neg {
		s = "-" + s
	}
	return fmt.Sprintf("%*s", width, s)
}

//-------------------------------------------------------------------
// Stream state
//-------------------------------------------------------------------

// Differential state of one satellite
type satState struct {
	arcs  []*arc
	flags string
}

type codecState struct {
	h         *Header
	prevEpoch string // Reconstructed epoch line of the previous epoch, empty after reset
	prevSats  map[SatType]bool
	clock     *arc
	sats      map[SatType]*satState
}

func newCodecState(h *Header) codecState {
	return codecState{h: h, prevSats: map[SatType]bool{}, sats: map[SatType]*satState{}}
}

// Forget satellites missing from the previous epoch
func (c *codecState) enterEpoch(sats []SatType) {
	cur := make(map[SatType]bool, len(sats))
	for _, s := range sats {
		cur[s] = true
		if !c.prevSats[s] {
			delete(c.sats, s)
		}
	}
	c.prevSats = cur
}

func (c *codecState) sat(s SatType) *satState {
	st := c.sats[s]
	if st == nil {
		st = &satState{arcs: make([]*arc, len(c.h.satCodes(s.Sys())))}
		c.sats[s] = st
	}
	return st
}

// Clock offset scale: ns for 1.0, ps for 3.0
func (c *codecState) clockDecimals() int {
	if c.h.Version.Major < 3 {
		return 9
	}
	return 12
}

// Columns of the compact epoch line
func (c *codecState) epochCols() (flag, nsat, sats int) {
	if c.h.Version.Major < 3 {
		return 28, 29, 32
	}
	return 31, 32, 41
}

//-------------------------------------------------------------------
// Decompressor
//-------------------------------------------------------------------

type decompState int

const (
	expectEpoch decompState = iota
	expectClock
	expectSats
	expectSpecial
)

// Restores native observation lines from a compact stream, one line at a time
type Decompressor struct {
	codecState
	state     decompState
	epoch     string
	epochSats []SatType
	k         int // Index of the next satellite line, or remaining special lines
	full      byte
	Errors    int
}

func NewDecompressor(h *Header) *Decompressor {
	d := &Decompressor{codecState: newCodecState(h), full: '>'}
	if h.Crinex != nil && h.Crinex.major() == 1 {
		d.full = '&'
	} else if h.Crinex == nil && h.Version.Major < 3 {
		d.full = '&'
	}
	return d
}

func (d *Decompressor) fieldError(sat SatType, field int, line string, err error) {
	d.Errors++
	ce := &CodecError{Sat: sat, Field: field, Line: line, Err: err}
	Log.WithFields(logrus.Fields{"sat": sat, "field": field}).Warn(ce.Error())
}

// Native lines for one compact line
func (d *Decompressor) Decompress(line string) ([]string, error) {
	switch d.state {
	case expectSpecial:
		d.k--
		if d.k <= 0 {
			d.state = expectEpoch
		}
		return []string{line}, nil
	case expectClock:
		return d.clockLine(line), nil
	case expectSats:
		return d.satLine(line), nil
	}

	if isComment(line) {
		return []string{line}, nil
	}
	return d.epochLine(line)
}

func (d *Decompressor) epochLine(line string) ([]string, error) {
	var ep string
	switch {
	case len(line) > 0 && line[0] == d.full:
		ep = strings.TrimRight(line, " ")
		if d.full == '&' {
			ep = " " + ep[1:]
		}
	case d.prevEpoch == "":
		d.Errors++
		return nil, &CodecError{Field: -1, Line: line, Err: fmt.Errorf("%w: no reference epoch", errBadEpochLn)}
	default:
		ep = applyTextDiff(d.prevEpoch, line)
	}

	fc, nc, sc := d.epochCols()
	flag, err := parseIntBlank(col(ep, fc, fc+1))
	if err != nil {
		d.Errors++
		d.prevEpoch = ""
		return nil, &CodecError{Field: -1, Line: line, Err: fmt.Errorf("%w: %v", errBadEpochLn, err)}
	}
	n, err := parseIntBlank(col(ep, nc, nc+3))
	if err != nil {
		d.Errors++
		d.prevEpoch = ""
		return nil, &CodecError{Field: -1, Line: line, Err: fmt.Errorf("%w: %v", errBadEpochLn, err)}
	}

	if EpochFlag(flag).IsEvent() {
		d.prevEpoch = ""
		d.k = n
		if n > 0 {
			d.state = expectSpecial
		}
		return []string{col(ep, 0, nc+3)}, nil
	}

	def := d.h.Constellation
	if def == SysMixed || def == 0 {
		def = 'G'
	}
	sats := make([]SatType, 0, n)
	for i := 0; i < n; i++ {
		j := sc + i*3
		sat, err := ParseSat(col(ep, j, j+3), def)
		if err != nil {
			d.Errors++
			d.prevEpoch = ""
			return nil, &CodecError{Field: -1, Line: line, Err: err}
		}
		sats = append(sats, sat)
	}
	d.prevEpoch = ep
	d.epoch = ep
	d.epochSats = sats
	d.enterEpoch(sats)
	d.state = expectClock
	return nil, nil
}

func (d *Decompressor) clockLine(line string) []string {
	var clock string
	s := strings.TrimSpace(line)
	if s == "" {
		d.clock = nil
	} else {
		v, a, err := parseArcField(s, d.clock)
		switch {
		case errors.Is(err, errNoArc):
			d.fieldError("", -1, line, err)
			a = newArc(DefaultHatanakaOrder, v)
		case err != nil:
			d.fieldError("", -1, line, err)
		}
		d.clock = a
		if err == nil || errors.Is(err, errNoArc) {
			dec := d.clockDecimals()
			clock = fmtFixed(v, dec, dec+3)
		}
	}

	out := d.nativeEpoch(clock)
	d.k = 0
	if len(d.epochSats) == 0 {
		d.state = expectEpoch
	} else {
		d.state = expectSats
	}
	return out
}

// Native epoch line(s) with satellite list and clock
func (d *Decompressor) nativeEpoch(clock string) []string {
	_, nc, _ := d.epochCols()
	head := col(d.epoch, 0, nc+3)
	if d.h.Version.Major >= 3 {
		if clock != "" {
			return []string{padRight(head, 41) + clock}
		}
		return []string{head}
	}
	var out []string
	l := padRight(head, 32)
	for i, sat := range d.epochSats {
		if i > 0 && i%NumSatsPerLine == 0 {
			out = append(out, l)
			l = strings.Repeat(" ", 32)
		}
		l += string(sat)
	}
	out = append(out, l)
	if clock != "" {
		out[0] = padRight(out[0], 68) + clock
	}
	return out
}

func (d *Decompressor) satLine(line string) []string {
	sat := d.epochSats[d.k]
	d.k++
	if d.k >= len(d.epochSats) {
		d.state = expectEpoch
	}
	st := d.sat(sat)
	nobs := len(st.arcs)

	// Fields separated by one blank, then the flag difference
	vals := make([]*int64, nobs)
	pos := 0
	for i := 0; i < nobs; i++ {
		var f string
		if pos < len(line) {
			if sp := strings.IndexByte(line[pos:], ' '); sp < 0 {
				f = line[pos:]
				pos = len(line) + 1
			} else {
				f = line[pos : pos+sp]
				pos += sp + 1
			}
		}
		if f == "" {
			st.arcs[i] = nil
			continue
		}
		v, a, err := parseArcField(f, st.arcs[i])
		switch {
		case errors.Is(err, errNoArc):
			d.fieldError(sat, i, line, err)
			a = newArc(DefaultHatanakaOrder, v)
		case err != nil:
			d.fieldError(sat, i, line, err)
			st.arcs[i] = nil
			continue
		}
		st.arcs[i] = a
		x := v
		vals[i] = &x
	}
	if pos < len(line) {
		st.flags = applyTextDiff(st.flags, line[pos:])
	}
	flags := padRight(st.flags, 2*nobs)

	// Native layout
	fields := make([]string, nobs)
	for i := range fields {
		if vals[i] == nil {
			fields[i] = strings.Repeat(" ", 16)
			continue
		}
		fields[i] = fmtFixed(*vals[i], 3, 14) + flags[2*i:2*i+2]
	}
	if d.h.Version.Major >= 3 {
		return []string{strings.TrimRight(string(sat)+strings.Join(fields, ""), " ")}
	}
	var out []string
	for i := 0; i < nobs; i += NumObsPerLineV2 {
		j := i + NumObsPerLineV2
		if j > nobs {
			j = nobs
		}
		out = append(out, strings.TrimRight(strings.Join(fields[i:j], ""), " "))
	}
	if len(out) == 0 {
		out = append(out, "")
	}
	return out
}

//-------------------------------------------------------------------
// Compressor
//-------------------------------------------------------------------

// Produces compact lines from observation epochs
type Compressor struct {
	codecState
	order int
}

func NewCompressor(h *Header, order int) *Compressor {
	if order < 1 {
		order = DefaultHatanakaOrder
	}
	return &Compressor{codecState: newCodecState(h), order: order}
}

// Full compact epoch line: satellites on one line
func (c *Compressor) epochText(e Epoch, sats []SatType, n int) string {
	var sb strings.Builder
	if c.h.Version.Major >= 3 {
		sb.WriteString(formatObsEpochV3(e))
		sb.WriteString(fmt.Sprintf("%3d", n))
		if len(sats) > 0 {
			sb.WriteString("      ")
		}
	} else {
		sb.WriteString(formatObsEpochV2(e))
		sb.WriteString(fmt.Sprintf("%3d", n))
	}
	for _, s := range sats {
		sb.WriteString(string(s))
	}
	return sb.String()
}

func (c *Compressor) fullLine(ep string) string {
	if c.h.Version.Major < 3 {
		return "&" + ep[1:]
	}
	return ep
}

// Compact lines of one epoch. Special lines follow event epochs verbatim.
func (c *Compressor) Compress(e Epoch, oe ObsEpoch, special []string) []string {
	if e.Flag.IsEvent() {
		c.prevEpoch = ""
		ep := c.epochText(e, nil, len(special))
		return append([]string{c.fullLine(ep)}, special...)
	}

	sats := oe.Sats()
	ep := c.epochText(e, sats, len(sats))
	var out []string
	if c.prevEpoch == "" {
		out = append(out, c.fullLine(ep))
	} else {
		out = append(out, makeTextDiff(c.prevEpoch, ep))
	}
	c.prevEpoch = ep
	c.enterEpoch(sats)

	// Clock
	if oe.ClockOffset == nil {
		c.clock = nil
		out = append(out, "")
	} else {
		v := int64(math.Round(*oe.ClockOffset * math.Pow10(c.clockDecimals())))
		out = append(out, c.field(&c.clock, v))
	}

	for _, sat := range sats {
		st := c.sat(sat)
		codes := c.h.satCodes(sat.Sys())
		m := oe.Data[sat]
		fields := make([]string, len(codes))
		var fl strings.Builder
		for i, code := range codes {
			d, ok := m[code]
			if !ok {
				st.arcs[i] = nil
				fl.WriteString("  ")
				continue
			}
			fields[i] = c.field(&st.arcs[i], int64(math.Round(d.Value*1000)))
			fl.WriteByte(flagChar(d.LLI))
			fl.WriteByte(flagChar(d.SSI))
		}
		flags := strings.TrimRight(fl.String(), " ")
		diff := makeTextDiff(st.flags, flags)
		st.flags = flags
		out = append(out, strings.TrimRight(strings.Join(fields, " ")+" "+diff, " "))
	}
	return out
}

// Arc initialization or next difference
func (c *Compressor) field(a **arc, v int64) string {
	if *a == nil {
		*a = newArc(c.order, v)
		return fmt.Sprintf("%d&%d", c.order, v)
	}
	return strconv.FormatInt((*a).differentiate(v), 10)
}

func flagChar(p *uint8) byte {
	if p == nil {
		return ' '
	}
	return '0' + *p%10
}
