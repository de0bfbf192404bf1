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
)

// Type representing satellite name like "G10"
type SatType string

// Type representing satellite system like 'G'
type SysType byte

// Mixed constellation marker used in headers
const SysMixed SysType = 'M'

// Extract satellite system from satellite name
func (p SatType) Sys() SysType {
	if len(p) == 0 {
		return 0
	}
	return SysType(p[0])
}

// Extract satellite number from satellite name
func (p SatType) Num() int {
	if len(p) < 3 {
		return 0
	}
	i, err := strconv.Atoi(strings.TrimSpace(string(p[1:3])))
	if err != nil {
		return 0
	}
	return i
}

// Check validity of satellite system
func (p SysType) IsValid() bool {
	switch p {
	case 'G', 'J', 'E', 'R', 'C', 'S', 'I':
		return true
	}
	return false
}

func (p SysType) String() string {
	switch p {
	case 'G':
		return "GPS"
	case 'R':
		return "GLONASS"
	case 'E':
		return "Galileo"
	case 'C':
		return "BeiDou"
	case 'J':
		return "QZSS"
	case 'S':
		return "SBAS"
	case 'I':
		return "IRNSS"
	case SysMixed:
		return "Mixed"
	case 0:
		return ""
	}
	return fmt.Sprintf("Unknown(%c)", byte(p))
}

// Make a satellite name from system and number
func NewSat(sys SysType, num int) SatType {
	return SatType(fmt.Sprintf("%c%02d", sys, num))
}

// Read a satellite name like "G01", "G 1" or " 1". A blank system means def.
func ParseSat(s string, def SysType) (SatType, error) {
	if len(strings.TrimSpace(s)) == 0 {
		return "", fmt.Errorf("empty satellite field")
	}
	sys := def
	num := s
	if c := s[0]; c != ' ' && (c < '0' || c > '9') {
		sys = SysType(c)
		num = s[1:]
	}
	if !sys.IsValid() {
		return "", fmt.Errorf("%w: '%c' in %q", ErrUnknownConstellation, byte(sys), s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return "", fmt.Errorf("bad satellite number in %q: %w", s, err)
	}
	return NewSat(sys, n), nil
}

// Type representing observation codes like C1C (3 or 2 characters)
type CodeType string

//-------------------------------------------------------------------
// Observation record
//-------------------------------------------------------------------

// One observable of one satellite
type ObsData struct {
	Value float64
	LLI   *uint8 // Loss-of-lock indicator
	SSI   *uint8 // Signal strength indicator
}

// Lock lost since previous observation
func (d ObsData) LockLoss() bool {
	return d.LLI != nil && *d.LLI&LLILockLoss != 0
}

// Observations of all satellites at one epoch
type ObsEpoch struct {
	ClockOffset *float64 // Receiver clock offset [s]
	Data        map[SatType]map[CodeType]ObsData
}

// Satellites in display order
func (p ObsEpoch) Sats() []SatType {
	return Sorted(maps.Keys(p.Data))
}

func (p ObsEpoch) clone() ObsEpoch {
	c := ObsEpoch{Data: make(map[SatType]map[CodeType]ObsData, len(p.Data))}
	if p.ClockOffset != nil {
		v := *p.ClockOffset
		c.ClockOffset = &v
	}
	for sat, m := range p.Data {
		c.Data[sat] = maps.Clone(m)
	}
	return c
}

type ObsRecord map[Epoch]ObsEpoch

func (ObsRecord) Type() FileType { return FileObservation }

func (r ObsRecord) Len() int { return len(r) }

func (r ObsRecord) Epochs() []Epoch { return sortedEpochs(r) }

func (r ObsRecord) subset(keep func(Epoch) bool) Record {
	return ObsRecord(subsetMap(r, keep))
}

func (r ObsRecord) mergeFrom(o Record) {
	for e, oe := range o.(ObsRecord) {
		r[e] = oe.clone()
	}
}

func (r ObsRecord) clone() Record {
	c := make(ObsRecord, len(r))
	for e, oe := range r {
		c[e] = oe.clone()
	}
	return c
}

// Codes used per system in the record
func (r ObsRecord) usedCodes() map[SysType][]CodeType {
	u := map[SysType][]CodeType{}
	for _, oe := range r {
		for sat, m := range oe.Data {
			u[sat.Sys()] = unionCodes(u[sat.Sys()], maps.Keys(m))
		}
	}
	return u
}

//-------------------------------------------------------------------
// Decoding
//-------------------------------------------------------------------

// Observation epoch line fields
type obsEpochLine struct {
	epoch Epoch
	nsat  int
	sats  []SatType
	clock *float64
}

// Read the epoch line (and satellite continuation lines for 2.x).
// Returns the number of lines consumed.
func parseObsEpochLines(lines []string, h *Header) (obsEpochLine, int, error) {
	var el obsEpochLine
	l := lines[0]
	if h.Version.Major >= 3 {
		e, err := ParseEpoch(col(l, 1, 32))
		if err != nil {
			return el, 0, err
		}
		el.epoch = e
		n, err := parseIntBlank(col(l, 32, 35))
		if err != nil {
			return el, 0, fmt.Errorf("bad satellite count: %w", err)
		}
		el.nsat = n
		if s := colT(l, 41, 56); s != "" {
			v, err := parseFloat(s)
			if err != nil {
				return el, 0, fmt.Errorf("bad clock offset: %w", err)
			}
			el.clock = &v
		}
		return el, 1, nil
	}

	e, err := ParseEpoch(col(l, 0, 29))
	if err != nil {
		return el, 0, err
	}
	el.epoch = e
	n, err := parseIntBlank(col(l, 29, 32))
	if err != nil {
		return el, 0, fmt.Errorf("bad satellite count: %w", err)
	}
	el.nsat = n
	if s := colT(l, 68, 80); s != "" {
		v, err := parseFloat(s)
		if err != nil {
			return el, 0, fmt.Errorf("bad clock offset: %w", err)
		}
		el.clock = &v
	}
	if e.Flag.IsEvent() {
		return el, 1, nil
	}

	// Satellite list, 12 per line
	def := h.Constellation
	if def == SysMixed || def == 0 {
		def = 'G'
	}
	used := 1
	for i := 0; i < n; i++ {
		if i > 0 && i%NumSatsPerLine == 0 {
			if used >= len(lines) {
				return el, 0, fmt.Errorf("satellite list truncated (%d/%d)", i, n)
			}
			l = lines[used]
			used++
		}
		j := 32 + (i%NumSatsPerLine)*3
		sat, err := ParseSat(col(l, j, j+3), def)
		if err != nil {
			return el, 0, err
		}
		el.sats = append(el.sats, sat)
	}
	return el, used, nil
}

// Read one 16 column observation field: F14.3, LLI, SSI
func parseObsField(s string) (ObsData, bool, error) {
	v := strings.TrimSpace(col(s, 0, 14))
	if v == "" {
		return ObsData{}, false, nil
	}
	x, err := parseFloat(v)
	if err != nil {
		return ObsData{}, false, err
	}
	d := ObsData{Value: x}
	if c := col(s, 14, 15); c != "" && c != " " {
		n, err := strconv.ParseUint(c, 10, 8)
		if err != nil {
			return ObsData{}, false, fmt.Errorf("bad LLI %q", c)
		}
		u := uint8(n)
		d.LLI = &u
	}
	if c := col(s, 15, 16); c != "" && c != " " {
		n, err := strconv.ParseUint(c, 10, 8)
		if err != nil {
			return ObsData{}, false, fmt.Errorf("bad SSI %q", c)
		}
		u := uint8(n)
		d.SSI = &u
	}
	return d, true, nil
}

// Decode one observation block
func decodeObsBlock(lines []string, h *Header) (Epoch, ObsEpoch, error) {
	el, used, err := parseObsEpochLines(lines, h)
	if err != nil {
		return Epoch{}, ObsEpoch{}, err
	}
	oe := ObsEpoch{ClockOffset: el.clock, Data: map[SatType]map[CodeType]ObsData{}}
	if el.epoch.Flag.IsEvent() {
		return el.epoch, oe, nil
	}
	body := lines[used:]

	if h.Version.Major >= 3 {
		def := h.Constellation
		for _, l := range body {
			if strings.TrimSpace(l) == "" {
				continue
			}
			sat, err := ParseSat(col(l, 0, 3), def)
			if err != nil {
				return Epoch{}, ObsEpoch{}, err
			}
			m, err := decodeObsFields(col(l, 3, len(l)), h.satCodes(sat.Sys()))
			if err != nil {
				return Epoch{}, ObsEpoch{}, fmt.Errorf("%s: %w", sat, err)
			}
			oe.Data[sat] = m
		}
		return el.epoch, oe, nil
	}

	// 2.x: each satellite spans ceil(n/5) lines of 80 columns
	k := 0
	for _, sat := range el.sats {
		codes := h.satCodes(sat.Sys())
		nl := (len(codes) + NumObsPerLineV2 - 1) / NumObsPerLineV2
		if nl == 0 {
			nl = 1
		}
		if k+nl > len(body) {
			return Epoch{}, ObsEpoch{}, fmt.Errorf("%s: data truncated", sat)
		}
		var sb strings.Builder
		for i := 0; i < nl; i++ {
			sb.WriteString(padRight(body[k+i], NumObsPerLineV2*16))
		}
		k += nl
		m, err := decodeObsFields(sb.String(), codes)
		if err != nil {
			return Epoch{}, ObsEpoch{}, fmt.Errorf("%s: %w", sat, err)
		}
		oe.Data[sat] = m
	}
	return el.epoch, oe, nil
}

// Consecutive 16 column fields, one per code
func decodeObsFields(s string, codes []CodeType) (map[CodeType]ObsData, error) {
	m := map[CodeType]ObsData{}
	for i, code := range codes {
		d, ok, err := parseObsField(col(s, i*16, i*16+16))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", code, err)
		}
		if ok {
			m[code] = d
		}
	}
	return m, nil
}

//-------------------------------------------------------------------
// Encoding
//-------------------------------------------------------------------

func formatObsField(d ObsData, ok bool) string {
	if !ok {
		return strings.Repeat(" ", 16)
	}
	lli, ssi := " ", " "
	if d.LLI != nil {
		lli = strconv.Itoa(int(*d.LLI))
	}
	if d.SSI != nil {
		ssi = strconv.Itoa(int(*d.SSI))
	}
	return fmt.Sprintf("%14.3f%s%s", d.Value, lli, ssi)
}

// Epoch line(s) of one observation block. nspecial is used for event epochs.
func encodeObsEpochLines(e Epoch, oe ObsEpoch, h *Header, nspecial int) []string {
	sats := oe.Sats()
	n := len(sats)
	if e.Flag.IsEvent() {
		n = nspecial
	}
	if h.Version.Major >= 3 {
		l := formatObsEpochV3(e) + fmt.Sprintf("%3d", n)
		if oe.ClockOffset != nil {
			l += fmt.Sprintf("      %15.12f", *oe.ClockOffset)
		}
		return []string{l}
	}

	l := formatObsEpochV2(e) + fmt.Sprintf("%3d", n)
	if e.Flag.IsEvent() {
		return []string{l}
	}
	var out []string
	for i, sat := range sats {
		if i > 0 && i%NumSatsPerLine == 0 {
			out = append(out, l)
			l = strings.Repeat(" ", 32)
		}
		l += fmt.Sprintf("%-3s", string(sat))
	}
	if oe.ClockOffset != nil {
		if len(out) == 0 {
			l = padRight(l, 68) + fmt.Sprintf("%12.9f", *oe.ClockOffset)
		} else {
			out[0] = padRight(out[0], 68) + fmt.Sprintf("%12.9f", *oe.ClockOffset)
		}
	}
	return append(out, l)
}

// Data lines of one satellite
func encodeObsSat(sat SatType, m map[CodeType]ObsData, h *Header) []string {
	codes := h.satCodes(sat.Sys())
	if h.Version.Major >= 3 {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%-3s", string(sat)))
		for _, code := range codes {
			d, ok := m[code]
			sb.WriteString(formatObsField(d, ok))
		}
		return []string{strings.TrimRight(sb.String(), " ")}
	}
	var out []string
	var sb strings.Builder
	for i, code := range codes {
		if i > 0 && i%NumObsPerLineV2 == 0 {
			out = append(out, strings.TrimRight(sb.String(), " "))
			sb.Reset()
		}
		d, ok := m[code]
		sb.WriteString(formatObsField(d, ok))
	}
	return append(out, strings.TrimRight(sb.String(), " "))
}

// Whole observation block
func encodeObsBlock(e Epoch, oe ObsEpoch, h *Header, nspecial int) []string {
	out := encodeObsEpochLines(e, oe, h, nspecial)
	if e.Flag.IsEvent() {
		return out
	}
	for _, sat := range oe.Sats() {
		out = append(out, encodeObsSat(sat, oe.Data[sat], h)...)
	}
	return out
}
