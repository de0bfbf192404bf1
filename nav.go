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

// Broadcast parameters of one satellite at one epoch (time of clock), by name
type NavFrame map[string]float64

// Parameter names per system, line by line. The first line follows the epoch.
// Blank names are spare fields.
var navParams = map[SysType][][]string{
	'G': {
		{"af0", "af1", "af2"},
		{"iode", "crs", "deltaN", "m0"},
		{"cuc", "ecc", "cus", "sqrtA"},
		{"toe", "cic", "omega0", "cis"},
		{"i0", "crc", "omega", "omegaDot"},
		{"idot", "l2Codes", "week", "l2pFlag"},
		{"svAccuracy", "svHealth", "tgd", "iodc"},
		{"tot", "fitInterval"},
	},
	'J': {
		{"af0", "af1", "af2"},
		{"iode", "crs", "deltaN", "m0"},
		{"cuc", "ecc", "cus", "sqrtA"},
		{"toe", "cic", "omega0", "cis"},
		{"i0", "crc", "omega", "omegaDot"},
		{"idot", "l2Codes", "week", "l2pFlag"},
		{"svAccuracy", "svHealth", "tgd", "iodc"},
		{"tot", "fitInterval"},
	},
	'E': {
		{"af0", "af1", "af2"},
		{"iodNav", "crs", "deltaN", "m0"},
		{"cuc", "ecc", "cus", "sqrtA"},
		{"toe", "cic", "omega0", "cis"},
		{"i0", "crc", "omega", "omegaDot"},
		{"idot", "dataSrc", "week", ""},
		{"sisa", "svHealth", "bgdE5aE1", "bgdE5bE1"},
		{"tot"},
	},
	'C': {
		{"af0", "af1", "af2"},
		{"aode", "crs", "deltaN", "m0"},
		{"cuc", "ecc", "cus", "sqrtA"},
		{"toe", "cic", "omega0", "cis"},
		{"i0", "crc", "omega", "omegaDot"},
		{"idot", "", "week", ""},
		{"svAccuracy", "satH1", "tgd1", "tgd2"},
		{"tot", "aodc"},
	},
	'I': {
		{"af0", "af1", "af2"},
		{"iodec", "crs", "deltaN", "m0"},
		{"cuc", "ecc", "cus", "sqrtA"},
		{"toe", "cic", "omega0", "cis"},
		{"i0", "crc", "omega", "omegaDot"},
		{"idot", "", "week", ""},
		{"uraIndex", "svHealth", "tgd", ""},
		{"tot"},
	},
	'R': {
		{"tauN", "gammaN", "tk"},
		{"posX", "velX", "accX", "health"},
		{"posY", "velY", "accY", "freqNum"},
		{"posZ", "velZ", "accZ", "ageOp"},
	},
	'S': {
		{"agf0", "agf1", "tot"},
		{"posX", "velX", "accX", "health"},
		{"posY", "velY", "accY", "ura"},
		{"posZ", "velZ", "accZ", "iodn"},
	},
}

// NAV 4.x message type written with "> EPH"
var navMsgType = map[SysType]string{
	'G': "LNAV", 'J': "LNAV", 'I': "LNAV", 'E': "INAV", 'C': "D1", 'R': "FDMA", 'S': "SBAS",
}

type NavRecord map[Epoch]map[SatType]NavFrame

func (NavRecord) Type() FileType { return FileNavigation }

func (r NavRecord) Len() int { return len(r) }

func (r NavRecord) Epochs() []Epoch { return sortedEpochs(r) }

func (r NavRecord) subset(keep func(Epoch) bool) Record {
	return NavRecord(subsetMap(r, keep))
}

func (r NavRecord) mergeFrom(o Record) {
	for e, m := range o.(NavRecord) {
		n := make(map[SatType]NavFrame, len(m))
		for sat, f := range m {
			n[sat] = maps.Clone(f)
		}
		r[e] = n
	}
}

func (r NavRecord) clone() Record {
	c := make(NavRecord, len(r))
	for e, m := range r {
		c[e] = make(map[SatType]NavFrame, len(m))
		for sat, f := range m {
			c[e][sat] = maps.Clone(f)
		}
	}
	return c
}

//-------------------------------------------------------------------
// Decoding
//-------------------------------------------------------------------

// Offset of the first value on epoch and continuation lines
func navOffsets(v Version) (int, int) {
	if v.Major < 3 {
		return 22, 3
	}
	return 23, 4
}

// Decode one navigation block. A 4.x frame other than EPH returns ok=false.
func decodeNavBlock(lines []string, h *Header) (e Epoch, sat SatType, f NavFrame, ok bool, err error) {
	if h.Version.Major >= 4 {
		hdr := strings.Fields(lines[0])
		if len(hdr) < 3 || hdr[0] != ">" {
			return e, sat, nil, false, fmt.Errorf("bad frame header %q", lines[0])
		}
		if hdr[1] != "EPH" {
			return e, sat, nil, false, nil
		}
		lines = lines[1:]
		if len(lines) == 0 {
			return e, sat, nil, false, fmt.Errorf("empty EPH frame")
		}
	}

	l := lines[0]
	if h.Version.Major < 3 {
		sat, err = ParseSat(col(l, 0, 2), h.Constellation)
		if err != nil {
			return
		}
		e, err = ParseEpoch(col(l, 3, 22))
	} else {
		sat, err = ParseSat(col(l, 0, 3), h.Constellation)
		if err != nil {
			return
		}
		e, err = ParseEpoch(col(l, 4, 23))
	}
	if err != nil {
		return
	}

	table, found := navParams[sat.Sys()]
	if !found {
		return e, sat, nil, false, fmt.Errorf("%w: no parameter table for %s", ErrUnknownConstellation, sat)
	}
	first, cont := navOffsets(h.Version)
	f = NavFrame{}
	for i, names := range table {
		if i >= len(lines) {
			break
		}
		off := cont
		if i == 0 {
			off = first
		}
		for j, name := range names {
			s := col(lines[i], off+j*19, off+j*19+19)
			if name == "" || strings.TrimSpace(s) == "" {
				continue
			}
			x, perr := parseFloat(s)
			if perr != nil {
				return e, sat, nil, false, fmt.Errorf("%s %s: %w", sat, name, perr)
			}
			f[name] = x
		}
	}
	return e, sat, f, true, nil
}

//-------------------------------------------------------------------
// Encoding
//-------------------------------------------------------------------

// D19.12 for 2.x, E19.12 otherwise
func formatNavValue(x float64, v Version) string {
	s := fmt.Sprintf("%19.12E", x)
	if v.Major < 3 {
		s = strings.Replace(s, "E", "D", 1)
	}
	return s
}

// Lines of one satellite frame
func encodeNavFrame(e Epoch, sat SatType, f NavFrame, h *Header) []string {
	var out []string
	if h.Version.Major >= 4 {
		out = append(out, fmt.Sprintf("> EPH %s %s", sat, navMsgType[sat.Sys()]))
	}
	_, cont := navOffsets(h.Version)
	for i, names := range navParams[sat.Sys()] {
		var sb strings.Builder
		if i == 0 {
			if h.Version.Major < 3 {
				sb.WriteString(formatNavEpochV2(sat.Num(), e))
			} else {
				sb.WriteString(formatNavEpochV3(sat, e))
			}
		} else {
			sb.WriteString(strings.Repeat(" ", cont))
		}
		for _, name := range names {
			x, ok := f[name]
			if name == "" || !ok {
				sb.WriteString(strings.Repeat(" ", 19))
				continue
			}
			sb.WriteString(formatNavValue(x, h.Version))
		}
		out = append(out, strings.TrimRight(sb.String(), " "))
	}
	return out
}
