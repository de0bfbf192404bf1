// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.15
//

package gorinex

import (
	"fmt"
	"strings"
	"time"
)

// Header line
func hl(content, label string) string {
	return headerLine(content, label)
}

// 16 column observation fields, "value/flags" or "" for a blank field
func obsFields(vals ...string) string {
	var sb strings.Builder
	for _, v := range vals {
		val, fl, _ := strings.Cut(v, "/")
		sb.WriteString(fmt.Sprintf("%14s%-2s", val, fl))
	}
	return strings.TrimRight(sb.String(), " ")
}

func joinLines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}

func firstLineOf(ver, typ, sys string) string {
	return hl(fmt.Sprintf("%9s%11s%-20s%-20s", ver, "", typ, sys), "RINEX VERSION / TYPE")
}

var t0 = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func at(sec int) Epoch {
	return NewEpoch(t0.Add(time.Duration(sec)*time.Second), EpochOk)
}

// GPS only observation file, 2.11
var obsV2 = joinLines(
	firstLineOf("2.11", "OBSERVATION DATA", "G (GPS)"),
	hl("teqc  2019Feb25     IGS                 20210101 00:00:00UTC", "PGM / RUN BY / DATE"),
	hl("first header comment", "COMMENT"),
	hl("TSK1", "MARKER NAME"),
	hl("21778M001", "MARKER NUMBER"),
	hl("OPERATOR            GSI", "OBSERVER / AGENCY"),
	hl("3001K72181          TRIMBLE NETR9       5.45", "REC # / TYPE / VERS"),
	hl("1441112501          TRM59800.00     NONE", "ANT # / TYPE"),
	hl(" -3957199.2770  3310199.7040  3737711.7830", "APPROX POSITION XYZ"),
	hl("        0.0610        0.0000        0.0000", "ANTENNA: DELTA H/E/N"),
	hl("     1     1", "WAVELENGTH FACT L1/2"),
	hl("     4    C1    L1    L2    P2", "# / TYPES OF OBSERV"),
	hl("    30.000", "INTERVAL"),
	hl("  2021     1     1     0     0    0.0000000     GPS", "TIME OF FIRST OBS"),
	hl("", "END OF HEADER"),
	" 21  1  1  0  0  0.0000000  0  2G01G02",
	obsFields("23619095.450", "124118749.123/45", "96718599.558/ 5", "23619097.250"),
	obsFields("20542135.775", "107950186.735/48", "84117001.461/45", "20542136.960"),
	" 21  1  1  0  0 30.0000000  0  2G01G02",
	obsFields("23619123.205", "124118895.002/45", "96718713.217/45", "23619125.010"),
	obsFields("20542101.100", "107950004.552/1", "84116859.829/48", "20542102.300"),
	hl("receiver restarted", "COMMENT"),
	" 21  1  1  0  1  0.0000000  0  1G01",
	obsFields("23619150.960", "124119040.880/45", "", "23619152.770"),
)

// Mixed observation file, 3.04, with a two line code table and an event epoch
var obsV3 = joinLines(
	firstLineOf("3.04", "OBSERVATION DATA", "M (MIXED)"),
	hl("gfzrnx-1.15         IGN                 20210101 000000 UTC", "PGM / RUN BY / DATE"),
	hl("TSK2", "MARKER NAME"),
	hl("G    4 C1C L1C D1C S1C", "SYS / # / OBS TYPES"),
	hl("E   15 C1C L1C D1C S1C C5Q L5Q D5Q S5Q C7Q L7Q D7Q S7Q C8Q", "SYS / # / OBS TYPES"),
	hl("       L8Q D8Q", "SYS / # / OBS TYPES"),
	hl("  2021     1     1     0     0    0.0000000     GPS", "TIME OF FIRST OBS"),
	hl("", "END OF HEADER"),
	"> 2021 01 01 00 00  0.0000000  0  2      0.000000000123",
	"G01"+obsFields("23619095.450", "124118749.123/45", "-1234.567", "45.000"),
	"E11"+obsFields("25000000.000", "131000000.125/ 7", "", "", "", "", "", "", "", "", "", "", "", "", "1.500"),
	"> 2021 01 01 00 00 30.0000000  2  1",
	hl("antenna moved", "COMMENT"),
	"> 2021 01 01 00 01  0.0000000  0  1",
	"G01"+obsFields("23619150.960", "124119040.880/1", "-1233.000", "44.250"),
)
