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
)

// Constellation field of the first line
func sysField(sys SysType) string {
	switch sys {
	case 0:
		return ""
	case SysMixed:
		return "M: MIXED"
	}
	return fmt.Sprintf("%c: %s", byte(sys), strings.ToUpper(sys.String()))
}

func (h *Header) firstLine() string {
	ver := fmt.Sprintf("%9s%11s", h.Version, "")
	switch h.Type {
	case FileObservation:
		return headerLine(ver+fmt.Sprintf("%-20s%-20s", "OBSERVATION DATA", sysField(h.Constellation)), "RINEX VERSION / TYPE")
	case FileNavigation:
		if h.Version.Major < 3 {
			var t string
			switch h.Constellation {
			case 'R':
				t = "G: GLONASS NAV DATA"
			case 'S':
				t = "H: GEO NAV MSG DATA"
			case 'E':
				t = "L: GALILEO NAV DATA"
			default:
				t = "N: GPS NAV DATA"
			}
			return headerLine(ver+t, "RINEX VERSION / TYPE")
		}
		return headerLine(ver+fmt.Sprintf("%-20s%-20s", "N: GNSS NAV DATA", sysField(h.Constellation)), "RINEX VERSION / TYPE")
	case FileMeteo:
		return headerLine(ver+"METEOROLOGICAL DATA", "RINEX VERSION / TYPE")
	case FileClock:
		return headerLine(ver+fmt.Sprintf("%-20s%-20s", "CLOCK DATA", sysField(h.Constellation)), "RINEX VERSION / TYPE")
	case FileIonex:
		var s string
		switch h.Constellation {
		case 'G':
			s = "GPS"
		case 'R':
			s = "GLO"
		case 'E':
			s = "GAL"
		case SysMixed:
			s = "MIX"
		}
		return headerLine(fmt.Sprintf("%8s%12s%-20s%-20s", h.Version.short(), "", "IONOSPHERE MAPS", s), "IONEX VERSION / TYPE")
	case FileAntenna:
		s := " "
		if h.Constellation != 0 {
			s = string(rune(h.Constellation))
		}
		return headerLine(fmt.Sprintf("%8s%12s%s", h.Version.short(), "", s), "ANTEX VERSION / SYST")
	}
	return ""
}

// Code list lines: head of each line, code format, codes per line
func codeLines(head string, codes []string, format string, perLine int, label string) []string {
	var out []string
	var sb strings.Builder
	sb.WriteString(head)
	for i, c := range codes {
		if i > 0 && i%perLine == 0 {
			out = append(out, headerLine(sb.String(), label))
			sb.Reset()
			sb.WriteString(strings.Repeat(" ", len(head)))
		}
		sb.WriteString(fmt.Sprintf(format, c))
	}
	return append(out, headerLine(sb.String(), label))
}

// Codes of a legacy observation table
func (h *Header) legacyCodes() []CodeType {
	if h.Obs == nil {
		return nil
	}
	if c, ok := h.Obs.Codes[h.Constellation]; ok {
		return c
	}
	var u []CodeType
	for _, sys := range append(legacyMixedSystems, 'I') {
		u = unionCodes(u, h.Obs.Codes[sys])
	}
	return u
}

// Codes laid out in the data lines of a satellite of the system
func (h *Header) satCodes(sys SysType) []CodeType {
	if h.Version.Major < 3 {
		return h.legacyCodes()
	}
	return h.Obs.Codes[sys]
}

func toStrings[T ~string](a []T) []string {
	s := make([]string, len(a))
	for i, v := range a {
		s[i] = string(v)
	}
	return s
}

// Header lines in canonical order. An empty program field is filled with the producer tag.
func (h *Header) Lines(p Producer) []string {
	var out []string
	add := func(content, label string) {
		out = append(out, headerLine(content, label))
	}

	if h.Crinex != nil {
		add(fmt.Sprintf("%-20s%-20s", h.Crinex.Version, "COMPACT RINEX FORMAT"), "CRINEX VERS   / TYPE")
		pgm := h.Crinex.Program
		if pgm == "" {
			pgm = p.Tag()
		}
		add(fmt.Sprintf("%-20s%-20s%-20s", pgm, "", h.Crinex.Date), "CRINEX PROG / DATE")
	}
	out = append(out, h.firstLine())

	pgm := h.Program
	if pgm == "" {
		pgm = p.Tag()
	}
	add(fmt.Sprintf("%-20s%-20s%-20s", pgm, h.RunBy, h.Date), "PGM / RUN BY / DATE")
	for _, c := range h.Comments {
		add(c, "COMMENT")
	}

	if h.Station != "" {
		add(h.Station, "MARKER NAME")
	}
	if h.StationID != "" {
		add(h.StationID, "MARKER NUMBER")
	}
	if h.MarkerType != "" {
		add(h.MarkerType, "MARKER TYPE")
	}
	if h.Observer != "" || h.Agency != "" {
		add(fmt.Sprintf("%-20s%-40s", h.Observer, h.Agency), "OBSERVER / AGENCY")
	}
	if h.Rcvr != nil {
		add(fmt.Sprintf("%-20s%-20s%-20s", h.Rcvr.Serial, h.Rcvr.Model, h.Rcvr.Firmware), "REC # / TYPE / VERS")
	}
	if h.Ant != nil {
		add(fmt.Sprintf("%-20s%-20s", h.Ant.Serial, h.Ant.Model), "ANT # / TYPE")
	}
	if h.Coords != nil {
		add(h.Coords.format(), "APPROX POSITION XYZ")
	}
	if h.AntDeltaHEN != nil {
		add(h.AntDeltaHEN.formatHEN(), "ANTENNA: DELTA H/E/N")
	}
	if h.AntDeltaXYZ != nil {
		add(h.AntDeltaXYZ.format(), "ANTENNA: DELTA X/Y/Z")
	}
	if h.WavelengthFactors != nil {
		add(fmt.Sprintf("%6d%6d", h.WavelengthFactors[0], h.WavelengthFactors[1]), "WAVELENGTH FACT L1/2")
	}

	// Type specific tables
	if h.Obs != nil && h.Type == FileObservation {
		if h.Version.Major < 3 {
			codes := toStrings(h.legacyCodes())
			out = append(out, codeLines(fmt.Sprintf("%6d", len(codes)), codes, "%6s", NumObsCodesV2, "# / TYPES OF OBSERV")...)
		} else {
			for _, sys := range h.ObsSystems() {
				codes := toStrings(h.Obs.Codes[sys])
				out = append(out, codeLines(fmt.Sprintf("%c  %3d", byte(sys), len(codes)), codes, " %-3s", NumObsCodesV3, "SYS / # / OBS TYPES")...)
			}
		}
	}
	if h.Meteo != nil {
		out = append(out, codeLines(fmt.Sprintf("%6d", len(h.Meteo.Codes)), h.Meteo.Codes, "    %2s", NumMeteoCodes, "# / TYPES OF OBSERV")...)
		for _, s := range h.Meteo.Sensors {
			add(fmt.Sprintf("%-20s%-20s%6s%7.1f%4s%-2s", s.Model, s.Type, "", s.Accuracy, "", s.Physics), "SENSOR MOD/TYPE/ACC")
		}
		for _, s := range h.Meteo.Sensors {
			if s.Position != nil {
				add(fmt.Sprintf("%s%14.4f %-2s", s.Position.format(), s.Height, s.Physics), "SENSOR POS XYZ/H")
			}
		}
	}
	if h.Clock != nil {
		if len(h.Clock.Codes) > 0 {
			out = append(out, codeLines(fmt.Sprintf("%6d", len(h.Clock.Codes)), h.Clock.Codes, "    %2s", NumClockCodes, "# / TYPES OF DATA")...)
		}
		if h.Clock.Station != nil {
			add(fmt.Sprintf("%-9s %-20s", h.Clock.Station.Name, h.Clock.Station.ID), "STATION NAME / NUM")
		}
		if h.Clock.RefClock != "" {
			add(h.Clock.RefClock, "STATION CLK REF")
		}
		if h.Clock.Agency != nil {
			add(fmt.Sprintf("%-3s  %s", h.Clock.Agency.Code, h.Clock.Agency.Name), "ANALYSIS CENTER")
		}
	}
	if h.Antex != nil {
		pcv := " "
		if h.Antex.PcvType != 0 {
			pcv = string(rune(h.Antex.PcvType))
		}
		add(fmt.Sprintf("%-20s%-20s%-20s", pcv, h.Antex.RefAntType, h.Antex.RefAntSerial), "PCV TYPE / REFANT")
	}
	if x := h.Ionex; x != nil {
		add(formatIonexEpoch(x.FirstMap), "EPOCH OF FIRST MAP")
		add(formatIonexEpoch(x.LastMap), "EPOCH OF LAST MAP")
		add(fmt.Sprintf("%6d", int(h.SamplingInterval.Seconds())), "INTERVAL")
		add(fmt.Sprintf("%6d", x.NumMaps), "# OF MAPS IN FILE")
		if x.Mapping != "" {
			add("  "+x.Mapping, "MAPPING FUNCTION")
		}
		add(fmt.Sprintf("%8.1f", x.ElevationCutoff), "ELEVATION CUTOFF")
		add(fmt.Sprintf("%8.1f", x.BaseRadius), "BASE RADIUS")
		add(fmt.Sprintf("%6d", x.MapDimension), "MAP DIMENSION")
		add(fmt.Sprintf("  %6.1f%6.1f%6.1f", x.Height.Start, x.Height.End, x.Height.Step), "HGT1 / HGT2 / DHGT")
		add(fmt.Sprintf("  %6.1f%6.1f%6.1f", x.Lat.Start, x.Lat.End, x.Lat.Step), "LAT1 / LAT2 / DLAT")
		add(fmt.Sprintf("  %6.1f%6.1f%6.1f", x.Lon.Start, x.Lon.End, x.Lon.Step), "LON1 / LON2 / DLON")
		add(fmt.Sprintf("%6d", x.Exponent), "EXPONENT")
	}

	if h.RcvClockOffsApplied {
		add(fmt.Sprintf("%6d", 1), "RCV CLOCK OFFS APPL")
	}
	if h.SamplingInterval > 0 && h.Ionex == nil {
		add(fmt.Sprintf("%10.3f", h.SamplingInterval.Seconds()), "INTERVAL")
	}
	if h.FirstEpoch != nil {
		add(formatObsTime(*h.FirstEpoch)+fmt.Sprintf("%5s%-3s", "", h.TimeSystem), "TIME OF FIRST OBS")
	}
	if h.LastEpoch != nil {
		add(formatObsTime(*h.LastEpoch)+fmt.Sprintf("%5s%-3s", "", h.TimeSystem), "TIME OF LAST OBS")
	}
	if l := h.Leap; l != nil {
		if l.Delta == 0 && l.Week == 0 && l.Day == 0 && l.System == "" {
			add(fmt.Sprintf("%6d", l.Leap), "LEAP SECONDS")
		} else {
			add(fmt.Sprintf("%6d%6d%6d%6d%-3s", l.Leap, l.Delta, l.Week, l.Day, l.System), "LEAP SECONDS")
		}
	}
	add("", "END OF HEADER")
	return out
}
