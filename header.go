// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.16
//

package gorinex

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// RINEX 3.04 specification
// https://files.igs.org/pub/data/format/rinex304.pdf
//

//-------------------------------------------------------------------
// Version
//-------------------------------------------------------------------

// Format revision. Minor is kept in hundredths, "2.1" and "2.10" are equal.
type Version struct {
	Major int
	Minor int
}

func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	ma, mi, _ := strings.Cut(s, ".")
	major, err := strconv.Atoi(ma)
	if err != nil {
		return Version{}, fmt.Errorf("bad version %q", s)
	}
	minor := 0
	if mi != "" {
		if len(mi) > 2 {
			mi = mi[:2]
		}
		minor, err = strconv.Atoi(mi)
		if err != nil {
			return Version{}, fmt.Errorf("bad version %q", s)
		}
		if len(mi) == 1 {
			minor *= 10
		}
	}
	return Version{Major: major, Minor: minor}, nil
}

func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%02d", v.Major, v.Minor)
}

// One decimal, as IONEX and ANTEX write it
func (v Version) short() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor/10)
}

//-------------------------------------------------------------------
// FileType
//-------------------------------------------------------------------

type FileType byte

const (
	FileObservation FileType = 'O'
	FileNavigation  FileType = 'N'
	FileMeteo       FileType = 'M'
	FileClock       FileType = 'C'
	FileAntenna     FileType = 'A'
	FileIonex       FileType = 'I'
)

func (t FileType) String() string {
	switch t {
	case FileObservation:
		return "Observation"
	case FileNavigation:
		return "Navigation"
	case FileMeteo:
		return "Meteo"
	case FileClock:
		return "Clock"
	case FileAntenna:
		return "Antenna"
	case FileIonex:
		return "IonosphereMap"
	}
	return fmt.Sprintf("Unknown(%c)", byte(t))
}

//-------------------------------------------------------------------
// Header
//-------------------------------------------------------------------

type Receiver struct {
	Serial   string
	Model    string
	Firmware string
}

type Antenna struct {
	Serial string
	Model  string
}

type LeapSeconds struct {
	Leap   int    // Current number of leap seconds
	Delta  int    // Future or past leap seconds
	Week   int    // Week number of the future or past leap second
	Day    int    // Day number
	System string // Time system
}

// Observation sub-header
type ObsHeader struct {
	Codes map[SysType][]CodeType
}

type Sensor struct {
	Model    string
	Type     string
	Accuracy float64
	Physics  string // Observable measured, e.g. "PR"
	Position *PosXYZ
	Height   float64
}

// Meteo sub-header
type MeteoHeader struct {
	Codes   []string
	Sensors []Sensor
}

type AnalysisCenter struct {
	Code string
	Name string
}

type ClockStation struct {
	Name string
	ID   string
}

// Clock sub-header
type ClockHeader struct {
	Codes    []string
	Agency   *AnalysisCenter
	Station  *ClockStation
	RefClock string
}

// Antenna sub-header
type AntexHeader struct {
	PcvType      byte // 'A' absolute, 'R' relative
	RefAntType   string
	RefAntSerial string
}

type GridAxis struct {
	Start float64
	End   float64
	Step  float64
}

// Points on the axis from Start to End inclusive
func (g GridAxis) Len() int {
	if g.Step == 0 {
		return 1
	}
	return int(math.Round((g.End-g.Start)/g.Step)) + 1
}

// Ionosphere map sub-header
type IonexHeader struct {
	FirstMap        time.Time
	LastMap         time.Time
	NumMaps         int
	Mapping         string
	ElevationCutoff float64
	BaseRadius      float64
	MapDimension    int
	Height          GridAxis
	Lat             GridAxis
	Lon             GridAxis
	Exponent        int
}

// Compact RINEX descriptor
type Crinex struct {
	Version string
	Program string
	Date    string
}

// Major revision of the compact format, 1 or 3
func (c *Crinex) major() int {
	if strings.HasPrefix(strings.TrimSpace(c.Version), "1") {
		return 1
	}
	return 3
}

type Header struct {
	Version       Version
	Type          FileType
	Constellation SysType // 0 when absent
	Comments      []string

	Program    string
	RunBy      string
	Date       string
	Station    string
	StationID  string
	MarkerType string
	Observer   string
	Agency     string

	Rcvr        *Receiver
	Ant         *Antenna
	Coords      *PosXYZ
	AntDeltaHEN *PosENU
	AntDeltaXYZ *PosXYZ

	RcvClockOffsApplied bool
	WavelengthFactors   *[2]int
	Leap                *LeapSeconds
	SamplingInterval    time.Duration
	FirstEpoch          *time.Time
	LastEpoch           *time.Time
	TimeSystem          string

	Obs    *ObsHeader
	Meteo  *MeteoHeader
	Clock  *ClockHeader
	Antex  *AntexHeader
	Ionex  *IonexHeader
	Crinex *Crinex
}

func (h *Header) IsObservation() bool { return h.Type == FileObservation }
func (h *Header) IsNavigation() bool  { return h.Type == FileNavigation }
func (h *Header) IsMeteo() bool       { return h.Type == FileMeteo }
func (h *Header) IsClock() bool       { return h.Type == FileClock }
func (h *Header) IsAntex() bool       { return h.Type == FileAntenna }
func (h *Header) IsIonex() bool       { return h.Type == FileIonex }
func (h *Header) IsCompact() bool     { return h.Crinex != nil }

// Deep copy
func (h *Header) Clone() *Header {
	c := *h
	c.Comments = slices.Clone(h.Comments)
	if h.Rcvr != nil {
		v := *h.Rcvr
		c.Rcvr = &v
	}
	if h.Ant != nil {
		v := *h.Ant
		c.Ant = &v
	}
	if h.Coords != nil {
		v := *h.Coords
		c.Coords = &v
	}
	if h.AntDeltaHEN != nil {
		v := *h.AntDeltaHEN
		c.AntDeltaHEN = &v
	}
	if h.AntDeltaXYZ != nil {
		v := *h.AntDeltaXYZ
		c.AntDeltaXYZ = &v
	}
	if h.WavelengthFactors != nil {
		v := *h.WavelengthFactors
		c.WavelengthFactors = &v
	}
	if h.Leap != nil {
		v := *h.Leap
		c.Leap = &v
	}
	if h.FirstEpoch != nil {
		v := *h.FirstEpoch
		c.FirstEpoch = &v
	}
	if h.LastEpoch != nil {
		v := *h.LastEpoch
		c.LastEpoch = &v
	}
	if h.Obs != nil {
		o := &ObsHeader{Codes: make(map[SysType][]CodeType, len(h.Obs.Codes))}
		for k, v := range h.Obs.Codes {
			o.Codes[k] = slices.Clone(v)
		}
		c.Obs = o
	}
	if h.Meteo != nil {
		m := &MeteoHeader{Codes: slices.Clone(h.Meteo.Codes), Sensors: slices.Clone(h.Meteo.Sensors)}
		for i, s := range m.Sensors {
			if s.Position != nil {
				p := *s.Position
				m.Sensors[i].Position = &p
			}
		}
		c.Meteo = m
	}
	if h.Clock != nil {
		k := *h.Clock
		k.Codes = slices.Clone(h.Clock.Codes)
		if h.Clock.Agency != nil {
			a := *h.Clock.Agency
			k.Agency = &a
		}
		if h.Clock.Station != nil {
			st := *h.Clock.Station
			k.Station = &st
		}
		c.Clock = &k
	}
	if h.Antex != nil {
		v := *h.Antex
		c.Antex = &v
	}
	if h.Ionex != nil {
		v := *h.Ionex
		c.Ionex = &v
	}
	if h.Crinex != nil {
		v := *h.Crinex
		c.Crinex = &v
	}
	return &c
}

// Systems present in the observation code table
func (h *Header) ObsSystems() []SysType {
	if h.Obs == nil {
		return nil
	}
	return SortedSys(maps.Keys(h.Obs.Codes))
}

// Merge o into h. Comments are concatenated, optional fields keep h's value.
func (h *Header) merge(o *Header) {
	h.Comments = append(h.Comments, o.Comments...)
	switch {
	case h.Constellation == 0:
		h.Constellation = o.Constellation
	case o.Constellation != 0 && o.Constellation != h.Constellation:
		h.Constellation = SysMixed
	}
	hi := h.Version
	if hi.Less(o.Version) {
		hi = o.Version
	}
	if o.Version.Less(h.Version) {
		h.Version = o.Version
	}

	mergeStr := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	mergeStr(&h.Program, o.Program)
	mergeStr(&h.RunBy, o.RunBy)
	mergeStr(&h.Date, o.Date)
	mergeStr(&h.Station, o.Station)
	mergeStr(&h.StationID, o.StationID)
	mergeStr(&h.MarkerType, o.MarkerType)
	mergeStr(&h.Observer, o.Observer)
	mergeStr(&h.Agency, o.Agency)
	mergeStr(&h.TimeSystem, o.TimeSystem)

	oc := o.Clone()
	if h.Rcvr == nil {
		h.Rcvr = oc.Rcvr
	}
	if h.Ant == nil {
		h.Ant = oc.Ant
	}
	if h.Coords == nil {
		h.Coords = oc.Coords
	}
	if h.AntDeltaHEN == nil {
		h.AntDeltaHEN = oc.AntDeltaHEN
	}
	if h.AntDeltaXYZ == nil {
		h.AntDeltaXYZ = oc.AntDeltaXYZ
	}
	if h.WavelengthFactors == nil {
		h.WavelengthFactors = oc.WavelengthFactors
	}
	if h.Leap == nil {
		h.Leap = oc.Leap
	}
	if h.SamplingInterval == 0 {
		h.SamplingInterval = o.SamplingInterval
	}
	h.RcvClockOffsApplied = h.RcvClockOffsApplied || o.RcvClockOffsApplied
	if h.Crinex == nil {
		h.Crinex = oc.Crinex
	}
	if h.Antex == nil {
		h.Antex = oc.Antex
	}
	if h.Ionex == nil {
		h.Ionex = oc.Ionex
	} else if o.Ionex != nil {
		if o.Ionex.FirstMap.Before(h.Ionex.FirstMap) {
			h.Ionex.FirstMap = o.Ionex.FirstMap
		}
		if o.Ionex.LastMap.After(h.Ionex.LastMap) {
			h.Ionex.LastMap = o.Ionex.LastMap
		}
	}

	// Time span covers both files
	if oc.FirstEpoch != nil && (h.FirstEpoch == nil || oc.FirstEpoch.Before(*h.FirstEpoch)) {
		h.FirstEpoch = oc.FirstEpoch
	}
	if oc.LastEpoch != nil && (h.LastEpoch == nil || oc.LastEpoch.After(*h.LastEpoch)) {
		h.LastEpoch = oc.LastEpoch
	}

	// Unions
	if oc.Obs != nil {
		if h.Obs == nil {
			h.Obs = oc.Obs
		} else {
			for sys, codes := range oc.Obs.Codes {
				h.Obs.Codes[sys] = unionCodes(h.Obs.Codes[sys], codes)
			}
		}
	}
	// 3 character codes do not fit a legacy table
	if h.Obs != nil && h.Version.Major < 3 && hi.Major >= 3 &&
		slices.ContainsFunc(h.legacyCodes(), func(c CodeType) bool { return len(c) > 2 }) {
		h.Version = hi
		if oc.Crinex != nil && o.Version == hi {
			h.Crinex = oc.Crinex
		}
	}
	if oc.Meteo != nil {
		if h.Meteo == nil {
			h.Meteo = oc.Meteo
		} else {
			h.Meteo.Codes = unionCodes(h.Meteo.Codes, oc.Meteo.Codes)
			for _, s := range oc.Meteo.Sensors {
				if !slices.ContainsFunc(h.Meteo.Sensors, func(x Sensor) bool { return x.Physics == s.Physics }) {
					h.Meteo.Sensors = append(h.Meteo.Sensors, s)
				}
			}
		}
	}
	if oc.Clock != nil {
		if h.Clock == nil {
			h.Clock = oc.Clock
		} else {
			h.Clock.Codes = unionCodes(h.Clock.Codes, oc.Clock.Codes)
			if h.Clock.Agency == nil {
				h.Clock.Agency = oc.Clock.Agency
			}
			if h.Clock.Station == nil {
				h.Clock.Station = oc.Clock.Station
			}
			mergeStr(&h.Clock.RefClock, oc.Clock.RefClock)
		}
	}
}

//-------------------------------------------------------------------
// Header parsing
//-------------------------------------------------------------------

// Read header lines up to END OF HEADER
func ReadHeader(s *bufio.Scanner) (*Header, error) {
	b := newHeaderBuilder()
	for !b.done && s.Scan() {
		if err := b.apply(s.Text()); err != nil {
			return nil, err
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	return b.finalize()
}

// Continuation state of a multi-line code table
type pendingCodes struct {
	label     string
	sys       SysType
	remaining int
}

// Line by line header accumulator
type headerBuilder struct {
	h           *Header
	line        int
	started     bool
	done        bool
	pending     pendingCodes
	legacyCodes []CodeType
}

func newHeaderBuilder() *headerBuilder {
	return &headerBuilder{h: &Header{}}
}

func (b *headerBuilder) fail(label string, err error) error {
	return &HeaderError{Line: b.line, Label: label, Err: err}
}

// Labels accepted as the first header line
func firstLineLabel(l string) bool {
	lb := getHeaderLabel(l)
	return lb == "RINEX VERSION / TYPE" || strings.HasPrefix(lb, "CRINEX VERS") ||
		lb == "IONEX VERSION / TYPE" || lb == "ANTEX VERSION / SYST"
}

// Advance by one header line
func (b *headerBuilder) apply(l string) error {
	b.line++
	if b.done {
		return nil
	}
	label := getHeaderLabel(l)
	if !b.started {
		if !firstLineLabel(l) {
			return b.fail(label, ErrNotRinex)
		}
		b.started = true
	}

	if label == "COMMENT" {
		b.h.Comments = append(b.h.Comments, commentText(l))
		return nil
	}

	// Continuation lines of a code table
	if b.pending.remaining > 0 {
		if label == b.pending.label && (label != "SYS / # / OBS TYPES" || col(l, 0, 1) == " ") {
			b.continueCodes(l)
			return nil
		}
		Log.WithFields(logrus.Fields{"line": b.line, "label": b.pending.label}).
			Debug("code table continuation missing")
		b.pending = pendingCodes{}
	}

	var err error
	h := b.h
	switch {
	case strings.HasPrefix(label, "CRINEX VERS"):
		if h.Crinex == nil {
			h.Crinex = &Crinex{}
		}
		h.Crinex.Version = colT(l, 0, 20)
	case label == "CRINEX PROG / DATE":
		if h.Crinex == nil {
			h.Crinex = &Crinex{}
		}
		h.Crinex.Program = colT(l, 0, 20)
		h.Crinex.Date = colT(l, 40, 60)
	case label == "RINEX VERSION / TYPE":
		err = b.versionType(l)
	case label == "IONEX VERSION / TYPE":
		err = b.ionexVersionType(l)
	case label == "ANTEX VERSION / SYST":
		err = b.antexVersionSyst(l)
	case label == "PGM / RUN BY / DATE":
		h.Program = colT(l, 0, 20)
		h.RunBy = colT(l, 20, 40)
		h.Date = colT(l, 40, 60)
	case label == "MARKER NAME":
		h.Station = colT(l, 0, 60)
	case label == "MARKER NUMBER":
		h.StationID = colT(l, 0, 20)
	case label == "MARKER TYPE":
		h.MarkerType = colT(l, 0, 20)
	case label == "OBSERVER / AGENCY":
		h.Observer = colT(l, 0, 20)
		h.Agency = colT(l, 20, 60)
	case label == "REC # / TYPE / VERS":
		h.Rcvr = &Receiver{Serial: colT(l, 0, 20), Model: colT(l, 20, 40), Firmware: colT(l, 40, 60)}
	case label == "ANT # / TYPE":
		h.Ant = &Antenna{Serial: colT(l, 0, 20), Model: colT(l, 20, 40)}
	case label == "APPROX POSITION XYZ":
		h.Coords, err = parsePosXYZ(l)
	case label == "ANTENNA: DELTA H/E/N":
		h.AntDeltaHEN, err = parsePosHEN(l)
	case label == "ANTENNA: DELTA X/Y/Z":
		h.AntDeltaXYZ, err = parsePosXYZ(l)
	case label == "RCV CLOCK OFFS APPL":
		var n int
		n, err = parseIntBlank(col(l, 0, 6))
		h.RcvClockOffsApplied = n != 0
	case label == "WAVELENGTH FACT L1/2":
		err = b.wavelength(l)
	case label == "INTERVAL":
		var v float64
		v, err = parseFloat(col(l, 0, 10))
		h.SamplingInterval = time.Duration(math.Round(v * 1e9))
	case label == "LEAP SECONDS":
		err = b.leapSeconds(l)
	case label == "TIME OF FIRST OBS", label == "TIME OF LAST OBS":
		var e Epoch
		e, err = ParseEpoch(col(l, 0, 43))
		if err == nil {
			t := e.Time
			if label == "TIME OF FIRST OBS" {
				h.FirstEpoch = &t
				h.TimeSystem = colT(l, 48, 51)
			} else {
				h.LastEpoch = &t
			}
		}
	case label == "# / TYPES OF OBSERV", label == "SYS / # / OBS TYPES", label == "# / TYPES OF DATA":
		err = b.startCodes(l, label)
	case label == "SENSOR MOD/TYPE/ACC":
		err = b.sensor(l)
	case label == "SENSOR POS XYZ/H":
		err = b.sensorPos(l)
	case label == "ANALYSIS CENTER":
		b.clock().Agency = &AnalysisCenter{Code: colT(l, 0, 3), Name: colT(l, 5, 60)}
	case label == "STATION NAME / NUM":
		f := strings.Fields(col(l, 0, 60))
		st := &ClockStation{}
		if len(f) > 0 {
			st.Name = f[0]
		}
		if len(f) > 1 {
			st.ID = f[1]
		}
		b.clock().Station = st
	case label == "STATION CLK REF":
		b.clock().RefClock = colT(l, 0, 60)
	case label == "PCV TYPE / REFANT":
		h.Antex = &AntexHeader{RefAntType: colT(l, 20, 40), RefAntSerial: colT(l, 40, 60)}
		if c := col(l, 0, 1); c != "" {
			h.Antex.PcvType = c[0]
		}
	case label == "EPOCH OF FIRST MAP", label == "EPOCH OF LAST MAP":
		var e Epoch
		e, err = ParseEpoch(col(l, 0, 36))
		if err == nil {
			if label == "EPOCH OF FIRST MAP" {
				b.ionex().FirstMap = e.Time
			} else {
				b.ionex().LastMap = e.Time
			}
		}
	case label == "# OF MAPS IN FILE":
		b.ionex().NumMaps, err = parseIntBlank(col(l, 0, 6))
	case label == "MAPPING FUNCTION":
		b.ionex().Mapping = colT(l, 0, 60)
	case label == "ELEVATION CUTOFF":
		b.ionex().ElevationCutoff, err = parseFloat(col(l, 0, 8))
	case label == "BASE RADIUS":
		b.ionex().BaseRadius, err = parseFloat(col(l, 0, 8))
	case label == "MAP DIMENSION":
		b.ionex().MapDimension, err = parseIntBlank(col(l, 0, 6))
	case label == "HGT1 / HGT2 / DHGT":
		b.ionex().Height, err = parseGridAxis(l)
	case label == "LAT1 / LAT2 / DLAT":
		b.ionex().Lat, err = parseGridAxis(l)
	case label == "LON1 / LON2 / DLON":
		b.ionex().Lon, err = parseGridAxis(l)
	case label == "EXPONENT":
		b.ionex().Exponent, err = parseIntBlank(col(l, 0, 6))
	case label == "END OF HEADER":
		b.done = true
	default:
		// Unknown labels are ignored
	}
	if err != nil {
		return b.fail(label, err)
	}
	return nil
}

func (b *headerBuilder) clock() *ClockHeader {
	if b.h.Clock == nil {
		b.h.Clock = &ClockHeader{}
	}
	return b.h.Clock
}

func (b *headerBuilder) ionex() *IonexHeader {
	if b.h.Ionex == nil {
		b.h.Ionex = &IonexHeader{Exponent: DefaultIonexExponent}
	}
	return b.h.Ionex
}

func parseConstellation(c string) (SysType, error) {
	if c == "" || c == " " {
		return 0, nil
	}
	sys := SysType(c[0])
	if sys == SysMixed || sys.IsValid() {
		return sys, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownConstellation, c)
}

// RINEX VERSION / TYPE
func (b *headerBuilder) versionType(l string) error {
	v, err := ParseVersion(col(l, 0, 9))
	if err != nil {
		return err
	}
	if v.Major < 1 || v.Major > 4 {
		return fmt.Errorf("%w: %s", ErrUnsupportedRevision, v)
	}
	b.h.Version = v
	sys, err := parseConstellation(col(l, 40, 41))
	if err != nil {
		return err
	}
	switch c := col(l, 20, 21); c {
	case "O":
		b.h.Type = FileObservation
		if sys == 0 && v.Major < 3 {
			sys = 'G'
		}
	case "N":
		b.h.Type = FileNavigation
		if sys == 0 && v.Major < 3 {
			sys = 'G'
		}
	case "G":
		b.h.Type = FileNavigation
		sys = 'R'
	case "H":
		b.h.Type = FileNavigation
		sys = 'S'
	case "L":
		b.h.Type = FileNavigation
		sys = 'E'
	case "M":
		b.h.Type = FileMeteo
		sys = 0
	case "C":
		b.h.Type = FileClock
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, c)
	}
	b.h.Constellation = sys
	return nil
}

// IONEX VERSION / TYPE
func (b *headerBuilder) ionexVersionType(l string) error {
	v, err := ParseVersion(col(l, 0, 8))
	if err != nil {
		return err
	}
	b.h.Version = v
	b.h.Type = FileIonex
	if c := col(l, 20, 21); c != "I" {
		return fmt.Errorf("%w: %q", ErrUnknownType, c)
	}
	// System or theoretical model, only satellite systems are kept
	switch colT(l, 40, 60) {
	case "GPS":
		b.h.Constellation = 'G'
	case "GLO":
		b.h.Constellation = 'R'
	case "GAL":
		b.h.Constellation = 'E'
	case "MIX":
		b.h.Constellation = SysMixed
	}
	b.ionex()
	return nil
}

// ANTEX VERSION / SYST
func (b *headerBuilder) antexVersionSyst(l string) error {
	v, err := ParseVersion(col(l, 0, 8))
	if err != nil {
		return err
	}
	b.h.Version = v
	b.h.Type = FileAntenna
	sys, err := parseConstellation(col(l, 20, 21))
	if err != nil {
		return err
	}
	b.h.Constellation = sys
	return nil
}

// First line of a code table
func (b *headerBuilder) startCodes(l, label string) error {
	h := b.h
	switch label {
	case "SYS / # / OBS TYPES":
		sys := SysType(col(l, 0, 1)[0])
		if !sys.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnknownConstellation, col(l, 0, 1))
		}
		n, err := parseIntBlank(col(l, 3, 6))
		if err != nil {
			return err
		}
		if h.Obs == nil {
			h.Obs = &ObsHeader{Codes: map[SysType][]CodeType{}}
		}
		h.Obs.Codes[sys] = nil
		b.pending = pendingCodes{label: label, sys: sys, remaining: n}
	default:
		n, err := parseIntBlank(col(l, 0, 6))
		if err != nil {
			return err
		}
		b.pending = pendingCodes{label: label, remaining: n}
	}
	b.continueCodes(l)
	return nil
}

// Collect codes of one table line, up to the declared count
func (b *headerBuilder) continueCodes(l string) {
	h := b.h
	start := 6
	if b.pending.label == "SYS / # / OBS TYPES" {
		start = 7
	}
	for _, c := range strings.Fields(col(l, start, 60)) {
		if b.pending.remaining == 0 {
			break
		}
		b.pending.remaining--
		switch {
		case b.pending.label == "SYS / # / OBS TYPES":
			h.Obs.Codes[b.pending.sys] = append(h.Obs.Codes[b.pending.sys], CodeType(c))
		case b.pending.label == "# / TYPES OF DATA":
			b.clock().Codes = append(b.clock().Codes, c)
		case h.Type == FileMeteo:
			if h.Meteo == nil {
				h.Meteo = &MeteoHeader{}
			}
			h.Meteo.Codes = append(h.Meteo.Codes, c)
		default:
			b.legacyCodes = append(b.legacyCodes, CodeType(c))
		}
	}
}

// WAVELENGTH FACT L1/2, only the default line without satellite list is kept
func (b *headerBuilder) wavelength(l string) error {
	n, err := parseIntBlank(col(l, 12, 18))
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	l1, err := parseIntBlank(col(l, 0, 6))
	if err != nil {
		return err
	}
	l2, err := parseIntBlank(col(l, 6, 12))
	if err != nil {
		return err
	}
	b.h.WavelengthFactors = &[2]int{l1, l2}
	return nil
}

// LEAP SECONDS
func (b *headerBuilder) leapSeconds(l string) error {
	var v [4]int
	for i := range v {
		n, err := parseIntBlank(col(l, i*6, i*6+6))
		if err != nil {
			return err
		}
		v[i] = n
	}
	b.h.Leap = &LeapSeconds{Leap: v[0], Delta: v[1], Week: v[2], Day: v[3], System: colT(l, 24, 27)}
	return nil
}

// SENSOR MOD/TYPE/ACC
func (b *headerBuilder) sensor(l string) error {
	acc, err := parseFloat(col(l, 46, 53))
	if err != nil {
		return err
	}
	if b.h.Meteo == nil {
		b.h.Meteo = &MeteoHeader{}
	}
	b.h.Meteo.Sensors = append(b.h.Meteo.Sensors, Sensor{
		Model:    colT(l, 0, 20),
		Type:     colT(l, 20, 40),
		Accuracy: acc,
		Physics:  colT(l, 57, 59),
	})
	return nil
}

// SENSOR POS XYZ/H, attached to the sensor with the same observable
func (b *headerBuilder) sensorPos(l string) error {
	var v [4]float64
	for i := range v {
		x, err := parseFloat(col(l, i*14, i*14+14))
		if err != nil {
			return err
		}
		v[i] = x
	}
	if b.h.Meteo == nil {
		return nil
	}
	phys := colT(l, 57, 59)
	for i := range b.h.Meteo.Sensors {
		if b.h.Meteo.Sensors[i].Physics == phys {
			b.h.Meteo.Sensors[i].Position = &PosXYZ{X: v[0], Y: v[1], Z: v[2]}
			b.h.Meteo.Sensors[i].Height = v[3]
		}
	}
	return nil
}

// "  lat1  lat2  dlat" as 2X,3F6.1
func parseGridAxis(l string) (GridAxis, error) {
	var v [3]float64
	for i := range v {
		x, err := parseFloat(col(l, 2+i*6, 8+i*6))
		if err != nil {
			return GridAxis{}, err
		}
		v[i] = x
	}
	return GridAxis{Start: v[0], End: v[1], Step: v[2]}, nil
}

// Systems a legacy mixed code list applies to
var legacyMixedSystems = []SysType{'G', 'R', 'E', 'C', 'S', 'J'}

// Check completeness and return the header
func (b *headerBuilder) finalize() (*Header, error) {
	h := b.h
	if !b.started {
		return nil, &HeaderError{Line: b.line, Err: ErrNotRinex}
	}
	if !b.done {
		return nil, &HeaderError{Line: b.line, Err: ErrNoEndOfHeader}
	}
	if b.pending.remaining > 0 {
		Log.WithField("label", b.pending.label).Debugf("code table short by %d codes", b.pending.remaining)
	}

	if h.Type == FileObservation && len(b.legacyCodes) > 0 {
		if h.Obs == nil {
			h.Obs = &ObsHeader{Codes: map[SysType][]CodeType{}}
		}
		systems := []SysType{h.Constellation}
		if h.Constellation == SysMixed {
			systems = legacyMixedSystems
		}
		for _, sys := range systems {
			h.Obs.Codes[sys] = slices.Clone(b.legacyCodes)
		}
	}

	switch h.Type {
	case FileObservation:
		if h.Obs == nil || len(h.Obs.Codes) == 0 {
			return nil, &HeaderError{Line: b.line, Label: "END OF HEADER", Err: ErrMissingObsCodes}
		}
		if h.Constellation == 0 {
			// Derive from the code table
			if len(h.Obs.Codes) == 1 {
				h.Constellation = maps.Keys(h.Obs.Codes)[0]
			} else {
				h.Constellation = SysMixed
			}
		}
	case FileNavigation:
		if h.Constellation == 0 {
			return nil, &HeaderError{Line: b.line, Label: "RINEX VERSION / TYPE", Err: ErrMissingConstellation}
		}
	}
	return h, nil
}
