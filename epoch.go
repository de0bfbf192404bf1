// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.4
//

package gorinex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

//-------------------------------------------------------------------
// EpochFlag
//-------------------------------------------------------------------

type EpochFlag uint8

const (
	EpochOk EpochFlag = iota
	EpochPowerFailure
	EpochAntennaBeingMoved
	EpochNewSiteOccupation
	EpochHeaderInformationFollows
	EpochExternalEvent
	EpochCycleSlip
)

var epochFlagNames = [...]string{
	"Ok",
	"PowerFailure",
	"AntennaBeingMoved",
	"NewSiteOccupation",
	"HeaderInformationFollows",
	"ExternalEvent",
	"CycleSlip",
}

func (f EpochFlag) String() string {
	if f.IsKnown() {
		return epochFlagNames[f]
	}
	return fmt.Sprintf("Unknown(%d)", uint8(f))
}

func (f EpochFlag) IsOk() bool {
	return f == EpochOk
}

func (f EpochFlag) IsKnown() bool {
	return f <= EpochCycleSlip
}

// Flags 2 to 5 are followed by special records instead of data
func (f EpochFlag) IsEvent() bool {
	return f >= EpochAntennaBeingMoved && f <= EpochExternalEvent
}

//-------------------------------------------------------------------
// Epoch
//-------------------------------------------------------------------

// Sampling instant with its event flag. Comparable, usable as a map key.
type Epoch struct {
	Time time.Time
	Flag EpochFlag
}

// Create an epoch normalized to UTC without monotonic reading
func NewEpoch(t time.Time, flag EpochFlag) Epoch {
	return Epoch{Time: t.UTC().Round(0), Flag: flag}
}

// Order by time, then flag
func (e Epoch) Compare(o Epoch) int {
	switch {
	case e.Time.Before(o.Time):
		return -1
	case e.Time.After(o.Time):
		return 1
	case e.Flag < o.Flag:
		return -1
	case e.Flag > o.Flag:
		return 1
	}
	return 0
}

func (e Epoch) Before(o Epoch) bool {
	return e.Compare(o) < 0
}

func (e Epoch) Sub(o Epoch) time.Duration {
	return e.Time.Sub(o.Time)
}

func (e Epoch) GTime() *GTime {
	return NewGTime(e.Time)
}

func (e Epoch) String() string {
	return fmt.Sprintf("%s %s", e.Time.Format("2006-01-02 15:04:05.0000000"), e.Flag)
}

// Parse "y m d h min s[.frac] [flag]"
func ParseEpoch(s string) (Epoch, error) {
	f := strings.Fields(s)
	if len(f) != 6 && len(f) != 7 {
		return Epoch{}, &EpochError{Field: "format", Value: s}
	}

	var v [5]int
	names := [5]string{"year", "month", "day", "hour", "minute"}
	limits := [5][2]int{{0, 9999}, {1, 12}, {1, 31}, {0, 23}, {0, 59}}
	for i := 0; i < 5; i++ {
		n, err := strconv.Atoi(f[i])
		if err != nil {
			return Epoch{}, &EpochError{Field: names[i], Value: f[i], Err: err}
		}
		if n < limits[i][0] || n > limits[i][1] {
			return Epoch{}, &EpochError{Field: names[i], Value: f[i], Err: errors.New("out of range")}
		}
		v[i] = n
	}
	// Century pivot for two digit years
	if len(f[0]) <= 2 {
		if v[0] < 90 {
			v[0] += 2000
		} else {
			v[0] += 1900
		}
	}

	sec, nsec, err := parseSeconds(f[5])
	if err != nil {
		return Epoch{}, &EpochError{Field: "second", Value: f[5], Err: err}
	}

	flag := EpochOk
	if len(f) == 7 {
		n, err := strconv.ParseUint(f[6], 10, 8)
		if err != nil {
			return Epoch{}, &EpochError{Field: "flag", Value: f[6], Err: err}
		}
		flag = EpochFlag(n)
	}

	t := time.Date(v[0], time.Month(v[1]), v[2], v[3], v[4], sec, nsec, time.UTC)
	return NewEpoch(t, flag), nil
}

// Decimal seconds as exact nanoseconds
func parseSeconds(s string) (int, int, error) {
	ip, fp, _ := strings.Cut(s, ".")
	if ip == "" {
		ip = "0"
	}
	sec, err := strconv.Atoi(ip)
	if err != nil {
		return 0, 0, err
	}
	if sec < 0 || sec > 60 {
		return 0, 0, errors.New("out of range")
	}
	if len(fp) > 9 {
		fp = fp[:9]
	}
	nsec := 0
	if fp != "" {
		fp += strings.Repeat("0", 9-len(fp))
		nsec, err = strconv.Atoi(fp)
		if err != nil || nsec < 0 {
			return 0, 0, fmt.Errorf("bad fraction %q", s)
		}
	}
	return sec, nsec, nil
}

//-------------------------------------------------------------------
// Formatters
//-------------------------------------------------------------------

// Seconds with n decimals, width 3+n
func fmtSeconds(t time.Time, n int) string {
	div := 1
	for i := n; i < 9; i++ {
		div *= 10
	}
	return fmt.Sprintf("%3d.%0*d", t.Second(), n, t.Nanosecond()/div)
}

// " yy mm dd hh mm ss.sssssss  f" (observation 2.x, 29 columns)
func formatObsEpochV2(e Epoch) string {
	t := e.Time
	return fmt.Sprintf(" %02d %2d %2d %2d %2d%s  %d",
		t.Year()%100, int(t.Month()), t.Day(), t.Hour(), t.Minute(), fmtSeconds(t, 7), e.Flag)
}

// "> yyyy mm dd hh mm ss.sssssss  f" (observation 3.x and 4.x, 32 columns)
func formatObsEpochV3(e Epoch) string {
	t := e.Time
	return fmt.Sprintf("> %04d %02d %02d %02d %02d%s  %d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), fmtSeconds(t, 7), e.Flag)
}

// "pp yy mm dd hh mm ss.s" (navigation 2.x, 22 columns)
func formatNavEpochV2(prn int, e Epoch) string {
	t := e.Time
	return fmt.Sprintf("%2d %02d %2d %2d %2d %2d%s",
		prn, t.Year()%100, int(t.Month()), t.Day(), t.Hour(), t.Minute(), fmtSeconds(t, 1))
}

// "Snn yyyy mm dd hh mm ss" (navigation 3.x and 4.x, 23 columns)
func formatNavEpochV3(sat SatType, e Epoch) string {
	t := e.Time
	return fmt.Sprintf("%-3s %04d %02d %02d %02d %02d %02d",
		sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// Meteo epoch, 2 digit year for 2.x (18 columns), 4 digit year otherwise (20 columns)
func formatMeteoEpoch(e Epoch, v Version) string {
	t := e.Time
	if v.Major < 3 {
		return fmt.Sprintf(" %02d %2d %2d %2d %2d %2d",
			t.Year()%100, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	return fmt.Sprintf(" %04d %2d %2d %2d %2d %2d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// "yyyy mm dd hh mm ss.ssssss" (clock data lines)
func formatClockEpoch(e Epoch) string {
	t := e.Time
	return fmt.Sprintf("%4d %02d %02d %02d %02d%s",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), fmtSeconds(t, 6))
}

// 6I6 (IONEX maps and header epochs)
func formatIonexEpoch(t time.Time) string {
	return fmt.Sprintf("%6d%6d%6d%6d%6d%6d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// 5I6,F13.7 (TIME OF FIRST OBS / TIME OF LAST OBS)
func formatObsTime(t time.Time) string {
	return fmt.Sprintf("%6d%6d%6d%6d%6d  %s",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), fmtSeconds(t, 7))
}
