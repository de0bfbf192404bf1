// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.3
//

package gorinex

import (
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// ------------------------------------
// Logging
// ------------------------------------

// Package logger. Parsing problems that do not abort a read are reported here.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

// Debug display level (0: warn, 1: info, 2: debug, 3: trace)
func SetDebugLevel(v int) {
	switch {
	case v <= 0:
		Log.SetLevel(logrus.WarnLevel)
	case v == 1:
		Log.SetLevel(logrus.InfoLevel)
	case v == 2:
		Log.SetLevel(logrus.DebugLevel)
	default:
		Log.SetLevel(logrus.TraceLevel)
	}
}

// ------------------------------------
// Fixed column helpers
// ------------------------------------

// Extract HEADER LABEL string from a header line
func getHeaderLabel(l string) string {
	if len(l) < 60 {
		return ""
	}
	return strings.TrimSpace(l[60:])
}

// Check if the line is a comment line (header or body)
func isComment(l string) bool {
	return getHeaderLabel(l) == "COMMENT"
}

// Content of a comment line
func commentText(l string) string {
	if len(l) > 60 {
		l = l[:60]
	}
	return strings.TrimRight(l, " ")
}

// Right-pad the line with blanks up to n columns
func padRight(l string, n int) string {
	if len(l) >= n {
		return l
	}
	return l + strings.Repeat(" ", n-len(l))
}

// Column slice [i:j], tolerant to short lines
func col(l string, i, j int) string {
	if i >= len(l) {
		return ""
	}
	if j > len(l) {
		j = len(l)
	}
	return l[i:j]
}

// Trimmed column slice
func colT(l string, i, j int) string {
	return strings.TrimSpace(col(l, i, j))
}

// Header line with content in columns 1-60 and label in 61-80
func headerLine(content, label string) string {
	if len(content) > 60 {
		content = content[:60]
	}
	return padRight(content, 60) + label
}

// Read real values by absorbing variations in exponential notation within RINEX files
func parseFloat(str string) (float64, error) {
	s := strings.TrimSpace(str)
	if strings.ContainsAny(s, "Dd") {
		s = strings.Replace(s, "D", "E", 1)
		s = strings.Replace(s, "d", "e", 1)
	}
	return strconv.ParseFloat(s, 64)
}

// Read an optional integer column; blank reads as 0
func parseIntBlank(str string) (int, error) {
	s := strings.TrimSpace(str)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// ------------------------------------
// Others
// ------------------------------------

// Display order of satellite systems
var sysOrder = map[SysType]int{'G': 0, 'J': 1, 'E': 2, 'R': 3, 'C': 4, 'S': 5, 'I': 6}

// Sort the list of satellite names
func Sorted(s []SatType) []SatType {
	s2 := make([]SatType, len(s))
	copy(s2, s)
	slices.SortFunc(s2, func(a, b SatType) int {
		if sysOrder[a.Sys()] != sysOrder[b.Sys()] {
			return sysOrder[a.Sys()] - sysOrder[b.Sys()]
		}
		return a.Num() - b.Num()
	})
	return s2
}

// Sorted list of satellite systems
func SortedSys(s []SysType) []SysType {
	s2 := make([]SysType, len(s))
	copy(s2, s)
	slices.SortFunc(s2, func(a, b SysType) int {
		return sysOrder[a] - sysOrder[b]
	})
	return s2
}

// Append codes missing from dst, keeping dst order
func unionCodes[T comparable](dst, src []T) []T {
	for _, c := range src {
		if !slices.Contains(dst, c) {
			dst = append(dst, c)
		}
	}
	return dst
}
