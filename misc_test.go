// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.16
//

package gorinex

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDebugLevel(t *testing.T) {
	defer SetDebugLevel(0)
	var testData = []struct {
		level int
		want  logrus.Level
	}{
		{-1, logrus.WarnLevel},
		{0, logrus.WarnLevel},
		{1, logrus.InfoLevel},
		{2, logrus.DebugLevel},
		{5, logrus.TraceLevel},
	}

	for _, td := range testData {
		SetDebugLevel(td.level)
		assert.Equal(t, td.want, Log.GetLevel(), "level %d", td.level)
	}
}

func TestColumns(t *testing.T) {
	assert.Equal(t, "", col("abc", 5, 8))
	assert.Equal(t, "bc", col("abc", 1, 8))
	assert.Equal(t, "b", colT(" b  ", 0, 4))
	assert.Equal(t, "", getHeaderLabel("short"))
	assert.Equal(t, "COMMENT", getHeaderLabel(hl("x", "COMMENT")))
	assert.True(t, isComment(hl("hello", "COMMENT")))
	assert.Equal(t, "hello", commentText(hl("hello", "COMMENT")))
	assert.Len(t, headerLine(string(make([]byte, 70)), "X"), 61)

	x, err := parseFloat(" 1.5D+02")
	require.NoError(t, err)
	assert.Equal(t, 150.0, x)
	x, err = parseFloat("-2.5d-01")
	require.NoError(t, err)
	assert.Equal(t, -0.25, x)

	n, err := parseIntBlank("   ")
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = parseIntBlank(" x")
	assert.Error(t, err)
}

func TestSorted(t *testing.T) {
	sats := []SatType{"R01", "E11", "G12", "G02", "J01"}
	assert.Equal(t, []SatType{"G02", "G12", "J01", "E11", "R01"}, Sorted(sats))
	assert.Equal(t, SatType("R01"), sats[0])
	assert.Equal(t, []SysType{'G', 'E', 'C'}, SortedSys([]SysType{'C', 'E', 'G'}))
	assert.Equal(t, []string{"a", "b", "c"}, unionCodes([]string{"a", "b"}, []string{"b", "c"}))
}
