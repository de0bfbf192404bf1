// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.4
//

package gorinex

import (
	"fmt"
	"math"
	"strings"
)

//-------------------------------------------------------------------
// PosLLH
//-------------------------------------------------------------------

// Geodetic position, radians and meters
type PosLLH struct {
	Lat float64
	Lon float64
	Hei float64
}

// Convert to string in degrees
func (llh *PosLLH) String() string {
	return fmt.Sprintf("%.8f %.8f %.4f", llh.Lat*180/math.Pi, llh.Lon*180/math.Pi, llh.Hei)
}

//-------------------------------------------------------------------
// PosXYZ
//-------------------------------------------------------------------

// ECEF position or offset in meters (APPROX POSITION XYZ, ANTENNA: DELTA X/Y/Z, SENSOR POS XYZ/H)
type PosXYZ struct {
	X float64
	Y float64
	Z float64
}

// Read three F14.4 values
func parsePosXYZ(s string) (*PosXYZ, error) {
	v, err := parse3(s)
	if err != nil {
		return nil, err
	}
	return &PosXYZ{X: v[0], Y: v[1], Z: v[2]}, nil
}

// Header content, 3F14.4
func (pos *PosXYZ) format() string {
	return fmt.Sprintf("%14.4f%14.4f%14.4f", pos.X, pos.Y, pos.Z)
}

func (pos *PosXYZ) ToLLH() PosLLH {
	if pos.X == 0 && pos.Y == 0 && pos.Z == 0 {
		return PosLLH{Hei: -Re}
	}

	// Ellipsoid parameters
	a := Re
	b := a * (1 - Fe)
	e2 := Fe * (2 - Fe)

	// Bowring's closed form
	h := a*a - b*b
	p := math.Hypot(pos.X, pos.Y)
	t := math.Atan2(pos.Z*a, p*b)
	st, ct := math.Sincos(t)
	lat := math.Atan2(pos.Z+h/b*st*st*st, p-h/a*ct*ct*ct)
	lon := math.Atan2(pos.Y, pos.X)
	sl := math.Sin(lat)
	n := a / math.Sqrt(1-e2*sl*sl)
	return PosLLH{Lat: lat, Lon: lon, Hei: p/math.Cos(lat) - n}
}

//-------------------------------------------------------------------
// PosENU
//-------------------------------------------------------------------

// Local offset in meters. ANTENNA: DELTA H/E/N stores U as the height.
type PosENU struct {
	E float64
	N float64
	U float64
}

// Read H, E, N in this order
func parsePosHEN(s string) (*PosENU, error) {
	v, err := parse3(s)
	if err != nil {
		return nil, err
	}
	return &PosENU{U: v[0], E: v[1], N: v[2]}, nil
}

// Header content, H E N as 3F14.4
func (enu *PosENU) formatHEN() string {
	return fmt.Sprintf("%14.4f%14.4f%14.4f", enu.U, enu.E, enu.N)
}

// Three whitespace separated reals in the first 60 columns
func parse3(s string) ([3]float64, error) {
	var v [3]float64
	f := strings.Fields(col(s, 0, 60))
	if len(f) < 3 {
		return v, fmt.Errorf("expected 3 values, got %d", len(f))
	}
	for i := 0; i < 3; i++ {
		x, err := parseFloat(f[i])
		if err != nil {
			return v, err
		}
		v[i] = x
	}
	return v, nil
}
