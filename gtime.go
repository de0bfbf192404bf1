// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.16
//

package gorinex

import (
	"fmt"
	"math"
	"time"
)

// Start of GPS time
var gpsEpoch = time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC)

const secPerWeek = 3600 * 24 * 7

// GPS week and seconds of week
type GTime struct {
	Week int
	Sec  float64
}

func NewGTime(dt time.Time) *GTime {
	d := dt.UTC().Sub(gpsEpoch)
	w := int64(d / (secPerWeek * time.Second))
	r := d - time.Duration(w)*secPerWeek*time.Second
	return &GTime{
		Week: int(w),
		Sec:  r.Seconds(),
	}
}

func (p *GTime) ToTime() time.Time {
	i := math.Trunc(p.Sec)
	n := int64(math.Round((p.Sec - i) * 1e9))
	return gpsEpoch.Add(time.Duration(p.Week)*secPerWeek*time.Second +
		time.Duration(i)*time.Second + time.Duration(n))
}

// Day of week, 0 is Sunday
func (p *GTime) DayOfWeek() int {
	return int(p.Sec) / (3600 * 24)
}

func (p *GTime) String() string {
	return fmt.Sprintf("%4d %10.3f", p.Week, p.Sec)
}
