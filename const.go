// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.16
//

package gorinex

// WGS84
const (
	Re = 6378137.0           // Earth's radius [m]
	Fe = 1.0 / 298.257223563 // Earth's flattening
)

// Number of codes on one header line
const (
	NumObsCodesV2  = 9  // # / TYPES OF OBSERV (observation, 2.x)
	NumObsCodesV3  = 13 // SYS / # / OBS TYPES
	NumMeteoCodes  = 8  // # / TYPES OF OBSERV (meteo)
	NumClockCodes  = 9  // # / TYPES OF DATA
	NumSatsPerLine = 12 // Satellites on a 2.x epoch line
)

// Number of values on one record line
const (
	NumObsPerLineV2      = 5
	NumMeteoPerLine      = 8
	NumMeteoPerContLn    = 10
	NumClockPerLine      = 2
	NumClockPerContLn    = 4
	NumIonexPerLine      = 16
	IonexMissingValue    = 9999
	DefaultIonexExponent = -1
)

// Default order of the Hatanaka differential predictor
const DefaultHatanakaOrder = 3

// Loss-of-lock indicator bit
const LLILockLoss = 0x01
