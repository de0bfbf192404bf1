// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.9
//

package gorinex

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// File body, one variant per file type:
// ObsRecord, NavRecord, MeteoRecord, ClockRecord, IonexRecord.
type Record interface {
	Type() FileType
	Len() int
	Epochs() []Epoch // Ascending

	subset(keep func(Epoch) bool) Record
	mergeFrom(o Record)
	clone() Record
}

// Body comments by epoch
type Comments map[Epoch][]string

func (c Comments) clone() Comments {
	n := make(Comments, len(c))
	for e, s := range c {
		n[e] = slices.Clone(s)
	}
	return n
}

func (c Comments) subset(keep func(Epoch) bool) Comments {
	n := Comments{}
	for e, s := range c {
		if keep(e) {
			n[e] = slices.Clone(s)
		}
	}
	return n
}

// Read counters
type ParseStats struct {
	Blocks        int
	SkippedBlocks int
	CodecErrors   int
}

func sortedEpochs[V any](m map[Epoch]V) []Epoch {
	k := maps.Keys(m)
	slices.SortFunc(k, func(a, b Epoch) int { return a.Compare(b) })
	return k
}

func subsetMap[V any](m map[Epoch]V, keep func(Epoch) bool) map[Epoch]V {
	n := make(map[Epoch]V)
	for e, v := range m {
		if keep(e) {
			n[e] = v
		}
	}
	return n
}

// Empty record of the file type, nil for antenna files
func newRecord(t FileType) Record {
	switch t {
	case FileObservation:
		return ObsRecord{}
	case FileNavigation:
		return NavRecord{}
	case FileMeteo:
		return MeteoRecord{}
	case FileClock:
		return ClockRecord{}
	case FileIonex:
		return IonexRecord{}
	}
	return nil
}

// Check if the line starts a new block
func isNewBlock(h *Header, l string) bool {
	if strings.TrimSpace(l) == "" {
		return false
	}
	switch h.Type {
	case FileObservation:
		if h.Version.Major >= 3 {
			return l[0] == '>'
		}
		return len(strings.Fields(l)) > 7 && col(l, 18, 19) == "."
	case FileNavigation:
		if h.Version.Major >= 4 {
			return l[0] == '>'
		}
		if SysType(l[0]).IsValid() {
			return true
		}
		if h.Version.Major < 3 && colT(l, 0, 2) != "" {
			return true
		}
		return h.Constellation == 'R' && len(strings.Fields(l)) > 4
	case FileMeteo:
		return strings.TrimSpace(col(l, 0, 4)) != ""
	case FileClock:
		return isClockLine(l)
	case FileIonex:
		return ionexMapStart(l) != ""
	}
	return false
}

// Body accumulator: lines are grouped into blocks, each block decoded into the record
type recordBuilder struct {
	h        *Header
	rec      Record
	comments Comments
	stats    ParseStats

	block   []string
	pending []string // Comments of the block being accumulated
	orphans []string // Comments seen before the first epoch
	lineNo  int
}

func newRecordBuilder(h *Header) *recordBuilder {
	return &recordBuilder{h: h, rec: newRecord(h.Type), comments: Comments{}}
}

func (b *recordBuilder) apply(l string) {
	b.lineNo++
	if b.rec == nil {
		return
	}
	if isComment(l) {
		if len(b.block) == 0 {
			b.orphans = append(b.orphans, commentText(l))
		} else {
			b.pending = append(b.pending, commentText(l))
		}
		return
	}
	if isNewBlock(b.h, l) {
		b.flush()
	}
	if len(b.block) == 0 && !isNewBlock(b.h, l) {
		// Lines outside of any block
		if strings.TrimSpace(l) != "" {
			Log.WithField("line", b.lineNo).Trace("line outside of a block ignored")
		}
		return
	}
	b.block = append(b.block, l)
}

// Decode the accumulated block
func (b *recordBuilder) flush() {
	if len(b.block) == 0 {
		return
	}
	lines := b.block
	pending := b.pending
	b.block, b.pending = nil, nil
	b.stats.Blocks++

	e, ok, err := b.decode(lines)
	if err != nil {
		b.stats.SkippedBlocks++
		Log.WithFields(logrus.Fields{"line": lines[0], "err": err}).Debug("block skipped")
		return
	}
	if !ok {
		return
	}
	if len(b.orphans) > 0 {
		b.comments[e] = append(b.comments[e], b.orphans...)
		b.orphans = nil
	}
	if len(pending) > 0 {
		b.comments[e] = append(b.comments[e], pending...)
	}
}

// Decode and insert one block, returns the epoch it belongs to
func (b *recordBuilder) decode(lines []string) (Epoch, bool, error) {
	switch r := b.rec.(type) {
	case ObsRecord:
		e, oe, err := decodeObsBlock(lines, b.h)
		if err != nil {
			return Epoch{}, false, err
		}
		r[e] = oe
		return e, true, nil
	case NavRecord:
		e, sat, f, ok, err := decodeNavBlock(lines, b.h)
		if err != nil || !ok {
			return Epoch{}, false, err
		}
		if r[e] == nil {
			r[e] = map[SatType]NavFrame{}
		}
		r[e][sat] = f
		return e, true, nil
	case MeteoRecord:
		e, m, err := decodeMeteoBlock(lines, b.h)
		if err != nil {
			return Epoch{}, false, err
		}
		r[e] = m
		return e, true, nil
	case ClockRecord:
		e, typ, sys, d, err := decodeClockBlock(lines)
		if err != nil {
			return Epoch{}, false, err
		}
		r.insert(e, typ, sys, d)
		return e, true, nil
	case IonexRecord:
		e, m, err := decodeIonexBlock(lines, b.h)
		if err != nil {
			return Epoch{}, false, err
		}
		r.insert(e, m)
		return e, true, nil
	}
	return Epoch{}, false, fmt.Errorf("%w: %s", ErrNoRecord, b.h.Type)
}

// Flush the last block
func (b *recordBuilder) finalize() (Record, Comments, ParseStats) {
	b.flush()
	if len(b.orphans) > 0 {
		Log.WithField("count", len(b.orphans)).Debug("comments without epoch dropped")
	}
	return b.rec, b.comments, b.stats
}
