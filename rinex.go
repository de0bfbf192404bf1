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
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RINEX 3.04 specification
// https://files.igs.org/pub/data/format/rinex304.pdf
//

//-------------------------------------------------------------------
// Producer
//-------------------------------------------------------------------

// Identity of the program writing files, used for PGM and FILE MERGE comments
type Producer struct {
	Name    string
	Version string
}

var DefaultProducer = Producer{Name: "gorinex", Version: "0.1.0"}

// "name-vX.Y.Z"
func (p Producer) Tag() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "-v" + p.Version
}

func ParseProducer(tag string) Producer {
	if i := strings.LastIndex(tag, "-v"); i > 0 {
		return Producer{Name: tag[:i], Version: tag[i+2:]}
	}
	return Producer{Name: tag}
}

//-------------------------------------------------------------------
// Rinex
//-------------------------------------------------------------------

// Parsed file: header, record and body comments
type Rinex struct {
	Header   *Header
	Record   Record // nil for antenna files
	Comments Comments
	Stats    ParseStats

	// Maximum differential order used when writing compact files
	CompressionOrder int
}

// Read a RINEX, CRINEX, IONEX or ANTEX stream
func Read(rd io.Reader) (*Rinex, error) {
	s := bufio.NewScanner(rd)
	s.Buffer(make([]byte, 64*1024), 1024*1024)

	h, err := ReadHeader(s)
	if err != nil {
		return nil, err
	}

	rb := newRecordBuilder(h)
	var dec *Decompressor
	if h.IsCompact() && h.IsObservation() {
		dec = NewDecompressor(h)
	}
	lineNo := 0
	for s.Scan() {
		lineNo++
		if dec == nil {
			rb.apply(s.Text())
			continue
		}
		lines, err := dec.Decompress(s.Text())
		if err != nil {
			Log.WithFields(logrus.Fields{"line": lineNo, "err": err}).Warn("compact line skipped")
			continue
		}
		for _, l := range lines {
			rb.apply(l)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	rec, comments, stats := rb.finalize()
	if dec != nil {
		stats.CodecErrors = dec.Errors
	}
	Log.WithFields(logrus.Fields{
		"type":    h.Type,
		"blocks":  stats.Blocks,
		"skipped": stats.SkippedBlocks,
	}).Debug("record read")
	return &Rinex{Header: h, Record: rec, Comments: comments, Stats: stats}, nil
}

// Read file. Gzip and Unix compress are not handled here.
func ReadFile(path string) (*Rinex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	r, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Deep copy
func (r *Rinex) Clone() *Rinex {
	c := &Rinex{
		Header:           r.Header.Clone(),
		Comments:         r.Comments.clone(),
		Stats:            r.Stats,
		CompressionOrder: r.CompressionOrder,
	}
	if r.Record != nil {
		c.Record = r.Record.clone()
	}
	return c
}

//-------------------------------------------------------------------
// Epoch queries
//-------------------------------------------------------------------

// All epochs, ascending
func (r *Rinex) Epochs() []Epoch {
	if r.Record == nil {
		return nil
	}
	return r.Record.Epochs()
}

func (r *Rinex) FirstEpoch() (Epoch, bool) {
	ep := r.Epochs()
	if len(ep) == 0 {
		return Epoch{}, false
	}
	return ep[0], true
}

func (r *Rinex) LastEpoch() (Epoch, bool) {
	ep := r.Epochs()
	if len(ep) == 0 {
		return Epoch{}, false
	}
	return ep[len(ep)-1], true
}

// Epochs flagged Ok, ascending
func (r *Rinex) okEpochs() []Epoch {
	var ok []Epoch
	for _, e := range r.Epochs() {
		if e.Flag.IsOk() {
			ok = append(ok, e)
		}
	}
	return ok
}

// Header interval, or the most frequent delta between Ok epochs
func (r *Rinex) SamplingInterval() (time.Duration, bool) {
	if r.Header.SamplingInterval > 0 {
		return r.Header.SamplingInterval, true
	}
	return modalInterval(r.okEpochs())
}

// Most frequent positive delta, the smallest one on ties
func modalInterval(ep []Epoch) (time.Duration, bool) {
	var deltas []float64
	for i := 1; i < len(ep); i++ {
		if d := ep[i].Sub(ep[i-1]); d > 0 {
			deltas = append(deltas, float64(d))
		}
	}
	if len(deltas) == 0 {
		return 0, false
	}
	sort.Float64s(deltas)

	// One bin per distinct delta
	var bins []float64
	for _, d := range deltas {
		if len(bins) == 0 || bins[len(bins)-1] != d {
			bins = append(bins, d)
		}
	}
	dividers := append(slices.Clone(bins), bins[len(bins)-1]+1)
	counts := stat.Histogram(nil, dividers, deltas, nil)
	return time.Duration(bins[floats.MaxIdx(counts)]), true
}

// Epochs following a gap longer than the sampling interval
func (r *Rinex) DeadTimes() []Epoch {
	dt, ok := r.SamplingInterval()
	if !ok {
		return nil
	}
	ep := r.okEpochs()
	var gaps []Epoch
	for i := 1; i < len(ep); i++ {
		if ep[i].Sub(ep[i-1]) > dt {
			gaps = append(gaps, ep[i])
		}
	}
	return gaps
}

// Epochs not flagged Ok, optionally only those with the given flag
func (r *Rinex) EpochAnomalies(mask *EpochFlag) []Epoch {
	var out []Epoch
	for _, e := range r.Epochs() {
		if e.Flag.IsOk() {
			continue
		}
		if mask != nil && e.Flag != *mask {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Body comments attached to the epoch
func (r *Rinex) EventDescription(e Epoch) (string, bool) {
	c, ok := r.Comments[e]
	if !ok || len(c) == 0 {
		return "", false
	}
	return strings.Join(c, ", "), true
}

// Observation epochs where some signal lost lock
func (r *Rinex) LockLossEvents() []Epoch {
	rec, ok := r.Record.(ObsRecord)
	if !ok {
		return nil
	}
	var out []Epoch
	for _, e := range rec.Epochs() {
	sats:
		for _, m := range rec[e].Data {
			for _, d := range m {
				if d.LockLoss() {
					out = append(out, e)
					break sats
				}
			}
		}
	}
	return out
}

//-------------------------------------------------------------------
// Merge / split
//-------------------------------------------------------------------

const mergeMarker = "FILE MERGE"

// "<producer> FILE MERGE yyyymmdd hhmmss UTC".
// The boundary has whole second resolution, sub-second parts are truncated.
func mergeComment(p Producer, t time.Time) string {
	return fmt.Sprintf("%-20s%-20s%s UTC", p.Tag(), mergeMarker, t.UTC().Format("20060102 150405"))
}

// Merge other into r. Other's entry replaces r's entry on identical epochs.
// A FILE MERGE comment is added only when both sides had epochs.
func (r *Rinex) Merge(other *Rinex, p Producer) error {
	if r.Header.Type != other.Header.Type {
		return fmt.Errorf("%w: %s and %s", ErrFileTypeMismatch, r.Header.Type, other.Header.Type)
	}
	boundary, hasBoundary := other.FirstEpoch()
	if _, ok := r.FirstEpoch(); !ok {
		hasBoundary = false
	}

	r.Header.merge(other.Header)
	switch {
	case other.Record == nil:
	case r.Record == nil || r.Record.Len() == 0:
		r.Record = other.Record.clone()
	default:
		r.Record.mergeFrom(other.Record)
	}
	if rec, ok := r.Record.(ObsRecord); ok && r.Header.Obs != nil {
		for sys, codes := range rec.usedCodes() {
			r.Header.Obs.Codes[sys] = unionCodes(r.Header.Obs.Codes[sys], codes)
		}
	}
	if r.Comments == nil {
		r.Comments = Comments{}
	}
	for e, c := range other.Comments {
		r.Comments[e] = append(r.Comments[e], c...)
	}

	if hasBoundary {
		r.Header.Comments = append(r.Header.Comments, mergeComment(p, boundary.Time))
	}
	return nil
}

func (r *Rinex) IsMerged() bool {
	for _, c := range r.Header.Comments {
		if strings.Contains(c, mergeMarker) {
			return true
		}
	}
	for _, cs := range r.Comments {
		for _, c := range cs {
			if strings.Contains(c, mergeMarker) {
				return true
			}
		}
	}
	return false
}

// Epochs recorded in FILE MERGE comments, ascending, to the whole second
func (r *Rinex) MergeBoundaries() []Epoch {
	seen := map[Epoch]bool{}
	for _, c := range r.Header.Comments {
		if !strings.Contains(c, mergeMarker) {
			continue
		}
		s := strings.TrimSpace(col(c, 40, len(c)))
		t, err := time.Parse("20060102 150405", col(s, 0, 15))
		if err != nil {
			Log.WithField("comment", c).Debug("bad merge date")
			continue
		}
		seen[NewEpoch(t, EpochOk)] = true
	}
	return sortedEpochs(seen)
}

// Split the record at every merge boundary
func (r *Rinex) SplitRecord() ([]Record, error) {
	if r.Record == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRecord, r.Header.Type)
	}
	b := r.MergeBoundaries()
	if len(b) == 0 {
		return nil, ErrNotMerged
	}
	out := make([]Record, 0, len(b)+1)
	for i := 0; i <= len(b); i++ {
		lo, hi := i-1, i
		out = append(out, r.Record.subset(func(e Epoch) bool {
			if lo >= 0 && e.Time.Before(b[lo].Time) {
				return false
			}
			return hi >= len(b) || e.Time.Before(b[hi].Time)
		}))
	}
	return out, nil
}

// Records before and from the epoch
func (r *Rinex) SplitRecordAtEpoch(e Epoch) (Record, Record, error) {
	first, ok := r.FirstEpoch()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoRecord, r.Header.Type)
	}
	last, _ := r.LastEpoch()
	if e.Before(first) {
		return nil, nil, fmt.Errorf("%w: %s before %s", ErrEpochTooEarly, e, first)
	}
	if last.Before(e) {
		return nil, nil, fmt.Errorf("%w: %s after %s", ErrEpochTooLate, e, last)
	}
	a := r.Record.subset(func(x Epoch) bool { return x.Before(e) })
	b := r.Record.subset(func(x Epoch) bool { return !x.Before(e) })
	return a, b, nil
}

// Split into files: at the epoch, or at the merge boundaries when e is nil
func (r *Rinex) Split(e *Epoch) ([]*Rinex, error) {
	var parts []Record
	if e != nil {
		a, b, err := r.SplitRecordAtEpoch(*e)
		if err != nil {
			return nil, err
		}
		parts = []Record{a, b}
	} else {
		var err error
		if parts, err = r.SplitRecord(); err != nil {
			return nil, err
		}
	}
	out := make([]*Rinex, 0, len(parts))
	for _, rec := range parts {
		out = append(out, r.withRecord(rec))
	}
	return out, nil
}

// New file sharing the header, restricted to the record's epochs
func (r *Rinex) withRecord(rec Record) *Rinex {
	c := &Rinex{Header: r.Header.Clone(), Record: rec, CompressionOrder: r.CompressionOrder}
	set := epochSet(rec)
	c.Comments = r.Comments.subset(func(e Epoch) bool {
		_, ok := set[e]
		return ok
	})
	ep := rec.Epochs()
	if len(ep) > 0 {
		if c.Header.FirstEpoch != nil {
			t := ep[0].Time
			c.Header.FirstEpoch = &t
		}
		if c.Header.LastEpoch != nil {
			t := ep[len(ep)-1].Time
			c.Header.LastEpoch = &t
		}
	}
	return c
}

func epochSet(rec Record) map[Epoch]struct{} {
	m := map[Epoch]struct{}{}
	for _, e := range rec.Epochs() {
		m[e] = struct{}{}
	}
	return m
}

//-------------------------------------------------------------------
// Decimation
//-------------------------------------------------------------------

// Keep epochs selected by the filter, comments follow the record
func (r *Rinex) retain(keep func(Epoch) bool) {
	if r.Record == nil {
		return
	}
	r.Record = r.Record.subset(keep)
	set := epochSet(r.Record)
	r.Comments = r.Comments.subset(func(e Epoch) bool {
		_, ok := set[e]
		return ok
	})
}

// Walk epochs and keep those far enough from the last kept one
func (r *Rinex) thin(far func(d time.Duration) bool) {
	keep := map[Epoch]bool{}
	var last *Epoch
	for _, e := range r.Epochs() {
		if last == nil || far(e.Sub(*last)) {
			keep[e] = true
			e := e
			last = &e
		}
	}
	r.retain(func(e Epoch) bool { return keep[e] })
}

// Keep epochs spaced by more than d
func (r *Rinex) DecimateByInterval(d time.Duration) {
	if r.Record == nil {
		return
	}
	r.thin(func(x time.Duration) bool { return x > d })
	if dt, ok := modalInterval(r.okEpochs()); ok {
		r.Header.SamplingInterval = dt
	} else {
		r.Header.SamplingInterval = d
	}
}

// Keep one epoch out of n
func (r *Rinex) DecimateByRatio(n int) {
	if r.Record == nil || n <= 1 {
		return
	}
	keep := map[Epoch]bool{}
	for i, e := range r.Epochs() {
		if i%n == 0 {
			keep[e] = true
		}
	}
	r.retain(func(e Epoch) bool { return keep[e] })
	if r.Header.SamplingInterval > 0 {
		r.Header.SamplingInterval *= time.Duration(n)
	}
}

// Downsample to d. Finer than the current interval is a no-op.
func (r *Rinex) Resample(d time.Duration) {
	if r.Record == nil {
		return
	}
	if cur, ok := r.SamplingInterval(); ok && d < cur {
		return
	}
	r.thin(func(x time.Duration) bool { return x >= d })
	r.Header.SamplingInterval = d
}

// Drop observation epochs with a flag other than Ok
func (r *Rinex) Cleanup() {
	if _, ok := r.Record.(ObsRecord); !ok {
		return
	}
	r.retain(func(e Epoch) bool { return e.Flag.IsOk() })
}

//-------------------------------------------------------------------
// Writing
//-------------------------------------------------------------------

// Attach a CRINEX descriptor so the record is written compressed
func (r *Rinex) WithCrinex(version string, p Producer, now time.Time) {
	if version == "" {
		version = "3.0"
		if r.Header.Version.Major < 3 {
			version = "1.0"
		}
	}
	r.Header.Crinex = &Crinex{
		Version: version,
		Program: p.Tag(),
		Date:    now.UTC().Format("02-Jan-06 15:04"),
	}
}

// Write header and record
func (r *Rinex) Write(w io.Writer, p Producer) error {
	bw := bufio.NewWriter(w)
	for _, l := range r.Header.Lines(p) {
		if _, err := fmt.Fprintln(bw, l); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	body, err := r.bodyLines()
	if err != nil {
		return err
	}
	for _, l := range body {
		if _, err := fmt.Fprintln(bw, l); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return bw.Flush()
}

func (r *Rinex) ToFile(path string, p Producer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := r.Write(f, p); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func (r *Rinex) commentLines(e Epoch) []string {
	var out []string
	for _, c := range r.Comments[e] {
		out = append(out, headerLine(c, "COMMENT"))
	}
	return out
}

func (r *Rinex) bodyLines() ([]string, error) {
	h := r.Header
	var out []string
	switch rec := r.Record.(type) {
	case nil:
	case ObsRecord:
		var comp *Compressor
		if h.IsCompact() {
			comp = NewCompressor(h, r.CompressionOrder)
		}
		for _, e := range rec.Epochs() {
			oe := rec[e]
			cl := r.commentLines(e)
			switch {
			case comp != nil && e.Flag.IsEvent():
				out = append(out, comp.Compress(e, oe, cl)...)
			case comp != nil:
				out = append(out, comp.Compress(e, oe, nil)...)
				out = append(out, cl...)
			default:
				out = append(out, encodeObsBlock(e, oe, h, len(cl))...)
				out = append(out, cl...)
			}
		}
	case NavRecord:
		for _, e := range rec.Epochs() {
			for _, sat := range Sorted(maps.Keys(rec[e])) {
				out = append(out, encodeNavFrame(e, sat, rec[e][sat], h)...)
			}
			out = append(out, r.commentLines(e)...)
		}
	case MeteoRecord:
		if h.Meteo == nil {
			return nil, fmt.Errorf("%w: meteo record without observable codes", ErrNoRecord)
		}
		for _, e := range rec.Epochs() {
			out = append(out, encodeMeteoBlock(e, rec[e], h)...)
			out = append(out, r.commentLines(e)...)
		}
	case ClockRecord:
		for _, e := range rec.Epochs() {
			for _, typ := range clockTypes {
				m := rec[e][typ]
				systems := maps.Keys(m)
				slices.SortFunc(systems, func(a, b ClockSystem) int { return strings.Compare(a.String(), b.String()) })
				for _, sys := range systems {
					out = append(out, encodeClockLines(e, typ, sys, m[sys])...)
				}
			}
			out = append(out, r.commentLines(e)...)
		}
	case IonexRecord:
		if h.Ionex == nil {
			return nil, fmt.Errorf("%w: ionex record without grid definition", ErrNoRecord)
		}
		for i, e := range rec.Epochs() {
			out = append(out, encodeIonexMap(i+1, e, rec[e], h)...)
			out = append(out, r.commentLines(e)...)
		}
		out = append(out, headerLine("", "END OF FILE"))
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoRecord, h.Type)
	}
	return out, nil
}
