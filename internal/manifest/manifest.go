package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File names written alongside each output collection.
const (
	PairsFileName     = "manifest_pairs.tsv"
	LeftoversFileName = "manifest_leftovers.tsv"
)

// Action is the decision recorded for a leftover staging outcome.
type Action string

const (
	ActionCopied  Action = "COPIED"
	ActionLinked  Action = "LINKED"
	ActionSkipDup Action = "SKIP_DUP"
	ActionError   Action = "ERROR"
)

// PairRow is one pair staging decision. Rows are immutable once appended.
type PairRow struct {
	PairID    string
	MatchType string
	Basename  string
	StillSrc  string
	VideoSrc  string
	StillOut  string
	VideoOut  string
}

// LeftoverRow is one leftover staging decision.
type LeftoverRow struct {
	LeftID      string
	Action      Action
	Src         string
	OutOrReason string
}

var (
	pairHeader     = []string{"pair_id", "match_type", "basename", "still_src", "video_src", "still_out", "video_out"}
	leftoverHeader = []string{"left_id", "action", "src", "out_or_reason"}
)

// Log accumulates both manifests for a run, optionally streaming rows to
// tab-separated files as they are appended so an aborted run keeps every
// completed decision. Append order is creation order. Safe for concurrent
// appends.
type Log struct {
	mu           sync.Mutex
	pairRows     []PairRow
	leftoverRows []LeftoverRow
	pairsOut     io.WriteCloser
	leftoversOut io.WriteCloser
}

// NewLog returns an in-memory log that writes nothing to disk. Dry runs
// use it so decisions are still fully recorded.
func NewLog() *Log {
	return &Log{}
}

// NewFileLog opens the two manifest files inside their collection
// directories and writes the header rows immediately.
func NewFileLog(pairsDir, leftoversDir string) (*Log, error) {
	pairsOut, err := os.OpenFile(filepath.Join(pairsDir, PairsFileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open pair manifest: %w", err)
	}
	leftoversOut, err := os.OpenFile(filepath.Join(leftoversDir, LeftoversFileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		_ = pairsOut.Close()
		return nil, fmt.Errorf("open leftover manifest: %w", err)
	}

	log := &Log{pairsOut: pairsOut, leftoversOut: leftoversOut}
	if err := writeRecord(pairsOut, pairHeader); err != nil {
		_ = log.Close()
		return nil, err
	}
	if err := writeRecord(leftoversOut, leftoverHeader); err != nil {
		_ = log.Close()
		return nil, err
	}
	return log, nil
}

// AppendPair records a pair decision and, when file-backed, writes the row
// through immediately.
func (l *Log) AppendPair(row PairRow) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pairRows = append(l.pairRows, row)
	if l.pairsOut == nil {
		return nil
	}
	return writeRecord(l.pairsOut, []string{
		row.PairID, row.MatchType, row.Basename,
		row.StillSrc, row.VideoSrc, row.StillOut, row.VideoOut,
	})
}

// AppendLeftover records a leftover decision.
func (l *Log) AppendLeftover(row LeftoverRow) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.leftoverRows = append(l.leftoverRows, row)
	if l.leftoversOut == nil {
		return nil
	}
	return writeRecord(l.leftoversOut, []string{
		row.LeftID, string(row.Action), row.Src, row.OutOrReason,
	})
}

// PairRows returns the accumulated pair decisions in append order.
func (l *Log) PairRows() []PairRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows := make([]PairRow, len(l.pairRows))
	copy(rows, l.pairRows)
	return rows
}

// LeftoverRows returns the accumulated leftover decisions in append order.
func (l *Log) LeftoverRows() []LeftoverRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows := make([]LeftoverRow, len(l.leftoverRows))
	copy(rows, l.leftoverRows)
	return rows
}

// Close flushes and closes any file-backed outputs.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var firstErr error
	for _, closer := range []io.WriteCloser{l.pairsOut, l.leftoversOut} {
		if closer == nil {
			continue
		}
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.pairsOut = nil
	l.leftoversOut = nil
	return firstErr
}

// writeRecord emits one tab-separated line. Tabs and newlines inside a
// field would corrupt the table, so they are replaced with spaces.
func writeRecord(w io.Writer, fields []string) error {
	cleaned := make([]string, len(fields))
	for i, field := range fields {
		cleaned[i] = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(field)
	}
	_, err := io.WriteString(w, strings.Join(cleaned, "\t")+"\n")
	return err
}
