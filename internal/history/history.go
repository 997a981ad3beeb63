// Package history records the moves of a sort pass so they can be reversed.
package history

import (
	"encoding/json"
	"fmt"
)

// Kind distinguishes file moves from whole-folder moves.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// MoveRecord is one completed relocation.
type MoveRecord struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Kind        Kind   `json:"type"`
}

// UnmarshalJSON defaults a missing type to KindFile.
func (r *MoveRecord) UnmarshalJSON(data []byte) error {
	type plain MoveRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	switch p.Kind {
	case "":
		p.Kind = KindFile
	case KindFile, KindFolder:
	default:
		return fmt.Errorf("unknown move type %q", p.Kind)
	}
	*r = MoveRecord(p)
	return nil
}

// MoveHistory is the ordered, append-only log of one pass.
type MoveHistory struct {
	records []MoveRecord
}

// New returns an empty history.
func New() *MoveHistory {
	return &MoveHistory{}
}

// Append adds a record after the move it describes has happened.
func (h *MoveHistory) Append(rec MoveRecord) {
	h.records = append(h.records, rec)
}

// Records returns a copy of the records in execution order.
func (h *MoveHistory) Records() []MoveRecord {
	out := make([]MoveRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Len returns the number of records.
func (h *MoveHistory) Len() int {
	return len(h.records)
}
