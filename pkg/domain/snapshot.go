package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry pairs a store key with its record. The key is authoritative even
// when the record's own adhaar_id field has been overwritten.
type Entry struct {
	ID     string
	Record Record
}

// Snapshot is a point-in-time, ordered copy of the store contents. It
// serializes as a single JSON object keyed by identifier.
type Snapshot struct {
	Entries []Entry
}

// Len reports the number of records in the snapshot.
func (s Snapshot) Len() int { return len(s.Entries) }

// Lookup returns the record stored under id.
func (s Snapshot) Lookup(id string) (Record, bool) {
	for _, e := range s.Entries {
		if e.ID == id {
			return e.Record, true
		}
	}
	return Record{}, false
}

// MarshalJSON writes the snapshot as an object keyed by identifier.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.ID)
		if err != nil {
			return nil, err
		}
		val, err := e.Record.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", e.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an identifier-keyed object in document order. A
// repeated identifier keeps its first position and its last value.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	s.Entries = nil
	index := make(map[string]int)
	for dec.More() {
		id, err := readKey(dec)
		if err != nil {
			return err
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("record %s: %w", id, err)
		}
		var rec Record
		if err := rec.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("record %s: %w", id, err)
		}
		if pos, ok := index[id]; ok {
			s.Entries[pos].Record = rec
			continue
		}
		index[id] = len(s.Entries)
		s.Entries = append(s.Entries, Entry{ID: id, Record: rec})
	}
	return expectDelim(dec, '}')
}
