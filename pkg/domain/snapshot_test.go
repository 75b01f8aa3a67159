package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSnapshotMarshalIndentKeepsEntryOrder(t *testing.T) {
	snap := Snapshot{Entries: []Entry{
		{ID: "900000000000", Record: NewRecord(Field{Key: FieldBreed, Value: "Gir"})},
		{ID: "100000000000", Record: NewRecord(Field{Key: FieldBreed, Value: "Jersey"})},
	}}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := "{\n  \"900000000000\": {\n    \"breed\": \"Gir\"\n  },\n  \"100000000000\": {\n    \"breed\": \"Jersey\"\n  }\n}"
	if string(data) != want {
		t.Fatalf("unexpected document:\n%s", data)
	}
}

func TestSnapshotUnmarshal(t *testing.T) {
	doc := `{"222222222222":{"breed":"Gir","age":3},"111111111111":{"breed":"Jersey"},"222222222222":{"breed":"Sahiwal"}}`
	var snap Snapshot
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", snap.Len())
	}
	if snap.Entries[0].ID != "222222222222" || snap.Entries[0].Record.Breed() != "Sahiwal" {
		t.Fatalf("duplicate key handling wrong: %+v", snap.Entries[0])
	}
	if _, ok := snap.Lookup("111111111111"); !ok {
		t.Fatalf("lookup failed")
	}
	if _, ok := snap.Lookup("333333333333"); ok {
		t.Fatalf("unexpected lookup hit")
	}
}

func TestSnapshotUnmarshalErrors(t *testing.T) {
	for _, doc := range []string{`[]`, `{"1":[1]}`, `{"1":{"a":}`, `{`} {
		var snap Snapshot
		if err := json.Unmarshal([]byte(doc), &snap); err == nil {
			t.Fatalf("expected error for %q", doc)
		}
	}
}

func TestSnapshotEmptyMarshal(t *testing.T) {
	data, err := json.MarshalIndent(Snapshot{}, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.TrimSpace(string(data)) != "{}" {
		t.Fatalf("expected empty object, got %s", data)
	}
}
