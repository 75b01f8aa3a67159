package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"gomata/internal/infra/persistence/jsonfile"
	"gomata/pkg/domain"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var idPattern = regexp.MustCompile(`Adhaar ID: (\d{12})`)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func registeredID(t *testing.T, out string) string {
	t.Helper()
	m := idPattern.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no identifier in output:\n%s", out)
	}
	return m[1]
}

func TestOneShotCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cattle.json")
	out, err := runCLI(t, "", "--db", db, "register", "--owner", "Ram Kumar", "--breed", "Jersey", "--age", "5",
		"--gender", "Female", "--color", "Brown and white", "--field", "vaccinated=true", "--field", "weight=412.5")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	id := registeredID(t, out)

	out, err = runCLI(t, "", "--db", db, "verify", id)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	for _, want := range []string{"Owner Name: Ram Kumar", "Age: 5", "Vaccinated: true", "Weight: 412.5", "Status: Active"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}

	if out, err = runCLI(t, "", "--db", db, "update", id, "--owner", "Sohan Lal", "--location", "Punjab"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(out, "Information updated successfully") {
		t.Fatalf("unexpected update output %s", out)
	}
	if out, _ = runCLI(t, "", "--db", db, "update", id); !strings.Contains(out, "No updates made.") {
		t.Fatalf("expected no-op update message, got %s", out)
	}

	out, err = runCLI(t, "", "--db", db, "search", "SOHAN LAL")
	if err != nil || !strings.Contains(out, "Found 1 cattle for owner 'SOHAN LAL'") {
		t.Fatalf("search: %v\n%s", err, out)
	}

	if _, err = runCLI(t, "", "--db", db, "deactivate", id, "--reason", "Sold"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	out, err = runCLI(t, "", "--db", db, "stats", "--json")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats domain.Statistics
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalRegistered != 1 || stats.Active != 0 || stats.Inactive != 1 || stats.BreedsDistribution["Jersey"] != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	out, err = runCLI(t, "", "--db", db, "verify", "--json", id)
	if err != nil {
		t.Fatalf("verify json: %v", err)
	}
	var rec domain.Record
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec.OwnerName() != "Sohan Lal" || rec.DeactivationReason() != "Sold" || rec.Status() != domain.StatusInactive {
		t.Fatalf("unexpected record %v", rec.Fields())
	}
}

func TestUnknownIdentifierCommandsFail(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cattle.json")
	for _, args := range [][]string{
		{"verify", "123456789012"},
		{"deactivate", "123456789012"},
		{"update", "123456789012", "--owner", "X"},
		{"update", "123456789012"},
	} {
		out, err := runCLI(t, "", append([]string{"--db", db}, args...)...)
		var nf domain.ErrNotFound
		if !errors.As(err, &nf) || nf.ID != "123456789012" {
			t.Fatalf("%v: expected not found error, got %v", args, err)
		}
		if !strings.Contains(out, "Cattle not found!") {
			t.Fatalf("%v: expected not found message, got %s", args, out)
		}
	}
	if jsonfile.NewStore(db).Len() != 0 {
		t.Fatalf("unknown identifiers must not create records")
	}
}

func TestParseFields(t *testing.T) {
	fields, err := parseFields([]string{"a=1", "b=2.5", "c=true", `d="7"`, "e=Punjab", "f=", "g=inf"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []any{int64(1), 2.5, true, "7", "Punjab", "", "inf"}
	for i, f := range fields {
		if f.Value != want[i] {
			t.Fatalf("field %s: want %#v got %#v", f.Key, want[i], f.Value)
		}
	}
	if _, err := parseFields([]string{"novalue"}); err == nil {
		t.Fatalf("expected error for missing '='")
	}
	if _, err := parseFields([]string{"=x"}); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestBackupAndRestoreCommands(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "cattle.json")
	archive := filepath.Join(dir, "archive")
	base := []string{"--db", db, "--backup-dir", archive}

	out, err := runCLI(t, "", append(base, "register", "--owner", "Ram", "--breed", "Gir")...)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	first := registeredID(t, out)
	if out, err = runCLI(t, "", append(base, "backup")...); err != nil || !strings.Contains(out, "Snapshot archived: snapshots/") {
		t.Fatalf("backup: %v\n%s", err, out)
	}
	if out, err = runCLI(t, "", append(base, "backup", "list")...); err != nil || !strings.Contains(out, "snapshots/") {
		t.Fatalf("backup list: %v\n%s", err, out)
	}
	if _, err = runCLI(t, "", append(base, "register", "--owner", "Shyam", "--breed", "Sahiwal")...); err != nil {
		t.Fatalf("register: %v", err)
	}
	out, err = runCLI(t, "", append(base, "restore", "latest")...)
	if err != nil || !strings.Contains(out, "Restored 1 records from latest snapshot") {
		t.Fatalf("restore: %v\n%s", err, out)
	}
	list := jsonfile.NewStore(db).List()
	if len(list) != 1 || list[0].ID() != first {
		t.Fatalf("restore not persisted")
	}
}

func TestBackupPruneCommand(t *testing.T) {
	dir := t.TempDir()
	base := []string{"--db", filepath.Join(dir, "cattle.json"), "--backup-dir", filepath.Join(dir, "archive")}
	for range 3 {
		if out, err := runCLI(t, "", append(base, "backup")...); err != nil {
			t.Fatalf("backup: %v\n%s", err, out)
		}
	}
	out, err := runCLI(t, "", append(base, "backup", "prune", "--keep", "1")...)
	if err != nil || !strings.Contains(out, "Pruned 2 snapshots, kept at most 1") || strings.Count(out, "Deleted snapshots/") != 2 {
		t.Fatalf("prune: %v\n%s", err, out)
	}
	out, err = runCLI(t, "", append(base, "backup", "list")...)
	if err != nil || strings.Count(out, "snapshots/") != 1 {
		t.Fatalf("list after prune: %v\n%s", err, out)
	}
}

func TestBackupListEmpty(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "", "--db", filepath.Join(dir, "c.json"), "--backup-dir", filepath.Join(dir, "a"), "backup", "list")
	if err != nil || !strings.Contains(out, "No snapshots archived.") {
		t.Fatalf("unexpected: %v %s", err, out)
	}
}

func TestTraceFlagWritesSpans(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cattle.json")
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), []string{"--db", db, "--trace", "register", "--owner", "Ram"}, strings.NewReader(""), &out, &errOut)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !strings.Contains(errOut.String(), `"operation":"register"`) {
		t.Fatalf("expected trace span on stderr, got %s", errOut.String())
	}
}

func TestUnknownStorageDriver(t *testing.T) {
	if _, err := runCLI(t, "", "--storage", "floppy", "stats"); err == nil || !strings.Contains(err.Error(), "unknown storage driver") {
		t.Fatalf("expected driver error, got %v", err)
	}
}
