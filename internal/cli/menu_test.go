package cli

import (
	"context"
	"errors"
	"fmt"
	"gomata/internal/core"
	"gomata/internal/infra/persistence/jsonfile"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMenuSession(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cattle.json")
	script := strings.Join([]string{
		"1", "Hari Prasad", "Jersey", "five", "Female", "White", "",
		"1", "Hari Prasad", "Jersey", "5", "Female", "White", "Punjab",
		"9",
		"6",
		"7",
	}, "\n") + "\n"
	out, err := runCLI(t, script, "--db", db, "menu")
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	for _, want := range []string{
		"GOMATA ADHAAR SYSTEM - CATTLE IDENTIFICATION",
		"✗ Error: Age must be a number",
		"✓ SUCCESS! Cattle registered with Adhaar ID: ",
		"Invalid choice. Please try again.",
		"Total Registered Cattle: 1",
		"  Jersey: 1",
		"Thank you for using Gomata Adhaar System!",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
	id := registeredID(t, out)
	rec, ok := jsonfile.NewStore(db).Get(id)
	if !ok {
		t.Fatalf("registered record not persisted")
	}
	if loc, _ := rec.Text("location"); loc != "Punjab" {
		t.Fatalf("expected location, got %v", rec.Fields())
	}
}

func TestMenuVerifyUpdateSearchDeactivate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cattle.json")
	svc := core.NewService(jsonfile.NewStore(db))
	id, err := svc.Register(context.Background(), "Ram Kumar", "Gir", 3, "Male", "Red", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	script := strings.Join([]string{
		"2", id,
		"2", "000000000000",
		"3", "000000000000",
		"3", id, "", "",
		"3", id, "Sohan Lal", "Haryana",
		"4", "sohan lal",
		"4", "nobody",
		"5", "000000000000", "",
		"5", id, "Sold",
	}, "\n") + "\n"
	out, err := runCLI(t, script, "--db", db, "menu")
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	for _, want := range []string{
		"Owner Name: Ram Kumar",
		"Cattle not found!",
		"No updates made.",
		"✓ Information updated successfully!",
		"Found 1 cattle for owner 'sohan lal'",
		"No cattle found for owner 'nobody'",
		"✗ Cattle not found!",
		"✓ Cattle deactivated successfully!",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
	rec, _ := jsonfile.NewStore(db).Get(id)
	if rec.OwnerName() != "Sohan Lal" || rec.DeactivationReason() != "Sold" {
		t.Fatalf("unexpected record %v", rec.Fields())
	}
}

type failingPrompter struct{ err error }

func (p failingPrompter) Prompt(string) (string, error) { return "", p.err }
func (p failingPrompter) Close() error                  { return nil }

func TestMenuPropagatesInputErrors(t *testing.T) {
	boom := errors.New("tty gone")
	m := &menu{svc: core.NewService(nil), in: failingPrompter{err: boom}, out: io.Discard}
	if err := m.run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected input error, got %v", err)
	}
	m.in = failingPrompter{err: io.EOF}
	if err := m.run(context.Background()); err != nil {
		t.Fatalf("EOF should end the session cleanly, got %v", err)
	}
}

func TestServeMetrics(t *testing.T) {
	app := &App{stderr: io.Discard}
	if err := app.load(nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	reg := prometheus.NewRegistry()
	rec := core.NewPrometheusMetricsRecorder(reg)
	rec.Observe(context.Background(), "register", true, time.Millisecond)

	addr, stop, err := serveMetrics("127.0.0.1:0", reg, app)
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	defer stop()

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `gomata_operations_total{operation="register",status="success"} 1`) {
		t.Fatalf("unexpected metrics body:\n%s", body)
	}

	expvarRec := core.NewExpvarMetricsRecorder("")
	expvarRec.Observe(context.Background(), "verify", true, time.Millisecond)
	vars, err := http.Get(fmt.Sprintf("http://%s/debug/vars", addr))
	if err != nil {
		t.Fatalf("scrape vars: %v", err)
	}
	defer func() { _ = vars.Body.Close() }()
	varsBody, _ := io.ReadAll(vars.Body)
	if !strings.Contains(string(varsBody), `"`+expvarRec.Name()+`"`) || !strings.Contains(string(varsBody), `"verify"`) {
		t.Fatalf("expvar counters not served:\n%s", varsBody)
	}
}
