package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"planforge/internal/logging"
)

func TestWatcher_ReloadsOnEdit(t *testing.T) {
	dir := t.TempDir()
	limits := `tax_year: 2031
employee_401k: 25000
catch_up_401k: 8000
ira: 7500
catch_up_ira: 1000
hsa_self_only: 4600
hsa_family: 9000
hsa_catch_up: 1000
hsa_catch_up_age: 55
cesa_per_child: 2000
sep_percent: 0.25
solo_employer_percent: 0.20
total_401k: 72000
`

	w, err := Watch(dir, logging.Nop())
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "limits.yaml"), []byte(limits), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-w.Catalogs():
		if c.Limits.TaxYear != 2031 {
			t.Errorf("expected reloaded limit year 2031, got %d", c.Limits.TaxYear)
		}
		if c.Limits.Employee401k != 25000 {
			t.Errorf("expected updated employee cap, got %.0f", c.Limits.Employee401k)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for catalog reload")
	}
}

func TestWatcher_KeepsServingAfterBadEdit(t *testing.T) {
	dir := t.TempDir()
	w, err := Watch(dir, logging.Nop())
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	// A file that fails validation must not surface a catalog.
	bad := "profiles:\n  - {id: 1, name: Only One}\n"
	if err := os.WriteFile(filepath.Join(dir, "profiles.yaml"), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-w.Catalogs():
		t.Fatalf("expected no catalog from invalid edit, got tax year %d", c.TaxYear)
	case <-time.After(500 * time.Millisecond):
	}
}
