package cache

import (
	"testing"
	"time"

	"github.com/use-agent/sitescan/models"
)

func TestKey_Normalizes(t *testing.T) {
	a := Key(models.Business{Website: "https://Acme.example/", Category: "Plumber", Name: "Acme"})
	b := Key(models.Business{Website: " https://acme.example/ ", Category: "plumber", Name: "ACME"})
	if a != b {
		t.Error("keys differ only by case and space but should match")
	}
	c := Key(models.Business{Website: "https://acme.example/", Category: "plumber", Name: "Other"})
	if a == c {
		t.Error("different names should give different keys")
	}
}

func TestGetSet(t *testing.T) {
	c := New(10, time.Hour, time.Hour)
	defer c.Stop()

	p := &models.Profile{Business: models.Business{Name: "Acme"}}
	c.Set("k", p)

	if _, ok := c.Get("k", 0); ok {
		t.Error("maxAge 0 should never hit")
	}
	got, ok := c.Get("k", time.Minute)
	if !ok || got != p {
		t.Errorf("Get = %v, %v", got, ok)
	}
	if _, ok := c.Get("missing", time.Minute); ok {
		t.Error("unexpected hit for missing key")
	}

	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k", time.Millisecond); ok {
		t.Error("entry older than maxAge should miss")
	}
}

func TestSet_EvictsOldest(t *testing.T) {
	c := New(2, time.Hour, time.Hour)
	defer c.Stop()

	c.Set("first", &models.Profile{})
	time.Sleep(2 * time.Millisecond)
	c.Set("second", &models.Profile{})
	time.Sleep(2 * time.Millisecond)
	c.Set("third", &models.Profile{})

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if _, ok := c.Get("first", time.Hour); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("third", time.Hour); !ok {
		t.Error("newest entry missing")
	}

	// Overwriting an existing key never evicts.
	c.Set("second", &models.Profile{})
	if c.Len() != 2 {
		t.Errorf("Len = %d after overwrite, want 2", c.Len())
	}
}

func TestSweep(t *testing.T) {
	c := New(10, time.Minute, time.Hour)
	defer c.Stop()

	c.Set("k", &models.Profile{})
	c.sweep(time.Now())
	if c.Len() != 1 {
		t.Fatal("fresh entry swept")
	}
	c.sweep(time.Now().Add(2 * time.Minute))
	if c.Len() != 0 {
		t.Error("expired entry not swept")
	}
	c.Stop()
}
