package cache

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/vjranagit/apmfetch/pkg/types"
)

func sampleTable() types.Table {
	return types.Table{
		{
			Metric: "HttpDispatcher",
			From:   time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			Values: map[string]float64{"calls_per_minute": 42.5},
		},
		{
			Metric: "HttpDispatcher",
			From:   time.Date(2024, 3, 15, 10, 5, 0, 0, time.UTC),
			Values: map[string]float64{"calls_per_minute": 48.0},
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "cache"))

	// Miss before any write
	_, ok, err := store.Get("abc123")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if ok {
		t.Error("Expected cache miss, got hit")
	}

	// Root directory is created on first write
	if err := store.Put("abc123", []byte("payload")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	data, ok, err := store.Get("abc123")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !ok {
		t.Fatal("Expected cache hit, got miss")
	}
	if string(data) != "payload" {
		t.Errorf("Expected payload, got %q", data)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	store := NewFileStore(t.TempDir())

	if err := store.Put("key", []byte("first")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Put("key", []byte("second")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	data, _, err := store.Get("key")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("Expected last write to win, got %q", data)
	}
}

func TestFileStorePutError(t *testing.T) {
	// A file where the root directory should be makes MkdirAll fail
	root := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(root, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(root)
	if err := store.Put("key", []byte("data")); err == nil {
		t.Error("Expected Put to fail when the root cannot be created")
	}
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadgerStore returned error: %v", err)
	}
	defer store.Close()

	_, ok, err := store.Get("missing")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if ok {
		t.Error("Expected cache miss, got hit")
	}

	if err := store.Put("fp", []byte("blob")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	data, ok, err := store.Get("fp")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !ok {
		t.Fatal("Expected cache hit, got miss")
	}
	if string(data) != "blob" {
		t.Errorf("Expected blob, got %q", data)
	}
}

func TestCacheTableRoundTrip(t *testing.T) {
	c, err := New(NewFileStore(t.TempDir()), 2)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer c.Close()

	fp := Fingerprint(baseSpec())
	table := sampleTable()

	_, ok, err := c.GetTable(fp)
	if err != nil {
		t.Fatalf("GetTable returned error: %v", err)
	}
	if ok {
		t.Error("Expected cache miss, got hit")
	}

	if err := c.PutTable(fp, table); err != nil {
		t.Fatalf("PutTable returned error: %v", err)
	}

	got, ok, err := c.GetTable(fp)
	if err != nil {
		t.Fatalf("GetTable returned error: %v", err)
	}
	if !ok {
		t.Fatal("Expected cache hit, got miss")
	}
	if !reflect.DeepEqual(got, table) {
		t.Errorf("Expected %+v, got %+v", table, got)
	}
}

func TestCacheBadgerBackend(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadgerStore returned error: %v", err)
	}

	c, err := New(store, 1)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer c.Close()

	if err := c.PutTable("fp", sampleTable()); err != nil {
		t.Fatalf("PutTable returned error: %v", err)
	}

	got, ok, err := c.GetTable("fp")
	if err != nil {
		t.Fatalf("GetTable returned error: %v", err)
	}
	if !ok {
		t.Fatal("Expected cache hit, got miss")
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(got))
	}
}

func TestCompressorRoundTrip(t *testing.T) {
	c, err := NewCompressor(3)
	if err != nil {
		t.Fatalf("NewCompressor returned error: %v", err)
	}
	defer c.Close()

	payload := []byte(`{"metric":"HttpDispatcher","values":{"calls_per_minute":42.5}}`)
	out, err := c.Decompress(c.Compress(payload))
	if err != nil {
		t.Fatalf("Decompress returned error: %v", err)
	}
	if string(out) != string(payload) {
		t.Errorf("Round trip mismatch: got %q", out)
	}
}
