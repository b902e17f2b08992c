package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()

	store, err := NewBoltStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBoltStore() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestObjectRecordRoundTrip(t *testing.T) {
	store := newTestStore(t)

	rec := &ObjectRecord{
		Type:      "Host",
		FullName:  "web01",
		Path:      "/var/lib/vigil/packages/_api/s1/conf.d/hosts/web01.conf",
		Version:   1724961600.25,
		CreatedAt: time.Now(),
	}
	if err := store.PutObject(rec); err != nil {
		t.Fatalf("PutObject() failed: %v", err)
	}

	got, err := store.GetObject("Host", "web01")
	if err != nil {
		t.Fatalf("GetObject() failed: %v", err)
	}
	if got.Path != rec.Path || got.Version != rec.Version {
		t.Errorf("GetObject() = %+v", got)
	}

	if _, err := store.GetObject("Host", "nope"); err == nil {
		t.Errorf("GetObject() of missing record succeeded")
	}
}

func TestDeleteObjectRecord(t *testing.T) {
	store := newTestStore(t)

	rec := &ObjectRecord{Type: "Host", FullName: "web01", Path: "/x"}
	if err := store.PutObject(rec); err != nil {
		t.Fatalf("PutObject() failed: %v", err)
	}
	if err := store.DeleteObject("Host", "web01"); err != nil {
		t.Fatalf("DeleteObject() failed: %v", err)
	}
	if _, err := store.GetObject("Host", "web01"); err == nil {
		t.Errorf("record survived delete")
	}

	// Idempotent
	if err := store.DeleteObject("Host", "web01"); err != nil {
		t.Errorf("second DeleteObject() failed: %v", err)
	}
}

func TestListObjects(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"a", "b", "c"} {
		if err := store.PutObject(&ObjectRecord{Type: "Host", FullName: name, Path: "/" + name}); err != nil {
			t.Fatalf("PutObject() failed: %v", err)
		}
	}

	recs, err := store.ListObjects()
	if err != nil {
		t.Fatalf("ListObjects() failed: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("ListObjects() returned %d records", len(recs))
	}
}

func TestListMissingFiles(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()

	present := filepath.Join(dir, "present.conf")
	if err := os.WriteFile(present, []byte("object Host \"a\" {\n}\n"), 0644); err != nil {
		t.Fatalf("writing fixture failed: %v", err)
	}

	if err := store.PutObject(&ObjectRecord{Type: "Host", FullName: "a", Path: present}); err != nil {
		t.Fatalf("PutObject() failed: %v", err)
	}
	if err := store.PutObject(&ObjectRecord{Type: "Host", FullName: "b", Path: filepath.Join(dir, "gone.conf")}); err != nil {
		t.Fatalf("PutObject() failed: %v", err)
	}

	missing, err := store.ListMissingFiles()
	if err != nil {
		t.Fatalf("ListMissingFiles() failed: %v", err)
	}
	if len(missing) != 1 || missing[0].FullName != "b" {
		t.Errorf("ListMissingFiles() = %+v", missing)
	}
}

func TestPackageRecords(t *testing.T) {
	store := newTestStore(t)

	if err := store.PutPackage(&PackageRecord{Name: "_api", ActiveStage: "s1", UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("PutPackage() failed: %v", err)
	}

	recs, err := store.ListPackages()
	if err != nil {
		t.Fatalf("ListPackages() failed: %v", err)
	}
	if len(recs) != 1 || recs[0].ActiveStage != "s1" {
		t.Errorf("ListPackages() = %+v", recs)
	}
}
