package catalog

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hello7893/romdex/internal/rdb"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupStore(t *testing.T) *rdb.Store {
	t.Helper()
	s, err := rdb.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if err := s.Migrate(); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBuild_RoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, map[string]any{
		"name":   "Foo",
		"users":  2,
		"rumble": 1,
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	list, err := Build(ctx, s, "", testLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if list.Count() != 1 {
		t.Fatalf("Count = %d, want 1", list.Count())
	}

	e := list.Entries[0]
	if e.Title != "Foo" {
		t.Errorf("Title = %q, want Foo", e.Title)
	}
	if e.MaxUsers != 2 {
		t.Errorf("MaxUsers = %d, want 2", e.MaxUsers)
	}
	if e.RumbleSupported != Supported {
		t.Errorf("RumbleSupported = %v, want supported", e.RumbleSupported)
	}

	// Every unset optional field keeps its documented default.
	if e.Description != "" || e.Publisher != "" || e.Developer != "" ||
		e.Origin != "" || e.Franchise != "" || e.EnhancementHW != "" ||
		e.EdgeReview != "" || e.CRC32 != "" || e.SHA1 != "" || e.MD5 != "" {
		t.Errorf("unset string field not at default: %+v", e)
	}
	if e.EdgeRating != 0 || e.EdgeIssue != 0 || e.FamitsuRating != 0 ||
		e.ReleaseMonth != 0 || e.ReleaseYear != 0 {
		t.Errorf("unset numeric field not at default: %+v", e)
	}
	if e.AnalogSupported != Unknown {
		t.Errorf("AnalogSupported = %v, want unknown", e.AnalogSupported)
	}
}

func TestBuild_ChecksumsHexUppercased(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, map[string]any{
		"name": "Bar",
		"crc":  []byte{0xca, 0xfe, 0xba, 0xbe},
		"sha1": []byte{0x01, 0x23},
		"md5":  []byte{0xab},
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	list, err := Build(ctx, s, "", testLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	e := list.Entries[0]
	if e.CRC32 != "CAFEBABE" {
		t.Errorf("CRC32 = %q, want CAFEBABE", e.CRC32)
	}
	if e.SHA1 != "0123" {
		t.Errorf("SHA1 = %q, want 0123", e.SHA1)
	}
	if e.MD5 != "AB" {
		t.Errorf("MD5 = %q, want AB", e.MD5)
	}
}

func TestBuild_ZeroMatchesYieldsEmptyList(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, map[string]any{"name": "Foo"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	list, err := Build(ctx, s, `name = "DoesNotExist"`, testLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if list.Count() != 0 {
		t.Errorf("Count = %d, want 0", list.Count())
	}
	if list.Entries == nil {
		t.Error("Entries is nil, want non-nil empty slice")
	}
}

func TestBuild_CompileFailure(t *testing.T) {
	s := setupStore(t)

	_, err := Build(context.Background(), s, `name ==`, testLogger())
	if err == nil {
		t.Fatal("Build with malformed query succeeded, want error")
	}
	var ce *rdb.CompileError
	if !errors.As(err, &ce) {
		t.Errorf("error = %v, want wrapped *rdb.CompileError", err)
	}

	// The store must remain usable: no handle was leaked half-open.
	if _, err := Build(context.Background(), s, "", testLogger()); err != nil {
		t.Errorf("Build after compile failure: %v", err)
	}
}

func TestBuild_SkipsNonMapRecords(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	blob, err := rdb.Encode("just a string")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := s.InsertRaw(ctx, blob); err != nil {
		t.Fatalf("InsertRaw: %v", err)
	}
	if err := s.Insert(ctx, map[string]any{"name": "Kept"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	list, err := Build(ctx, s, "", testLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if list.Count() != 1 {
		t.Fatalf("Count = %d, want 1 (non-map record must not count)", list.Count())
	}
	if list.Entries[0].Title != "Kept" {
		t.Errorf("Title = %q, want Kept", list.Entries[0].Title)
	}
}

func TestBuild_UnrecognizedKeysIgnored(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, map[string]any{
		"name":            "Foo",
		"future_feature":  "whatever",
		"another_unknown": 42,
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	list, err := Build(ctx, s, "", testLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if list.Count() != 1 || list.Entries[0].Title != "Foo" {
		t.Errorf("entries = %+v", list.Entries)
	}
}

func TestProject_DuplicateKeyLastWins(t *testing.T) {
	// Duplicate keys overwrite silently. This is deliberate policy:
	// projection onto the fixed schema keeps the final occurrence.
	rec := rdb.MapValue(
		rdb.Pair{Key: "name", Value: rdb.StringValue("First")},
		rdb.Pair{Key: "users", Value: rdb.UintValue(1)},
		rdb.Pair{Key: "name", Value: rdb.StringValue("Second")},
		rdb.Pair{Key: "users", Value: rdb.UintValue(4)},
	)
	e := project(rec)
	if e.Title != "Second" {
		t.Errorf("Title = %q, want Second (last write wins)", e.Title)
	}
	if e.MaxUsers != 4 {
		t.Errorf("MaxUsers = %d, want 4 (last write wins)", e.MaxUsers)
	}
}

func TestProject_TriStateZeroMeansUnsupported(t *testing.T) {
	rec := rdb.MapValue(
		rdb.Pair{Key: "analog", Value: rdb.UintValue(0)},
		rdb.Pair{Key: "rumble", Value: rdb.UintValue(1)},
	)
	e := project(rec)
	if e.AnalogSupported != Unsupported {
		t.Errorf("AnalogSupported = %v, want unsupported", e.AnalogSupported)
	}
	if e.RumbleSupported != Supported {
		t.Errorf("RumbleSupported = %v, want supported", e.RumbleSupported)
	}
}

func TestProject_WrongKindLeavesDefault(t *testing.T) {
	rec := rdb.MapValue(
		rdb.Pair{Key: "name", Value: rdb.UintValue(7)},
		rdb.Pair{Key: "users", Value: rdb.StringValue("two")},
		rdb.Pair{Key: "crc", Value: rdb.StringValue("not binary")},
	)
	e := project(rec)
	if e.Title != "" {
		t.Errorf("Title = %q, want default", e.Title)
	}
	if e.MaxUsers != 0 {
		t.Errorf("MaxUsers = %d, want default", e.MaxUsers)
	}
	if e.CRC32 != "" {
		t.Errorf("CRC32 = %q, want default", e.CRC32)
	}
}

func TestBuildFile_OpensAndCloses(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	s, err := rdb.Open(dbPath)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	if err := s.Insert(context.Background(), map[string]any{"name": "Foo"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	list, err := BuildFile(context.Background(), dbPath, "", testLogger())
	if err != nil {
		t.Fatalf("BuildFile: %v", err)
	}
	if list.Count() != 1 {
		t.Errorf("Count = %d, want 1", list.Count())
	}
}

func TestList_CountOnNilAndEmpty(t *testing.T) {
	var nilList *List
	if nilList.Count() != 0 {
		t.Error("nil list Count != 0")
	}
	empty := &List{Entries: []Entry{}}
	if empty.Count() != 0 {
		t.Error("empty list Count != 0")
	}
}
