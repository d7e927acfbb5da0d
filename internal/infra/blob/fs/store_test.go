package fs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gardencore/internal/blob/core"
)

func TestPutGetRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	payload := []byte(`{"year":1856,"plants_sown":34}`)
	info, err := store.Put(ctx, "seasons/1856/archive.json", bytes.NewReader(payload), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"year": "1856"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(payload)) || info.ETag == "" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.Season != 1856 || info.Artifact != "archive.json" {
		t.Fatalf("season fields not set: %+v", info)
	}

	got, rc, err := store.Get(ctx, "seasons/1856/archive.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if !bytes.Equal(body, payload) {
		t.Fatalf("body = %q, want %q", body, payload)
	}
	if got.ContentType != "application/json" || got.Metadata["year"] != "1856" {
		t.Fatalf("metadata lost: %+v", got)
	}
}

func TestPutIsCreateOnly(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.Put(ctx, "seasons/1856/archive.json", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(ctx, "seasons/1856/archive.json", strings.NewReader("b"), core.PutOptions{}); err == nil {
		t.Fatal("overwrite succeeded")
	}
}

func TestListReturnsOneSeason(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"seasons/1855/archive.json", "seasons/1856/archive.json", "seasons/1856/plants.csv"} {
		if _, err := store.Put(ctx, key, strings.NewReader(key), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, 1856)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("listed %d artifacts, want 2", len(infos))
	}
	if infos[0].Key != "seasons/1856/archive.json" || infos[1].Key != "seasons/1856/plants.csv" {
		t.Fatalf("unexpected order: %v %v", infos[0].Key, infos[1].Key)
	}
}

func TestDelete(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.Put(ctx, "seasons/1856/archive.json", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	existed, err := store.Delete(ctx, "seasons/1856/archive.json")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	existed, err = store.Delete(ctx, "seasons/1856/archive.json")
	if err != nil || existed {
		t.Fatalf("repeat delete: existed=%v err=%v", existed, err)
	}
}

func TestKeySchemaEnforced(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	bad := []string{
		"",
		"plants.csv",
		"seasons/1856",
		"seasons/sixty/archive.json",
		"seasons/0/archive.json",
		"seasons/1856/a/b",
		"seasons/1856/..",
		"../escape",
		"/abs/path",
		"seasons/1856/manifest.json",
	}
	for _, key := range bad {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("key %q accepted", key)
		}
	}
}

func TestSeasonManifestOnDisk(t *testing.T) {
	root := t.TempDir()
	store, err := New(root)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.Put(ctx, "seasons/1856/plants.csv", strings.NewReader("id\n"), core.PutOptions{ContentType: "text/csv"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	// The artifact and its manifest live together in the season directory.
	if _, err := os.Stat(filepath.Join(root, "seasons", "1856", "plants.csv")); err != nil {
		t.Fatalf("artifact file: %v", err)
	}
	man, err := os.ReadFile(filepath.Join(root, "seasons", "1856", "manifest.json"))
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if !strings.Contains(string(man), "text/csv") {
		t.Fatalf("manifest missing content type: %s", man)
	}

	// A fresh store over the same root sees the manifest state.
	reopened, err := New(root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	info, err := reopened.Head(ctx, "seasons/1856/plants.csv")
	if err != nil {
		t.Fatalf("head after reopen: %v", err)
	}
	if info.ContentType != "text/csv" {
		t.Fatalf("content type = %q", info.ContentType)
	}
}
