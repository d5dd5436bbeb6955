package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/whiteboard/pkg/errors"
	"github.com/matzehuels/whiteboard/pkg/snapshot"
)

func TestSnapshotsCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "snaps.db")
	store, err := snapshot.NewSQLiteStore(db)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, s := range []snapshot.Snapshot{
		{SessionID: "s1", PNG: []byte("one"), Metadata: map[string]string{"prompt": "solve for x"}, CreatedAt: at},
		{SessionID: "s2", PNG: []byte("two"), Metadata: map[string]string{"prompt": "label the axes"}, CreatedAt: at.Add(time.Minute)},
	} {
		if _, err := store.Save(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	store.Close(ctx)

	path := writeConfig(t, `
[snapshots]
backend = "sqlite"
sqlite_path = "`+filepath.ToSlash(db)+`"
`)

	out, err := runCLI(t, "--config", path, "snapshots")
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	for _, want := range []string{"solve for x", "label the axes", "PROMPT"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "label the axes") > strings.Index(out, "solve for x") {
		t.Errorf("snapshots not listed newest first:\n%s", out)
	}

	dir := filepath.Join(t.TempDir(), "out")
	out, err = runCLI(t, "--config", path, "snapshots", "s1", "--save", dir)
	if err != nil {
		t.Fatalf("snapshots s1 --save: %v", err)
	}
	if strings.Contains(out, "label the axes") {
		t.Errorf("session filter ignored:\n%s", out)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("saved %d files, want 1", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one" {
		t.Errorf("saved image = %q, want one", data)
	}
}

func TestSnapshotsCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
		args []string
		code errors.Code
	}{
		{"no sqlite backend", "", nil, errors.ErrCodeUnsupported},
		{"zero limit", "[snapshots]\nbackend = \"sqlite\"\nsqlite_path = \"" + filepath.ToSlash(filepath.Join(t.TempDir(), "s.db")) + "\"\n",
			[]string{"--limit", "0"}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.cfg)
			args := append([]string{"--config", path, "snapshots"}, tt.args...)
			if _, err := runCLI(t, args...); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}
