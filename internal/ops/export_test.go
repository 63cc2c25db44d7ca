package ops

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/perch/internal/config"
	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/grid"
	"github.com/hpungsan/perch/internal/store"
)

func exportConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{dir}
	return cfg
}

func TestExport_WritesEnvelope(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	out, err := Export(context.Background(), exportConfig(dir), grid.Seed(), ExportInput{Path: path})
	require.NoError(t, err)
	require.Equal(t, path, out.Path)
	require.Equal(t, 3, out.Items)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var f ExportFile
	require.NoError(t, json.Unmarshal(data, &f))
	require.True(t, f.PerchExport)
	require.Equal(t, ExportSchemaVersion, f.SchemaVersion)

	g, err := grid.Decode(f.Grid)
	require.NoError(t, err)
	require.Equal(t, encode(t, grid.Seed()), encode(t, g))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if info.Mode().Perm() != 0600 {
		t.Errorf("export permissions = %o, want 600", info.Mode().Perm())
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestExport_RejectsBadPaths(t *testing.T) {
	dir := t.TempDir()
	cfg := exportConfig(dir)

	for _, p := range []string{
		filepath.Join(dir, "backup.jsonl"),
		filepath.Join(dir, "..", "backup.json"),
		filepath.Join(t.TempDir(), "elsewhere.json"),
	} {
		_, err := Export(context.Background(), cfg, grid.Seed(), ExportInput{Path: p})
		require.True(t, errors.Is(err, errors.ErrInvalidRequest), p)
	}
}

func TestDefaultExportPath(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	p, err := defaultExportPath("../my desk", now)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(p, filepath.Join(".perch", "exports", "my desk-2026-03-04T050607.json")), p)

	p, err = defaultExportPath("", now)
	require.NoError(t, err)
	require.Equal(t, "desktop-2026-03-04T050607.json", filepath.Base(p))
}

func TestParseLayout(t *testing.T) {
	bare := `[null,{"id":"a","title":"A","url":"https://a.example"}]`
	g, err := ParseLayout([]byte(bare))
	require.NoError(t, err)
	require.Equal(t, "a", g.Get(1).ItemID())

	envelope := `{"_perch_export":true,"schema_version":"1.0","exported_at":1,"grid":` + bare + `}`
	g, err = ParseLayout([]byte("  " + envelope))
	require.NoError(t, err)
	require.Equal(t, 1, g.Count())

	for _, bad := range []string{
		`{"grid":[]}`,
		`{"_perch_export":true,"grid":[{"id":"a"},{"id":"a"}]}`,
		`[`,
		``,
	} {
		_, err := ParseLayout([]byte(bad))
		require.True(t, errors.Is(err, errors.ErrInvalidRequest), bad)
	}
}

func TestSession_ExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	path := filepath.Join(dir, "layout.json")

	s, _ := newTestSession(t, store.NewMemory(nil))
	s.cfg = exportConfig(dir)
	_, err := s.Swap(ctx, 2, 20)
	require.NoError(t, err)
	want := encode(t, s.Snapshot().Grid)

	_, err = s.Export(ctx, ExportInput{Path: path})
	require.NoError(t, err)

	_, err = s.Reset(ctx)
	require.NoError(t, err)
	require.NotEqual(t, want, encode(t, s.Snapshot().Grid))

	out, err := s.Import(ctx, ImportInput{Path: path})
	require.NoError(t, err)
	require.Equal(t, 3, out.Items)
	require.Equal(t, want, encode(t, s.Snapshot().Grid))
}

func TestSession_ImportErrors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, _ := newTestSession(t, store.NewMemory(nil))
	s.cfg = exportConfig(dir)

	_, err := s.Import(ctx, ImportInput{})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = s.Import(ctx, ImportInput{Path: filepath.Join(dir, "missing.json")})
	require.True(t, errors.Is(err, errors.ErrFileNotFound))

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[null,null]`), 0600))
	_, err = s.Import(ctx, ImportInput{Path: empty})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
