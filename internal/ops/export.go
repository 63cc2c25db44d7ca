package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/perch/internal/config"
	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/grid"
)

// ExportSchemaVersion is written into every export file.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: ~/.perch/exports/<name>-<timestamp>.json
	Name string // file name prefix for the default path, default "desktop"
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Items      int    `json:"items"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportFile is the on-disk export envelope. Grid holds the persisted grid
// form unchanged.
type ExportFile struct {
	PerchExport   bool            `json:"_perch_export"`
	SchemaVersion string          `json:"schema_version"`
	ExportedAt    int64           `json:"exported_at"`
	Grid          json.RawMessage `json:"grid"`
}

// Export writes g to a JSON file. The file is written to a temp name and
// renamed into place, so an existing export survives a failed write.
func Export(ctx context.Context, cfg *config.Config, g grid.Grid, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(input.Name, now)
		if err != nil {
			return nil, err
		}
	}
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	gridJSON, err := grid.Encode(g)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	data, err := json.MarshalIndent(ExportFile{
		PerchExport:   true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    now.Unix(),
		Grid:          gridJSON,
	}, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}
	if err := writeFileAtomic(exportPath, data); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       exportPath,
		Items:      g.Count(),
		ExportedAt: now.Unix(),
	}, nil
}

func writeFileAtomic(path string, data []byte) error {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(suffix) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	// Windows cannot rename an open file.
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path is a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}
	success = true
	return nil
}

// defaultExportPath builds ~/.perch/exports/<name>-<timestamp>.json.
func defaultExportPath(name string, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	if name == "" {
		name = "desktop"
	}
	filename := fmt.Sprintf("%s-%s%s", SanitizeForFilename(name), now.Format("2006-01-02T150405"), LayoutExt)
	return filepath.Join(dir, filename), nil
}

// Export writes the current grid to a file.
func (s *Session) Export(ctx context.Context, input ExportInput) (*ExportOutput, error) {
	return Export(ctx, s.cfg, s.Snapshot().Grid, input)
}
