package ops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hpungsan/perch/internal/config"
	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/grid"
)

// MaxImportBytes bounds the size of an import file.
const MaxImportBytes = 1 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Path  string `json:"path"`
	Items int    `json:"items"`
}

// ReadLayout reads a grid from an export file. Both the export envelope and
// a bare persisted grid array are accepted.
func ReadLayout(ctx context.Context, cfg *config.Config, path string) (grid.Grid, error) {
	if err := ValidatePath(path, PathCheckRead, cfg); err != nil {
		return grid.Grid{}, err
	}
	file, err := openFileNoFollowRead(path)
	if err != nil {
		if _, ok := err.(*errors.PerchError); ok {
			return grid.Grid{}, err
		}
		return grid.Grid{}, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImportBytes+1))
	if err != nil {
		return grid.Grid{}, errors.NewInternal(err)
	}
	if len(data) > MaxImportBytes {
		return grid.Grid{}, errors.NewInvalidRequest(fmt.Sprintf("import file exceeds %d bytes", MaxImportBytes))
	}
	if err := ctx.Err(); err != nil {
		return grid.Grid{}, errors.NewInternal(err)
	}
	return ParseLayout(data)
}

// ParseLayout decodes an export envelope or a bare grid array.
func ParseLayout(data []byte) (grid.Grid, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var f ExportFile
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return grid.Grid{}, errors.NewInvalidRequest(fmt.Sprintf("invalid export file: %v", err))
		}
		if !f.PerchExport {
			return grid.Grid{}, errors.NewInvalidRequest("not a perch export file")
		}
		trimmed = f.Grid
	}
	g, err := grid.Decode(trimmed)
	if err != nil {
		return grid.Grid{}, errors.NewInvalidRequest(fmt.Sprintf("invalid layout: %v", err))
	}
	return g, nil
}

// Import replaces the desktop with the layout in a file.
func (s *Session) Import(ctx context.Context, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	g, err := ReadLayout(ctx, s.cfg, input.Path)
	if err != nil {
		return nil, err
	}
	if _, err := s.Replace(ctx, g); err != nil {
		return nil, err
	}
	return &ImportOutput{Path: input.Path, Items: g.Count()}, nil
}
