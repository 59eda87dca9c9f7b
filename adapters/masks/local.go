package masks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fabflow/domain/core"
	"fabflow/ports"
)

// LocalMaskService derives canonical mask file paths under a local output
// directory without contacting a mask service. The layout system drops the
// extracted GDS files at these paths out of band.
type LocalMaskService struct {
	outputDir string
}

// NewLocalMaskService creates a path-deriving mask service
func NewLocalMaskService(outputDir string) *LocalMaskService {
	if outputDir == "" {
		outputDir = "output"
	}
	return &LocalMaskService{outputDir: outputDir}
}

// ExtractMask ensures the output directory exists and returns the canonical
// mask path for the step
func (s *LocalMaskService) ExtractMask(ctx context.Context, req ports.MaskRequest) (ports.MaskRef, error) {
	if err := ctx.Err(); err != nil {
		return ports.MaskRef{}, core.NewMaskError(err)
	}
	if req.LayoutRef == "" {
		return ports.MaskRef{}, core.NewMaskError(fmt.Errorf("no layout reference for %s", req.StepID))
	}
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return ports.MaskRef{}, core.NewMaskError(err)
	}
	return ports.MaskRef{
		Path: filepath.ToSlash(filepath.Join(s.outputDir, fmt.Sprintf("mask_%s.gds", req.StepID))),
	}, nil
}

// Ensure LocalMaskService implements MaskServicePort
var _ ports.MaskServicePort = (*LocalMaskService)(nil)
