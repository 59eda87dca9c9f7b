// Package masks provides adapters for the mask-extraction collaborator: an
// HTTP client for a remote mask service and a local path-deriving fallback.
package masks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fabflow/domain/core"
	"fabflow/ports"
)

// DefaultTimeout bounds one extraction request
const DefaultTimeout = 30 * time.Second

// HTTPMaskService calls a remote mask-extraction service
type HTTPMaskService struct {
	baseURL string
	client  *http.Client
}

// NewHTTPMaskService creates a client for the given service base URL
func NewHTTPMaskService(baseURL string, timeout time.Duration) *HTTPMaskService {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPMaskService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type extractRequest struct {
	LayoutRef string          `json:"layout_ref"`
	StepID    string          `json:"step_id"`
	Layer     ports.MaskLayer `json:"layer"`
}

type extractResponse struct {
	Path string `json:"path"`
}

// ExtractMask posts the extraction request and decodes the mask reference.
// Any transport or service failure maps to ErrMaskUnavailable.
func (s *HTTPMaskService) ExtractMask(ctx context.Context, req ports.MaskRequest) (ports.MaskRef, error) {
	payload, err := json.Marshal(extractRequest{
		LayoutRef: req.LayoutRef.String(),
		StepID:    string(req.StepID),
		Layer:     req.Layer,
	})
	if err != nil {
		return ports.MaskRef{}, core.NewMaskError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/masks/extract", bytes.NewBuffer(payload))
	if err != nil {
		return ports.MaskRef{}, core.NewMaskError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return ports.MaskRef{}, core.NewMaskError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return ports.MaskRef{}, core.NewMaskError(
			fmt.Errorf("mask service status %d: %s", resp.StatusCode, string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.MaskRef{}, core.NewMaskError(err)
	}

	var decoded extractResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ports.MaskRef{}, core.NewMaskError(fmt.Errorf("parsing mask response: %w", err))
	}
	if decoded.Path == "" {
		return ports.MaskRef{}, core.NewMaskError(fmt.Errorf("mask service returned no path for %s", req.StepID))
	}
	return ports.MaskRef{Path: decoded.Path}, nil
}

// Ensure HTTPMaskService implements MaskServicePort
var _ ports.MaskServicePort = (*HTTPMaskService)(nil)
