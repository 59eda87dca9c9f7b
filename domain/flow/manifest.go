package flow

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"fabflow/domain/core"
	"fabflow/domain/process"
)

// PlanManifest is the determinism record for one plan: identical input,
// catalog, and configuration fingerprints must reproduce a byte-identical
// flow. It is written before any step output counts as final.
type PlanManifest struct {
	FlowID        core.FlowID      `json:"flow_id"`
	InputHash     core.InputHash   `json:"input_hash"`
	ConfigHash    core.ConfigHash  `json:"config_hash"`
	CatalogHash   core.CatalogHash `json:"catalog_hash"`
	EngineVersion string           `json:"engine_version"`
	Fingerprint   core.Hash        `json:"fingerprint"`
	CreatedAt     core.Timestamp   `json:"created_at"`
}

// NewPlanManifest assembles a manifest and computes its fingerprint
func NewPlanManifest(
	flowID core.FlowID,
	inputHash core.InputHash,
	configHash core.ConfigHash,
	catalogHash core.CatalogHash,
	engineVersion string,
) *PlanManifest {
	return &PlanManifest{
		FlowID:        flowID,
		InputHash:     inputHash,
		ConfigHash:    configHash,
		CatalogHash:   catalogHash,
		EngineVersion: engineVersion,
		Fingerprint:   computePlanFingerprint(inputHash, configHash, catalogHash, engineVersion),
		CreatedAt:     core.Now(),
	}
}

func computePlanFingerprint(inputHash core.InputHash, configHash core.ConfigHash,
	catalogHash core.CatalogHash, engineVersion string) core.Hash {

	data := fmt.Sprintf("input:%s|config:%s|catalog:%s|engine:%s",
		inputHash, configHash, catalogHash, engineVersion)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}

// Validate checks if the manifest is complete
func (m *PlanManifest) Validate() error {
	if core.ID(m.FlowID).IsEmpty() {
		return core.NewValidationError("plan_manifest", "flow_id cannot be empty")
	}
	if m.InputHash == "" {
		return core.NewValidationError("plan_manifest", "input_hash cannot be empty")
	}
	if m.ConfigHash == "" {
		return core.NewValidationError("plan_manifest", "config_hash cannot be empty")
	}
	if m.EngineVersion == "" {
		return core.NewValidationError("plan_manifest", "engine_version cannot be empty")
	}
	return nil
}

// ComputeInputHash fingerprints a descriptor sequence from its canonical
// JSON form. Descriptors are hashed in sequence order; the sequence is the
// identity, not a set.
func ComputeInputHash(descriptors []process.ChangeDescriptor) core.InputHash {
	data, _ := json.Marshal(descriptors)
	return core.NewInputHash(data)
}
