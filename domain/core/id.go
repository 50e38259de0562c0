package core

import (
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// RunID identifies one invocation of the search or permutation driver.
	RunID ID
	// FeatureLabel identifies a row of the binary feature matrix.
	FeatureLabel ID
	// SampleLabel identifies a column of the binary feature matrix / s.
	SampleLabel ID
)

// String conversions for domain IDs
func (id RunID) String() string        { return ID(id).String() }
func (id FeatureLabel) String() string { return ID(id).String() }
func (id SampleLabel) String() string  { return ID(id).String() }

// NewRunID creates a new unique RunID.
func NewRunID() RunID { return RunID(NewID()) }

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", NewValidationError("run_id", "cannot be empty")
	}
	return RunID(s), nil
}

// Artifact represents any persisted output of a run (search record,
// permutation record, ...). The core never writes these itself; an
// external adapter (adapters/store) is responsible for persistence.
type Artifact struct {
	ID        ID           `json:"id"`
	Kind      ArtifactKind `json:"kind"`
	Payload   interface{}  `json:"payload"`
	CreatedAt Timestamp    `json:"created_at"`
}

// ArtifactKind defines types of artifacts the CLI/driver surface can emit.
type ArtifactKind string

const (
	ArtifactSearchRecord      ArtifactKind = "search_record"
	ArtifactPermutationRecord ArtifactKind = "permutation_record"
	ArtifactTopNResult        ArtifactKind = "topn_result"
)
