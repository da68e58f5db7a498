package domain

import (
	"time"

	"github.com/google/uuid"
)

// SafetyIncident stores the sensitive fields (involved parties, witnesses,
// description) as ciphertext. Decryption happens at read time, best-effort.
type SafetyIncident struct {
	ID                       uuid.UUID  `json:"id"`
	ReporterID               uuid.UUID  `json:"reporter_id"`
	CoordinatorID            *uuid.UUID `json:"coordinator_id,omitempty"`
	EncryptedInvolvedParties string     `json:"-"`
	EncryptedWitnesses       string     `json:"-"`
	EncryptedDescription     string     `json:"-"`
	OccurredAt               time.Time  `json:"occurred_at"`
	ReportedAt               time.Time  `json:"reported_at"`
}
