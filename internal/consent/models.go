package consent

import (
	"time"

	id "veil/pkg/domain"
)

// HistoryEntry records a single consent level change. History is append-only;
// the current level always equals the last entry's level.
type HistoryEntry struct {
	Level     id.ConsentLevel `json:"level"`
	Reason    string          `json:"reason"`
	Actor     string          `json:"actor"`
	Timestamp time.Time       `json:"timestamp"`
}

// ConsentRecord captures a subject's consent state. Records are never
// physically deleted; withdrawal is a state, actual data purge is delegated
// externally.
type ConsentRecord struct {
	SubjectID             string          `json:"subject_id"`
	Level                 id.ConsentLevel `json:"level"`
	History               []HistoryEntry  `json:"history"`
	WithdrawalRequested   bool            `json:"withdrawal_requested"`
	WithdrawalRequestedAt *time.Time      `json:"withdrawal_requested_at,omitempty"`
	DataPurgeScheduled    bool            `json:"data_purge_scheduled"`
	PurgeScheduledFor     *time.Time      `json:"purge_scheduled_for,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// WithdrawalEffective reports whether withdrawal blocks identifiable access
// at the given instant. Immediate withdrawals block at once; otherwise the
// grace period must have elapsed.
func (r *ConsentRecord) WithdrawalEffective(now time.Time) bool {
	if !r.WithdrawalRequested {
		return false
	}
	if r.DataPurgeScheduled {
		return true
	}
	return r.PurgeScheduledFor != nil && !now.Before(*r.PurgeScheduledFor)
}

// ValidationRequest describes the access a caller wants to perform against a
// subject's data.
type ValidationRequest struct {
	ActivityType string   `json:"activity_type"`
	DataTypes    []string `json:"data_types"`
	Purpose      string   `json:"purpose"`
}

// ValidationResult is the outcome of a pure consent check. Limitations name
// the reasons access is narrowed or denied.
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Limitations []string `json:"limitations,omitempty"`
}

// requiredLevelByDataType is the single source of truth for which consent
// level each data type demands. Unknown data types conservatively require
// full consent.
var requiredLevelByDataType = map[string]id.ConsentLevel{
	"session_metadata":  id.ConsentLevelMinimal,
	"usage_metrics":     id.ConsentLevelMinimal,
	"technique_usage":   id.ConsentLevelMinimal,
	"emotional_metrics": id.ConsentLevelFull,
	"clinical_notes":    id.ConsentLevelFull,
	"demographics":      id.ConsentLevelFull,
	"crisis_flags":      id.ConsentLevelFull,
	"conditions":        id.ConsentLevelFull,
}

// RequiredLevel returns the minimum consent level for a data type.
func RequiredLevel(dataType string) id.ConsentLevel {
	if lvl, ok := requiredLevelByDataType[dataType]; ok {
		return lvl
	}
	return id.ConsentLevelFull
}
