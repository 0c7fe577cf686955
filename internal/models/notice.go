package models

import "time"

type NoticeSeverity string

const (
	NoticeSeverityLow      NoticeSeverity = "low"
	NoticeSeverityMedium   NoticeSeverity = "medium"
	NoticeSeverityHigh     NoticeSeverity = "high"
	NoticeSeverityCritical NoticeSeverity = "critical"
)

func (s NoticeSeverity) Valid() bool {
	switch s {
	case NoticeSeverityLow, NoticeSeverityMedium, NoticeSeverityHigh, NoticeSeverityCritical:
		return true
	}
	return false
}

// Notice is a broadcast from a government user to a target state.
type Notice struct {
	ID          string         `json:"id" yaml:"id"`
	TargetState string         `json:"target_state" yaml:"target_state"`
	Title       string         `json:"title" yaml:"title"`
	Message     string         `json:"message" yaml:"message"`
	Severity    NoticeSeverity `json:"severity" yaml:"severity"`
	Source      string         `json:"source" yaml:"source"` // "gov" or an external feed name
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
}
