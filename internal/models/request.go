package models

import (
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryMedical     Category = "medical"
	CategoryRescue      Category = "rescue"
	CategoryWater       Category = "water"
	CategoryFood        Category = "food"
	CategoryShelter     Category = "shelter"
	CategoryElectricity Category = "electricity"
	CategoryOther       Category = "other"
)

var Categories = []Category{
	CategoryMedical,
	CategoryRescue,
	CategoryWater,
	CategoryFood,
	CategoryShelter,
	CategoryElectricity,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Urgency is ordinal: Rank orders low < medium < high < critical.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

func (u Urgency) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyHigh:
		return 3
	case UrgencyCritical:
		return 4
	default:
		return 0
	}
}

func (u Urgency) Valid() bool {
	return u.Rank() > 0
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func ParseUrgency(s string) (Urgency, error) {
	u := Urgency(strings.ToLower(strings.TrimSpace(s)))
	if !u.Valid() {
		return "", fmt.Errorf("unknown urgency %q", s)
	}
	return u, nil
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

type Request struct {
	ID          string    `json:"id" yaml:"id"`
	Requester   string    `json:"requester" yaml:"requester"`
	Category    Category  `json:"category" yaml:"category"`
	Urgency     Urgency   `json:"urgency" yaml:"urgency"`
	Status      Status    `json:"status" yaml:"status"`
	Location    string    `json:"location" yaml:"location"`
	Description string    `json:"description" yaml:"description"`
	SubmittedAt time.Time `json:"submitted_at" yaml:"submitted_at"`
}
