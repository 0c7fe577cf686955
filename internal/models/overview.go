package models

import "time"

type Scope string

const (
	ScopeInternational Scope = "international"
	ScopeNational      Scope = "national"
	ScopeLocal         Scope = "local"
)

func (s Scope) Valid() bool {
	return s == ScopeInternational || s == ScopeNational || s == ScopeLocal
}

// Indicator is one labelled condition of a region, e.g. "starvation": "critical".
type Indicator struct {
	Label string `json:"label" yaml:"label"`
	Level string `json:"level" yaml:"level"`
}

type RegionOverview struct {
	Name       string      `json:"name" yaml:"name"`
	Scope      Scope       `json:"scope" yaml:"scope"`
	Population string      `json:"population" yaml:"population"`
	Indicators []Indicator `json:"indicators" yaml:"indicators"`
	Alerts     int         `json:"alerts" yaml:"alerts"`
}

type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityLimited     Availability = "limited"
	AvailabilityUnavailable Availability = "unavailable"
)

type Resource struct {
	Type         string       `json:"type" yaml:"type"`
	Availability Availability `json:"availability" yaml:"availability"`
	Count        string       `json:"count" yaml:"count"`
	Distance     string       `json:"distance" yaml:"distance"`
}

type Alert struct {
	Type      string    `json:"type" yaml:"type"`
	Message   string    `json:"message" yaml:"message"`
	Priority  string    `json:"priority" yaml:"priority"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
