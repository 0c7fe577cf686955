package models

import "github.com/shopspring/decimal"

type AidItem struct {
	Item     string  `json:"item" yaml:"item"`
	Quantity string  `json:"quantity" yaml:"quantity"`
	Urgency  Urgency `json:"urgency" yaml:"urgency"`
	Funding  string  `json:"funding,omitempty" yaml:"funding,omitempty"` // free text, e.g. "$2.5M" or "1200000"
}

// AidRequests maps a country name to its requested line items.
type AidRequests map[string][]AidItem

type Crisis struct {
	Label    string `json:"label" yaml:"label"`
	Severity int    `json:"severity" yaml:"severity"`
}

type StateDetail struct {
	Name               string          `json:"name" yaml:"name"`
	Causes             []string        `json:"causes" yaml:"causes"`
	Crises             []Crisis        `json:"crises" yaml:"crises"`
	FundingRequirement decimal.Decimal `json:"funding_requirement" yaml:"funding_requirement"`
	Needs              []string        `json:"needs" yaml:"needs"`
}
