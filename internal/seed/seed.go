// Package seed provides the mock data the dashboards run on, either the
// built-in set or one loaded from a YAML file.
package seed

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mr1hm/go-crisis-response/internal/models"
)

type Dataset struct {
	Requests    []models.Request        `yaml:"requests"`
	AidRequests models.AidRequests      `yaml:"aid_requests"`
	States      []models.StateDetail    `yaml:"states"`
	Regions     []models.RegionOverview `yaml:"regions"`
	Resources   []models.Resource       `yaml:"resources"`
	Alerts      []models.Alert          `yaml:"alerts"`
	Notices     []models.Notice         `yaml:"notices"`
}

// Load reads a dataset from path. An empty path yields the built-in data.
func Load(path string, now time.Time) (*Dataset, error) {
	if path == "" {
		return Default(now), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading seed file: %w", err)
	}

	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("error decoding seed file %s: %w", path, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}
	if ds.AidRequests == nil {
		ds.AidRequests = models.AidRequests{}
	}
	return &ds, nil
}

func (ds *Dataset) Validate() error {
	seen := make(map[string]bool, len(ds.Requests))
	for i, r := range ds.Requests {
		if r.ID == "" {
			return fmt.Errorf("request %d: missing id", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("request %s: duplicate id", r.ID)
		}
		seen[r.ID] = true
		if !r.Category.Valid() {
			return fmt.Errorf("request %s: unknown category %q", r.ID, r.Category)
		}
		if !r.Urgency.Valid() {
			return fmt.Errorf("request %s: unknown urgency %q", r.ID, r.Urgency)
		}
		if !r.Status.Valid() {
			return fmt.Errorf("request %s: unknown status %q", r.ID, r.Status)
		}
	}
	for country, items := range ds.AidRequests {
		for _, item := range items {
			if !item.Urgency.Valid() {
				return fmt.Errorf("aid request %s/%s: unknown urgency %q", country, item.Item, item.Urgency)
			}
		}
	}
	for _, r := range ds.Regions {
		if !r.Scope.Valid() {
			return fmt.Errorf("region %s: unknown scope %q", r.Name, r.Scope)
		}
	}
	return nil
}

// Default returns the built-in mock data with timestamps relative to now.
func Default(now time.Time) *Dataset {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }

	return &Dataset{
		Requests: []models.Request{
			{ID: "REQ001", Requester: "Anita Sharma", Category: models.CategoryMedical, Urgency: models.UrgencyCritical, Status: models.StatusApproved, Location: "North Delhi", Description: "Need oxygen cylinder for elderly patient", SubmittedAt: ago(time.Hour)},
			{ID: "REQ002", Requester: "Ravi Kumar", Category: models.CategoryFood, Urgency: models.UrgencyMedium, Status: models.StatusPending, Location: "East Kolkata", Description: "Request for food supplies for family of 4", SubmittedAt: ago(3 * time.Hour)},
			{ID: "REQ003", Requester: "Meera Iyer", Category: models.CategoryShelter, Urgency: models.UrgencyHigh, Status: models.StatusRejected, Location: "Central Mumbai", Description: "Temporary accommodation needed", SubmittedAt: ago(24 * time.Hour)},
			{ID: "REQ004", Requester: "Imran Khan", Category: models.CategoryWater, Urgency: models.UrgencyHigh, Status: models.StatusPending, Location: "Patna, Bihar", Description: "No clean drinking water for three days", SubmittedAt: ago(5 * time.Hour)},
			{ID: "REQ005", Requester: "Lakshmi Rao", Category: models.CategoryElectricity, Urgency: models.UrgencyLow, Status: models.StatusPending, Location: "Sector 5, South Bangalore", Description: "Power outage affecting dialysis machine charging", SubmittedAt: ago(6 * time.Hour)},
			{ID: "REQ006", Requester: "Suresh Yadav", Category: models.CategoryRescue, Urgency: models.UrgencyCritical, Status: models.StatusPending, Location: "Darbhanga, Bihar", Description: "Family stranded on rooftop after flooding", SubmittedAt: ago(30 * time.Minute)},
		},
		AidRequests: models.AidRequests{
			"Ukraine": {
				{Item: "Winter shelter kits", Quantity: "20,000 units", Urgency: models.UrgencyCritical, Funding: "$4.2M"},
				{Item: "Trauma medical supplies", Quantity: "500 pallets", Urgency: models.UrgencyHigh, Funding: "$1.8M"},
			},
			"Afghanistan": {
				{Item: "Emergency food rations", Quantity: "1.2M meals", Urgency: models.UrgencyCritical, Funding: "$3.5M"},
				{Item: "Vaccines", Quantity: "300,000 doses", Urgency: models.UrgencyHigh},
			},
			"Yemen": {
				{Item: "Water purification tablets", Quantity: "2M tablets", Urgency: models.UrgencyCritical, Funding: "$600k"},
				{Item: "Cholera treatment kits", Quantity: "1,000 kits", Urgency: models.UrgencyHigh, Funding: "$950,000"},
			},
			"Syria": {
				{Item: "Blankets", Quantity: "50,000", Urgency: models.UrgencyMedium, Funding: "$250k"},
			},
		},
		States: []models.StateDetail{
			{
				Name:               "Uttar Pradesh",
				Causes:             []string{"Monsoon flooding", "Crop failure"},
				Crises:             []models.Crisis{{Label: "Flood displacement", Severity: 3}, {Label: "Food insecurity", Severity: 2}},
				FundingRequirement: decimal.NewFromInt(12_500_000),
				Needs:              []string{"Relief camps", "Dry rations", "Boats"},
			},
			{
				Name:               "Maharashtra",
				Causes:             []string{"Drought"},
				Crises:             []models.Crisis{{Label: "Water scarcity", Severity: 2}},
				FundingRequirement: decimal.NewFromInt(4_000_000),
				Needs:              []string{"Water tankers"},
			},
			{
				Name:               "Bihar",
				Causes:             []string{"Kosi river flooding", "Embankment breach"},
				Crises:             []models.Crisis{{Label: "Flood displacement", Severity: 4}, {Label: "Waterborne disease", Severity: 3}},
				FundingRequirement: decimal.NewFromInt(18_000_000),
				Needs:              []string{"Rescue boats", "Medical teams", "Clean water", "Shelter"},
			},
			{
				Name:               "West Bengal",
				Causes:             []string{"Cyclone landfall"},
				Crises:             []models.Crisis{{Label: "Power outage", Severity: 2}, {Label: "Coastal damage", Severity: 3}},
				FundingRequirement: decimal.NewFromInt(9_750_000),
				Needs:              []string{"Generators", "Roof sheeting"},
			},
		},
		Regions: []models.RegionOverview{
			{Name: "Ukraine", Scope: models.ScopeInternational, Population: "44M", Indicators: indicators("starvation", "critical", "health", "poor", "living", "poor"), Alerts: 14},
			{Name: "Afghanistan", Scope: models.ScopeInternational, Population: "39M", Indicators: indicators("starvation", "critical", "health", "critical", "living", "critical"), Alerts: 15},
			{Name: "Yemen", Scope: models.ScopeInternational, Population: "30M", Indicators: indicators("starvation", "critical", "health", "critical", "living", "poor"), Alerts: 12},
			{Name: "Syria", Scope: models.ScopeInternational, Population: "18M", Indicators: indicators("starvation", "moderate", "health", "poor", "living", "poor"), Alerts: 6},

			{Name: "Uttar Pradesh", Scope: models.ScopeNational, Population: "231M", Indicators: indicators("conditions", "moderate"), Alerts: 12},
			{Name: "Maharashtra", Scope: models.ScopeNational, Population: "123M", Indicators: indicators("conditions", "stable"), Alerts: 3},
			{Name: "Bihar", Scope: models.ScopeNational, Population: "128M", Indicators: indicators("conditions", "poor"), Alerts: 8},
			{Name: "West Bengal", Scope: models.ScopeNational, Population: "102M", Indicators: indicators("conditions", "moderate"), Alerts: 5},

			{Name: "Central Mumbai", Scope: models.ScopeLocal, Population: "2.1M", Indicators: indicators("status", "stable", "resources", "adequate"), Alerts: 1},
			{Name: "North Delhi", Scope: models.ScopeLocal, Population: "1.8M", Indicators: indicators("status", "moderate", "resources", "limited"), Alerts: 4},
			{Name: "East Kolkata", Scope: models.ScopeLocal, Population: "1.5M", Indicators: indicators("status", "poor", "resources", "critical"), Alerts: 7},
			{Name: "South Bangalore", Scope: models.ScopeLocal, Population: "1.2M", Indicators: indicators("status", "stable", "resources", "adequate"), Alerts: 0},
		},
		Resources: []models.Resource{
			{Type: "Medical/Oxygen", Availability: models.AvailabilityAvailable, Count: "12 Units", Distance: "2.3 km away"},
			{Type: "Medicine", Availability: models.AvailabilityLimited, Count: "3 Types", Distance: "1.8 km away"},
			{Type: "Food Supply", Availability: models.AvailabilityAvailable, Count: "Adequate", Distance: "0.5 km away"},
			{Type: "Water", Availability: models.AvailabilityAvailable, Count: "Clean Supply", Distance: "1.2 km away"},
			{Type: "Shelter", Availability: models.AvailabilityLimited, Count: "5 Beds", Distance: "3.1 km away"},
			{Type: "Electricity", Availability: models.AvailabilityUnavailable, Count: "Outage", Distance: "Area-wide"},
			{Type: "Ambulance", Availability: models.AvailabilityAvailable, Count: "2 Available", Distance: "5 min ETA"},
			{Type: "Hospital", Availability: models.AvailabilityAvailable, Count: "3 Facilities", Distance: "4.2 km away"},
		},
		Alerts: []models.Alert{
			{Type: "Medical Emergency", Message: "Blood donation drive at Central Hospital", Priority: "medium", CreatedAt: ago(2 * time.Hour)},
			{Type: "Water Distribution", Message: "Clean water available at Community Center", Priority: "low", CreatedAt: ago(4 * time.Hour)},
			{Type: "Power Outage", Message: "Electricity restored in Sector 5", Priority: "medium", CreatedAt: ago(6 * time.Hour)},
		},
		Notices: []models.Notice{
			{ID: "NOT001", TargetState: "Bihar", Title: "Evacuation advisory", Message: "Move to higher ground along the Kosi embankment.", Severity: models.NoticeSeverityCritical, Source: "gov", CreatedAt: ago(90 * time.Minute)},
		},
	}
}

// indicators builds label/level pairs from alternating arguments.
func indicators(pairs ...string) []models.Indicator {
	out := make([]models.Indicator, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.Indicator{Label: pairs[i], Level: pairs[i+1]})
	}
	return out
}
