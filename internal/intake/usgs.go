package intake

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mr1hm/go-crisis-response/internal/models"
)

type usgsResponse struct {
	Features []usgsFeature `json:"features"`
}

type usgsFeature struct {
	ID         string         `json:"id"`
	Properties usgsProperties `json:"properties"`
}
type usgsProperties struct {
	Mag     float64 `json:"mag"`
	Place   string  `json:"place"`
	Time    int64   `json:"time"` // unix millis
	Title   string  `json:"title"`
	Tsunami int     `json:"tsunami"` // 0 or 1
}

func fetchUSGS(ctx context.Context, url string) ([]*models.Notice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := feedClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data usgsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	notices := make([]*models.Notice, 0, len(data.Features))
	for _, f := range data.Features {
		if f.ID == "" {
			continue
		}
		message := fmt.Sprintf("Magnitude %.1f earthquake, %s.", f.Properties.Mag, f.Properties.Place)
		if f.Properties.Tsunami == 1 {
			message += " Tsunami warning issued."
		}

		notices = append(notices, &models.Notice{
			ID:          "usgs_" + f.ID,
			TargetState: placeRegion(f.Properties.Place),
			Title:       f.Properties.Title,
			Message:     message,
			Severity:    quakeSeverity(f.Properties.Mag, f.Properties.Tsunami == 1),
			Source:      "usgs",
			CreatedAt:   time.UnixMilli(f.Properties.Time).UTC(),
		})
	}

	return notices, nil
}

// placeRegion takes the region from a USGS place such as
// "45 km SW of Padang, Indonesia".
func placeRegion(place string) string {
	i := strings.LastIndex(place, ",")
	if i < 0 || strings.TrimSpace(place[i+1:]) == "" {
		return "International"
	}
	return strings.TrimSpace(place[i+1:])
}

func quakeSeverity(mag float64, tsunami bool) models.NoticeSeverity {
	switch {
	case tsunami || mag >= 7:
		return models.NoticeSeverityCritical
	case mag >= 6:
		return models.NoticeSeverityHigh
	case mag >= 5:
		return models.NoticeSeverityMedium
	default:
		return models.NoticeSeverityLow
	}
}
