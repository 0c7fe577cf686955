package intake

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mr1hm/go-crisis-response/internal/models"
)

type gdacsRSS struct {
	Channel gdacsChannel `xml:"channel"`
}
type gdacsChannel struct {
	Items []gdacsItem `xml:"item"`
}
type gdacsItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	EventType   string `xml:"http://www.gdacs.org eventtype"`
	AlertLevel  string `xml:"http://www.gdacs.org alertlevel"`
	EventID     string `xml:"http://www.gdacs.org eventid"`
	Country     string `xml:"http://www.gdacs.org country"`
}

func fetchGDACS(ctx context.Context, url string) ([]*models.Notice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := feedClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data gdacsRSS
	if err := xml.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	notices := make([]*models.Notice, 0, len(data.Channel.Items))
	for _, item := range data.Channel.Items {
		if item.EventID == "" {
			continue
		}
		timestamp, err := time.Parse(time.RFC1123, item.PubDate)
		if err != nil {
			slog.Warn("GDACS timestamp parsing failed", "id", item.EventID, "error", err.Error())
			timestamp = time.Now()
		}

		target := item.Country
		if target == "" {
			target = "International"
		}

		notices = append(notices, &models.Notice{
			ID:          "gdacs_" + strings.ToLower(item.EventType) + "_" + item.EventID,
			TargetState: target,
			Title:       item.Title,
			Message:     item.Description,
			Severity:    mapGDACSAlertLevel(item.AlertLevel),
			Source:      "gdacs",
			CreatedAt:   timestamp.UTC(),
		})
	}

	return notices, nil
}

func mapGDACSAlertLevel(level string) models.NoticeSeverity {
	switch strings.ToLower(level) {
	case "red":
		return models.NoticeSeverityCritical
	case "orange":
		return models.NoticeSeverityHigh
	case "green":
		return models.NoticeSeverityLow
	default:
		return models.NoticeSeverityMedium
	}
}
