package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/mr1hm/go-crisis-response/internal/models"
)

var Header = []string{"id", "requester", "category", "urgency", "status", "location", "description", "submitted_at"}

// WriteCSV writes the requests in the order given, after a header row.
func WriteCSV(w io.Writer, requests []models.Request) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("error writing csv header: %w", err)
	}
	for _, r := range requests {
		record := []string{
			r.ID,
			r.Requester,
			string(r.Category),
			string(r.Urgency),
			string(r.Status),
			r.Location,
			r.Description,
			r.SubmittedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing request %s: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename is the download name for an export taken at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("requests-%s.csv", t.UTC().Format("20060102-150405"))
}
