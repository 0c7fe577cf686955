package intake

import (
	"context"
	"net/http"
	"time"

	"github.com/mr1hm/go-crisis-response/internal/models"
)

var feedClient = &http.Client{
	Timeout: 15 * time.Second,
}

type feed struct {
	name  string
	url   string
	fetch func(ctx context.Context, url string) ([]*models.Notice, error)
}

// feeds lists the enabled external sources.
func (m *Manager) feeds() []feed {
	var out []feed
	if m.feed.GDACS.Enabled {
		out = append(out, feed{name: "gdacs", url: m.feed.GDACS.URL, fetch: fetchGDACS})
	}
	if m.feed.USGS.Enabled {
		out = append(out, feed{name: "usgs", url: m.feed.USGS.URL, fetch: fetchUSGS})
	}
	return out
}
