package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mr1hm/go-crisis-response/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type NoticeFilter struct {
	Limit       int
	TargetState string
	Since       *time.Time
}

type RequestRepository interface {
	AddRequest(ctx context.Context, r *models.Request) error
	GetRequest(ctx context.Context, id string) (*models.Request, error)
	ListRequests(ctx context.Context) ([]models.Request, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Request, error)
}

type NoticeRepository interface {
	AddNotice(ctx context.Context, n *models.Notice) error
	NoticeExists(ctx context.Context, id string) (bool, error)
	ListNotices(ctx context.Context, opts NoticeFilter) ([]models.Notice, error)
}

// CatalogRepository serves the read-mostly reference data behind the
// dashboards.
type CatalogRepository interface {
	AidRequests(ctx context.Context) (models.AidRequests, error)
	AddAidItem(ctx context.Context, country string, item models.AidItem) error
	States(ctx context.Context) ([]models.StateDetail, error)
	State(ctx context.Context, name string) (*models.StateDetail, error)
	Regions(ctx context.Context, scope models.Scope) ([]models.RegionOverview, error)
	Resources(ctx context.Context) ([]models.Resource, error)
	Alerts(ctx context.Context) ([]models.Alert, error)
}
