package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mr1hm/go-crisis-response/internal/config"
	"github.com/mr1hm/go-crisis-response/internal/models"
	"github.com/mr1hm/go-crisis-response/internal/notify"
	"github.com/mr1hm/go-crisis-response/internal/repository"
	"github.com/mr1hm/go-crisis-response/internal/worker"
)

var ErrInvalid = errors.New("invalid input")

// Manager accepts new requests and notices, persists them, and pushes
// notices to live subscribers. Notices from the external feed are
// processed on a worker pool.
type Manager struct {
	workers     config.WorkerConfig
	feed        config.FeedConfig
	requests    repository.RequestRepository
	notices     repository.NoticeRepository
	broadcaster *notify.Broadcaster
	pool        *worker.Pool[*models.Notice]
	wg          sync.WaitGroup
	now         func() time.Time
}

func NewManager(cfg *config.Config, requests repository.RequestRepository, notices repository.NoticeRepository, broadcaster *notify.Broadcaster) *Manager {
	return &Manager{
		workers:     cfg.Worker,
		feed:        cfg.Feed,
		requests:    requests,
		notices:     notices,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

func (m *Manager) Start(ctx context.Context) {
	m.pool = worker.NewPool("notices", m.workers.Count, m.workers.BufferSize, m.processNotice)
	m.pool.Start(ctx)

	for _, f := range m.feeds() {
		m.wg.Add(1)
		go m.runPoller(ctx, f)
	}
}

func (m *Manager) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	slog.Info("intake manager stopped")
}

// processNotice stores a feed notice once and broadcasts it if it is
// severe enough.
func (m *Manager) processNotice(ctx context.Context, n *models.Notice) error {
	exists, err := m.notices.NoticeExists(ctx, n.ID)
	if err != nil {
		return fmt.Errorf("error checking notice %s: %w", n.ID, err)
	}
	if exists {
		return nil
	}

	if err := m.notices.AddNotice(ctx, n); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// another worker stored it between the check and the add
			return nil
		}
		return fmt.Errorf("error adding notice %s: %w", n.ID, err)
	}

	if m.broadcaster != nil && shouldBroadcast(n) {
		m.broadcaster.Broadcast(n)
	}

	slog.Info("added notice", "id", n.ID, "severity", n.Severity, "source", n.Source)
	return nil
}

func (m *Manager) runPoller(ctx context.Context, f feed) {
	defer m.wg.Done()
	slog.Info("starting poller", "source", f.name, "interval", m.feed.PollInterval)

	ticker := time.NewTicker(m.feed.PollInterval)
	defer ticker.Stop()

	m.poll(ctx, f)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "source", f.name)
			return
		case <-ticker.C:
			m.poll(ctx, f)
		}
	}
}

func (m *Manager) poll(ctx context.Context, f feed) {
	slog.Debug("polling", "source", f.name)

	notices, err := f.fetch(ctx, f.url)
	if err != nil {
		slog.Error("poll failed", "source", f.name, "error", err)
		return
	}

	for _, n := range notices {
		if err := m.pool.SubmitContext(ctx, n); err != nil {
			slog.Debug("poll abandoned", "source", f.name, "error", err)
			return
		}
	}

	slog.Debug("poll complete", "source", f.name, "count", len(notices))
}

// shouldBroadcast pushes feed notices only at high or critical severity;
// everything else is stored for the list view.
func shouldBroadcast(n *models.Notice) bool {
	return n.Severity == models.NoticeSeverityHigh || n.Severity == models.NoticeSeverityCritical
}

type NewRequest struct {
	Requester   string `json:"requester"`
	Category    string `json:"category"`
	Urgency     string `json:"urgency"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// SubmitRequest validates the form and appends exactly one pending
// request.
func (m *Manager) SubmitRequest(ctx context.Context, in NewRequest) (*models.Request, error) {
	r := &models.Request{
		Requester:   strings.TrimSpace(in.Requester),
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
		Status:      models.StatusPending,
	}

	var problems []string
	if r.Requester == "" {
		problems = append(problems, "requester is required")
	}
	if r.Location == "" {
		problems = append(problems, "location is required")
	}
	if r.Description == "" {
		problems = append(problems, "description is required")
	}
	category, err := models.ParseCategory(in.Category)
	if err != nil {
		problems = append(problems, err.Error())
	}
	urgency, err := models.ParseUrgency(in.Urgency)
	if err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}

	r.ID = "REQ-" + strings.ToUpper(uuid.NewString()[:8])
	r.Category = category
	r.Urgency = urgency
	r.SubmittedAt = m.now().UTC()

	if err := m.requests.AddRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("error saving request: %w", err)
	}

	slog.Info("request submitted", "id", r.ID, "category", r.Category, "urgency", r.Urgency)
	return r, nil
}

func (m *Manager) SetStatus(ctx context.Context, id, status string) (*models.Request, error) {
	st, err := models.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	r, err := m.requests.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, err
	}

	slog.Info("request status changed", "id", id, "status", st)
	return r, nil
}

type NewNotice struct {
	TargetState string `json:"target_state"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Severity    string `json:"severity"`
}

// PublishNotice stores a government notice and broadcasts it to every
// subscriber regardless of severity.
func (m *Manager) PublishNotice(ctx context.Context, in NewNotice) (*models.Notice, error) {
	n := &models.Notice{
		TargetState: strings.TrimSpace(in.TargetState),
		Title:       strings.TrimSpace(in.Title),
		Message:     strings.TrimSpace(in.Message),
		Severity:    models.NoticeSeverity(strings.ToLower(strings.TrimSpace(in.Severity))),
		Source:      "gov",
	}

	var problems []string
	if n.TargetState == "" {
		problems = append(problems, "target_state is required")
	}
	if n.Title == "" {
		problems = append(problems, "title is required")
	}
	if n.Message == "" {
		problems = append(problems, "message is required")
	}
	if !n.Severity.Valid() {
		problems = append(problems, fmt.Sprintf("unknown severity %q", in.Severity))
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}

	n.ID = uuid.NewString()
	n.CreatedAt = m.now().UTC()

	if err := m.notices.AddNotice(ctx, n); err != nil {
		return nil, fmt.Errorf("error saving notice: %w", err)
	}
	if m.broadcaster != nil {
		m.broadcaster.Broadcast(n)
	}

	slog.Info("notice published", "id", n.ID, "target_state", n.TargetState, "severity", n.Severity)
	return n, nil
}
