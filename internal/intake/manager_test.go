package intake

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-crisis-response/internal/config"
	"github.com/mr1hm/go-crisis-response/internal/models"
	"github.com/mr1hm/go-crisis-response/internal/notify"
	"github.com/mr1hm/go-crisis-response/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockRepo implements the request and notice repositories for testing.
type mockRepo struct {
	mu       sync.Mutex
	requests []models.Request
	notices  map[string]*models.Notice
	addCount atomic.Int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{notices: make(map[string]*models.Notice)}
}

func (m *mockRepo) AddRequest(ctx context.Context, r *models.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, *r)
	return nil
}

func (m *mockRepo) GetRequest(ctx context.Context, id string) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockRepo) ListRequests(ctx context.Context) ([]models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Request(nil), m.requests...), nil
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.requests {
		if m.requests[i].ID == id {
			m.requests[i].Status = status
			r := m.requests[i]
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockRepo) AddNotice(ctx context.Context, n *models.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices[n.ID] = n
	m.addCount.Add(1)
	return nil
}

func (m *mockRepo) NoticeExists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.notices[id]
	return ok, nil
}

func (m *mockRepo) ListNotices(ctx context.Context, opts repository.NoticeFilter) ([]models.Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notice
	for _, n := range m.notices {
		out = append(out, *n)
	}
	return out, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Worker: config.WorkerConfig{
			Count:      2,
			BufferSize: 10,
		},
	}
}

func validRequest() NewRequest {
	return NewRequest{
		Requester:   " Asha ",
		Category:    "Medical",
		Urgency:     "critical",
		Location:    "North Delhi",
		Description: "Oxygen cylinder needed",
	}
}

func TestManager_StartStop(t *testing.T) {
	repo := newMockRepo()
	mgr := NewManager(testConfig(), repo, repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)
	time.Sleep(20 * time.Millisecond)

	cancel()
	mgr.Stop()
}

func TestSubmitRequest_AppendsExactlyOne(t *testing.T) {
	repo := newMockRepo()
	mgr := NewManager(testConfig(), repo, repo, nil)
	fixed := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return fixed }

	r, err := mgr.SubmitRequest(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("SubmitRequest failed: %v", err)
	}

	if len(repo.requests) != 1 {
		t.Fatalf("expected exactly 1 request stored, got %d", len(repo.requests))
	}
	if r.Status != models.StatusPending {
		t.Errorf("expected pending, got %s", r.Status)
	}
	if r.Category != models.CategoryMedical || r.Urgency != models.UrgencyCritical {
		t.Errorf("unexpected enums: %s/%s", r.Category, r.Urgency)
	}
	if r.Requester != "Asha" {
		t.Errorf("expected trimmed requester, got %q", r.Requester)
	}
	if !r.SubmittedAt.Equal(fixed) {
		t.Errorf("expected submitted at %v, got %v", fixed, r.SubmittedAt)
	}
	if r.ID == "" {
		t.Error("expected an id")
	}
}

func TestSubmitRequest_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewRequest)
	}{
		{"missing requester", func(r *NewRequest) { r.Requester = "  " }},
		{"missing location", func(r *NewRequest) { r.Location = "" }},
		{"missing description", func(r *NewRequest) { r.Description = "" }},
		{"bad category", func(r *NewRequest) { r.Category = "pizza" }},
		{"bad urgency", func(r *NewRequest) { r.Urgency = "whenever" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			mgr := NewManager(testConfig(), repo, repo, nil)

			in := validRequest()
			tt.mutate(&in)

			_, err := mgr.SubmitRequest(context.Background(), in)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
			if len(repo.requests) != 0 {
				t.Errorf("invalid request was stored")
			}
		})
	}
}

func TestSetStatus(t *testing.T) {
	repo := newMockRepo()
	mgr := NewManager(testConfig(), repo, repo, nil)
	r, _ := mgr.SubmitRequest(context.Background(), validRequest())

	got, err := mgr.SetStatus(context.Background(), r.ID, "approved")
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if got.Status != models.StatusApproved {
		t.Errorf("expected approved, got %s", got.Status)
	}

	if _, err := mgr.SetStatus(context.Background(), r.ID, "maybe"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	if _, err := mgr.SetStatus(context.Background(), "nope", "rejected"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPublishNotice_Broadcasts(t *testing.T) {
	repo := newMockRepo()
	b := notify.NewBroadcaster()
	defer b.Close()
	mgr := NewManager(testConfig(), repo, repo, b)

	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	n, err := mgr.PublishNotice(context.Background(), NewNotice{
		TargetState: "Bihar",
		Title:       "Boil water",
		Message:     "Boil all drinking water until further notice.",
		Severity:    "Low",
	})
	if err != nil {
		t.Fatalf("PublishNotice failed: %v", err)
	}

	select {
	case got := <-ch:
		if got.ID != n.ID {
			t.Errorf("expected %s, got %s", n.ID, got.ID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("government notices should broadcast at any severity")
	}

	if repo.addCount.Load() != 1 {
		t.Errorf("expected 1 notice stored, got %d", repo.addCount.Load())
	}
}

func TestPublishNotice_Validation(t *testing.T) {
	repo := newMockRepo()
	mgr := NewManager(testConfig(), repo, repo, nil)

	_, err := mgr.PublishNotice(context.Background(), NewNotice{Title: "x", Severity: "extreme"})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestManager_ProcessNoticeDeduplicates(t *testing.T) {
	repo := newMockRepo()
	mgr := NewManager(testConfig(), repo, repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	for i := 0; i < 3; i++ {
		for j := 0; j < 5; j++ {
			mgr.pool.Submit(&models.Notice{ID: fmt.Sprintf("feed_%d", j), Severity: models.NoticeSeverityLow})
		}
	}

	time.Sleep(100 * time.Millisecond)
	cancel()
	mgr.Stop()

	if len(repo.notices) != 5 {
		t.Errorf("expected 5 unique notices, got %d", len(repo.notices))
	}
}

// racingRepo reports every notice as new but rejects the add, the way a
// store behaves when another worker stored the same ID first.
type racingRepo struct {
	*mockRepo
}

func (r *racingRepo) NoticeExists(ctx context.Context, id string) (bool, error) {
	return false, nil
}

func (r *racingRepo) AddNotice(ctx context.Context, n *models.Notice) error {
	return fmt.Errorf("notice %s: %w", n.ID, repository.ErrDuplicate)
}

func TestManager_ProcessNoticeLostRace(t *testing.T) {
	repo := &racingRepo{mockRepo: newMockRepo()}
	b := notify.NewBroadcaster()
	defer b.Close()
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	mgr := NewManager(testConfig(), repo, repo, b)
	err := mgr.processNotice(context.Background(), &models.Notice{ID: "usgs_q1", Severity: models.NoticeSeverityCritical})
	if err != nil {
		t.Errorf("expected duplicate add to be ignored, got %v", err)
	}
	if len(ch) != 0 {
		t.Error("duplicate notice should not be broadcast")
	}
}

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:gdacs="http://www.gdacs.org">
  <channel>
    <item>
      <title>Red flood alert in Bangladesh</title>
      <description>Flooding affecting 1.2 million people.</description>
      <pubDate>Sat, 01 Mar 2025 06:00:00 GMT</pubDate>
      <gdacs:eventtype>FL</gdacs:eventtype>
      <gdacs:alertlevel>Red</gdacs:alertlevel>
      <gdacs:eventid>1001</gdacs:eventid>
      <gdacs:country>Bangladesh</gdacs:country>
    </item>
    <item>
      <title>Green earthquake alert</title>
      <description>M4.6 offshore.</description>
      <pubDate>Sat, 01 Mar 2025 05:00:00 GMT</pubDate>
      <gdacs:eventtype>EQ</gdacs:eventtype>
      <gdacs:alertlevel>Green</gdacs:alertlevel>
      <gdacs:eventid>2002</gdacs:eventid>
    </item>
  </channel>
</rss>`

func TestManager_PollsFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Feed = config.FeedConfig{
		PollInterval: time.Minute,
		GDACS:        config.FeedSource{Enabled: true, URL: srv.URL},
	}

	repo := newMockRepo()
	b := notify.NewBroadcaster()
	defer b.Close()
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	mgr := NewManager(cfg, repo, repo, b)
	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for repo.addCount.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	mgr.Stop()

	red, ok := repo.notices["gdacs_fl_1001"]
	if !ok {
		t.Fatalf("expected red flood notice, got %v", repo.notices)
	}
	if red.Severity != models.NoticeSeverityCritical || red.TargetState != "Bangladesh" {
		t.Errorf("unexpected notice %+v", red)
	}
	green := repo.notices["gdacs_eq_2002"]
	if green == nil || green.TargetState != "International" || green.Severity != models.NoticeSeverityLow {
		t.Errorf("unexpected green notice %+v", green)
	}

	// Only the red alert is pushed live.
	if len(ch) != 1 {
		t.Errorf("expected 1 broadcast, got %d", len(ch))
	}
}

const sampleQuakes = `{
  "type": "FeatureCollection",
  "features": [
    {"id": "us7000abcd", "properties": {"mag": 7.2, "place": "45 km SW of Padang, Indonesia", "time": 1740808800000, "title": "M 7.2 - 45 km SW of Padang, Indonesia", "tsunami": 1}},
    {"id": "us7000efgh", "properties": {"mag": 4.8, "place": "South Sandwich Islands region", "time": 1740805200000, "title": "M 4.8 - South Sandwich Islands region", "tsunami": 0}},
    {"id": "", "properties": {"mag": 9.9}}
  ]
}`

func TestManager_PollsUSGS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write([]byte(sampleQuakes))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Feed = config.FeedConfig{
		PollInterval: time.Minute,
		USGS:         config.FeedSource{Enabled: true, URL: srv.URL},
	}

	repo := newMockRepo()
	mgr := NewManager(cfg, repo, repo, nil)
	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for repo.addCount.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	mgr.Stop()

	if len(repo.notices) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(repo.notices))
	}
	big := repo.notices["usgs_us7000abcd"]
	if big == nil || big.Severity != models.NoticeSeverityCritical || big.TargetState != "Indonesia" {
		t.Errorf("unexpected notice %+v", big)
	}
	if !big.CreatedAt.Equal(time.UnixMilli(1740808800000)) {
		t.Errorf("unexpected timestamp %v", big.CreatedAt)
	}
	small := repo.notices["usgs_us7000efgh"]
	if small == nil || small.Severity != models.NoticeSeverityLow || small.TargetState != "International" {
		t.Errorf("unexpected notice %+v", small)
	}
}

func TestQuakeSeverity(t *testing.T) {
	tests := []struct {
		mag     float64
		tsunami bool
		want    models.NoticeSeverity
	}{
		{4.9, false, models.NoticeSeverityLow},
		{5.0, false, models.NoticeSeverityMedium},
		{6.3, false, models.NoticeSeverityHigh},
		{7.0, false, models.NoticeSeverityCritical},
		{5.5, true, models.NoticeSeverityCritical},
	}

	for _, tt := range tests {
		if got := quakeSeverity(tt.mag, tt.tsunami); got != tt.want {
			t.Errorf("quakeSeverity(%v, %v) = %s, want %s", tt.mag, tt.tsunami, got, tt.want)
		}
	}
}

// slowNoticeRepo holds every notice lookup until the context ends, so the
// worker pool backs up behind the poller.
type slowNoticeRepo struct {
	*mockRepo
}

func (r *slowNoticeRepo) NoticeExists(ctx context.Context, id string) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func TestManager_StopWithFullQueue(t *testing.T) {
	var features []string
	for i := 0; i < 10; i++ {
		features = append(features, fmt.Sprintf(`{"id": "q%d", "properties": {"mag": 5.1, "place": "Nepal", "time": 1740808800000}}`, i))
	}
	body := `{"features": [` + strings.Join(features, ",") + `]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Worker = config.WorkerConfig{Count: 1, BufferSize: 2}
	cfg.Feed = config.FeedConfig{
		PollInterval: time.Minute,
		USGS:         config.FeedSource{Enabled: true, URL: srv.URL},
	}

	repo := &slowNoticeRepo{mockRepo: newMockRepo()}
	mgr := NewManager(cfg, repo, repo, nil)
	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	// let the poller fill the queue and block on the next notice
	time.Sleep(200 * time.Millisecond)
	cancel()

	stopped := make(chan struct{})
	go func() {
		mgr.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop still blocked 2s after cancel")
	}
}
