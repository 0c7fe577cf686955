package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mr1hm/go-crisis-response/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func testRequest(id string, submitted time.Time) *models.Request {
	return &models.Request{
		ID:          id,
		Requester:   "Tester",
		Category:    models.CategoryMedical,
		Urgency:     models.UrgencyHigh,
		Status:      models.StatusPending,
		Location:    "Patna",
		Description: "Insulin",
		SubmittedAt: submitted,
	}
}

func TestSQLiteDB_AddAndGetRequest(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := db.AddRequest(ctx, testRequest("req_1", now)); err != nil {
		t.Fatalf("AddRequest failed: %v", err)
	}

	got, err := db.GetRequest(ctx, "req_1")
	if err != nil {
		t.Fatalf("GetRequest failed: %v", err)
	}
	if got.Category != models.CategoryMedical || got.Location != "Patna" {
		t.Errorf("unexpected request: %+v", got)
	}
	if !got.SubmittedAt.Equal(now) {
		t.Errorf("expected submitted_at %v, got %v", now, got.SubmittedAt)
	}
}

func TestSQLiteDB_GetRequest_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetRequest(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_AddRequest_DuplicateID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	db.AddRequest(ctx, testRequest("dup", time.Now()))

	if err := db.AddRequest(ctx, testRequest("dup", time.Now())); err == nil {
		t.Error("expected error inserting duplicate id")
	}
}

func TestSQLiteDB_ListRequests_InsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	for _, id := range []string{"b", "a", "c"} {
		db.AddRequest(ctx, testRequest(id, now))
	}

	results, err := db.ListRequests(ctx)
	if err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(results))
	}
	for i, want := range []string{"b", "a", "c"} {
		if results[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, results[i].ID)
		}
	}
}

func TestSQLiteDB_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	db.AddRequest(ctx, testRequest("req_1", time.Now()))

	got, err := db.UpdateStatus(ctx, "req_1", models.StatusApproved)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if got.Status != models.StatusApproved {
		t.Errorf("expected approved, got %s", got.Status)
	}

	if _, err := db.UpdateStatus(ctx, "missing", models.StatusApproved); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_Notices(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	notices := []*models.Notice{
		{ID: "n1", TargetState: "Bihar", Title: "Old", Message: "m", Severity: models.NoticeSeverityLow, Source: "gov", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "n2", TargetState: "Bihar", Title: "New", Message: "m", Severity: models.NoticeSeverityHigh, Source: "gov", CreatedAt: now},
		{ID: "n3", TargetState: "Assam", Title: "Other", Message: "m", Severity: models.NoticeSeverityMedium, Source: "gdacs", CreatedAt: now.Add(-time.Hour)},
	}
	for _, n := range notices {
		if err := db.AddNotice(ctx, n); err != nil {
			t.Fatalf("AddNotice failed: %v", err)
		}
	}

	exists, err := db.NoticeExists(ctx, "n3")
	if err != nil || !exists {
		t.Errorf("expected n3 to exist (err %v)", err)
	}
	exists, _ = db.NoticeExists(ctx, "n9")
	if exists {
		t.Error("expected n9 not to exist")
	}

	all, err := db.ListNotices(ctx, NoticeFilter{})
	if err != nil {
		t.Fatalf("ListNotices failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != "n2" || all[2].ID != "n1" {
		t.Errorf("expected newest first, got %+v", all)
	}

	bihar, _ := db.ListNotices(ctx, NoticeFilter{TargetState: "bihar"})
	if len(bihar) != 2 {
		t.Errorf("expected 2 Bihar notices, got %d", len(bihar))
	}

	since := now.Add(-90 * time.Minute)
	recent, _ := db.ListNotices(ctx, NoticeFilter{Since: &since, Limit: 1})
	if len(recent) != 1 || recent[0].ID != "n2" {
		t.Errorf("expected only n2, got %+v", recent)
	}
}

func TestSQLiteDB_AddNotice_DuplicateID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	n := &models.Notice{ID: "gdacs_fl_1", TargetState: "Assam", Title: "first", Message: "m", Severity: models.NoticeSeverityHigh, Source: "gdacs", CreatedAt: time.Now()}
	if err := db.AddNotice(ctx, n); err != nil {
		t.Fatalf("AddNotice failed: %v", err)
	}

	dup := *n
	dup.Title = "second"
	if err := db.AddNotice(ctx, &dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	all, _ := db.ListNotices(ctx, NoticeFilter{})
	if len(all) != 1 || all[0].Title != "first" {
		t.Errorf("expected the first notice only, got %+v", all)
	}
}

func TestSQLiteDB_SeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	reqs := []models.Request{*testRequest("s1", time.Now()), *testRequest("s2", time.Now())}

	if err := db.Seed(ctx, reqs, nil); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	db.UpdateStatus(ctx, "s1", models.StatusRejected)
	if err := db.Seed(ctx, reqs, nil); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}

	all, _ := db.ListRequests(ctx)
	if len(all) != 2 {
		t.Errorf("expected 2 requests, got %d", len(all))
	}
	got, _ := db.GetRequest(ctx, "s1")
	if got.Status != models.StatusRejected {
		t.Errorf("seed overwrote existing row: status %s", got.Status)
	}
}
