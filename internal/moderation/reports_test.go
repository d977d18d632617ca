package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReports struct {
	reports map[uuid.UUID]*models.EntityReport
	logs    []*models.ActivityLogEntry
	notes   []*models.Notification
}

func newFakeReports() *fakeReports {
	return &fakeReports{reports: map[uuid.UUID]*models.EntityReport{}}
}

func (f *fakeReports) Create(_ context.Context, r *models.EntityReport) error {
	for _, existing := range f.reports {
		if existing.ReporterID == r.ReporterID && existing.EntityID == r.EntityID && existing.Status == models.ReportPending {
			return repository.ErrAlreadyExists
		}
	}
	f.reports[r.ID] = r
	return nil
}

func (f *fakeReports) Get(_ context.Context, id uuid.UUID) (*models.EntityReport, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReports) List(_ context.Context, status string, _ int) ([]models.EntityReport, error) {
	var res []models.EntityReport
	for _, r := range f.reports {
		if status == "" || r.Status == status {
			res = append(res, *r)
		}
	}
	return res, nil
}

func (f *fakeReports) Review(_ context.Context, id, reviewer uuid.UUID, status, notes string, at time.Time, entry *models.ActivityLogEntry, n *models.Notification) error {
	r := f.reports[id]
	if r.Status != models.ReportPending {
		return repository.ErrNotPending
	}
	r.Status = status
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &at
	if notes != "" {
		r.AdminNotes = &notes
	}
	f.logs = append(f.logs, entry)
	f.notes = append(f.notes, n)
	return nil
}

func TestReports_SubmitOncePerEntity(t *testing.T) {
	svc, _, _ := newTestService(newFakeStore(), nil)
	reporter := uuid.New()
	req := models.CreateReportRequest{EntityType: "event", EntityID: uuid.New(), Reason: models.ReasonSpam}

	report, err := svc.SubmitReport(context.Background(), reporter, req)
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, report.Status)

	_, err = svc.SubmitReport(context.Background(), reporter, req)
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestReports_ReviewNotifiesReporter(t *testing.T) {
	svc, broker, _ := newTestService(newFakeStore(), fakeLanguages{})
	reports := svc.reports.(*fakeReports)
	reporter, admin := uuid.New(), uuid.New()

	report, err := svc.SubmitReport(context.Background(), reporter, models.CreateReportRequest{
		EntityType: "profile", EntityID: uuid.New(), Reason: models.ReasonHarassment,
	})
	require.NoError(t, err)

	err = svc.ReviewReport(context.Background(), admin, report.ID, models.ReviewReportRequest{Status: models.ReportResolved, AdminNotes: "account suspended"})
	require.NoError(t, err)

	require.Len(t, reports.logs, 1)
	assert.Equal(t, "resolved_report", reports.logs[0].Action)
	assert.Equal(t, admin, reports.logs[0].ActorID)
	require.Len(t, reports.notes, 1)
	assert.Equal(t, reporter, reports.notes[0].UserID)
	assert.Equal(t, models.NotificationReportResolved, reports.notes[0].Type)
	assert.Len(t, broker.changes, 1)

	err = svc.ReviewReport(context.Background(), admin, report.ID, models.ReviewReportRequest{Status: models.ReportDismissed})
	assert.ErrorIs(t, err, repository.ErrNotPending)
}
