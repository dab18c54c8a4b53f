package service

import (
	"context"
	"database/sql"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/models"
	"github.com/hearthworks/volunteer-api/internal/repository"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
	"github.com/hearthworks/volunteer-api/pkg/jobs"
	"github.com/hearthworks/volunteer-api/pkg/storage"
)

type mockExportStore struct {
	records map[string]*models.ExportJob
	nextID  int
}

func newMockExportStore() *mockExportStore {
	return &mockExportStore{records: make(map[string]*models.ExportJob)}
}

func (m *mockExportStore) Create(_ context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		m.nextID++
		job.ID = "job-" + strconv.Itoa(m.nextID)
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	copied := *job
	m.records[job.ID] = &copied
	return nil
}

func (m *mockExportStore) GetByID(_ context.Context, id string) (*models.ExportJob, error) {
	job, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (m *mockExportStore) Update(_ context.Context, id string, params repository.UpdateExportJobParams) error {
	job, ok := m.records[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (m *mockExportStore) ListQueued(_ context.Context, _ int) ([]models.ExportJob, error) {
	queued := make([]models.ExportJob, 0)
	for _, job := range m.records {
		if job.Status == models.ExportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (m *mockExportStore) ListFinishedBefore(_ context.Context, cutoff time.Time, _ int) ([]models.ExportJob, error) {
	finished := make([]models.ExportJob, 0)
	for _, job := range m.records {
		if job.Status == models.ExportStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			finished = append(finished, *job)
		}
	}
	return finished, nil
}

type mockDispatcher struct {
	enqueued []jobs.Job
	err      error
}

func (m *mockDispatcher) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

func newExportServiceForTest(t *testing.T) (*ExportService, *mockExportStore, *mockDispatcher) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSigner("test-secret", time.Hour)
	repo := newMockExportStore()
	dispatcher := &mockDispatcher{}
	reports := NewReportService(&mockHoursReader{rows: []repository.VolunteerHoursRow{
		{VolunteerID: "v-1", Name: "Ana", ShiftCount: 3, Hours: 10.5},
	}}, zap.NewNop())
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(repo, dispatcher, reports, store, signer, cfg, nil, zap.NewNop())
	return svc, repo, dispatcher
}

func exportRequest(format string) dto.CreateExportRequest {
	return dto.CreateExportRequest{
		From:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Format: format,
	}
}

func TestExportCreateJobEnqueues(t *testing.T) {
	svc, repo, dispatcher := newExportServiceForTest(t)

	resp, err := svc.CreateJob(context.Background(), exportRequest("csv"))
	require.NoError(t, err)
	assert.Equal(t, string(models.ExportStatusQueued), resp.Status)
	require.Len(t, dispatcher.enqueued, 1)
	assert.Equal(t, resp.ID, dispatcher.enqueued[0].ID)
	require.Contains(t, repo.records, resp.ID)
}

func TestExportCreateJobRejectsBadFormat(t *testing.T) {
	svc, _, dispatcher := newExportServiceForTest(t)

	_, err := svc.CreateJob(context.Background(), exportRequest("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, dispatcher.enqueued)
}

func TestExportWorkerFinishesJob(t *testing.T) {
	svc, repo, dispatcher := newExportServiceForTest(t)

	resp, err := svc.CreateJob(context.Background(), exportRequest("csv"))
	require.NoError(t, err)

	worker := NewExportWorker(repo, svc, 3, zap.NewNop())
	require.NoError(t, worker.Handle(context.Background(), dispatcher.enqueued[0]))

	job := repo.records[resp.ID]
	assert.Equal(t, models.ExportStatusFinished, job.Status)
	require.NotNil(t, job.ResultURL)
	assert.Contains(t, *job.ResultURL, "/api/v1/reports/export/")
	require.NotNil(t, job.FinishedAt)
}

func TestExportDownloadRoundTrip(t *testing.T) {
	svc, repo, dispatcher := newExportServiceForTest(t)

	resp, err := svc.CreateJob(context.Background(), exportRequest("csv"))
	require.NoError(t, err)
	worker := NewExportWorker(repo, svc, 3, zap.NewNop())
	require.NoError(t, worker.Handle(context.Background(), dispatcher.enqueued[0]))

	url := *repo.records[resp.ID].ResultURL
	token := url[strings.LastIndex(url, "/")+1:]

	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()

	data, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ana,3,10.5")
	assert.Equal(t, models.ExportFormatCSV, download.Format)
}

func TestExportDownloadRejectsPendingJob(t *testing.T) {
	svc, repo, _ := newExportServiceForTest(t)

	resp, err := svc.CreateJob(context.Background(), exportRequest("pdf"))
	require.NoError(t, err)

	job := repo.records[resp.ID]
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	// Token is valid but the job was never marked finished.
	_, err = svc.ResolveDownload(context.Background(), result.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestExportGeneratePDF(t *testing.T) {
	svc, repo, _ := newExportServiceForTest(t)

	resp, err := svc.CreateJob(context.Background(), exportRequest("pdf"))
	require.NoError(t, err)

	result, err := svc.Generate(context.Background(), repo.records[resp.ID])
	require.NoError(t, err)

	file, err := svc.storage.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()

	header := make([]byte, 4)
	_, err = io.ReadFull(file, header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(header))
}

func TestExportStatusNotFound(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)

	_, err := svc.Status(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
