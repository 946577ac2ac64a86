package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/dto"
	"github.com/alifdwt/lms-bff-api/internal/models"
	"github.com/alifdwt/lms-bff-api/internal/repository"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
	"github.com/alifdwt/lms-bff-api/pkg/export"
	"github.com/alifdwt/lms-bff-api/pkg/jobs"
	"github.com/alifdwt/lms-bff-api/pkg/storage"
)

// Export job types.
const (
	ExportTypeAttendanceCSV = "attendance_csv"
	ExportTypeCourseCSV     = "course_report_csv"
	ExportTypeCoursePDF     = "course_report_pdf"
)

const recoverBatch = 100

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error)
}

type reportComposer interface {
	CourseReport(ctx context.Context, session models.Session, courseID string) (*dto.CourseReportResponse, error)
}

type attendanceComposer interface {
	SectionStatistics(ctx context.Context, session models.Session, sectionID string) (*dto.AttendanceReportResponse, error)
}

type artifactStore interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportService renders report aggregations into downloadable CSV/PDF
// artifacts asynchronously. Job metadata is the only state this layer owns.
type ExportService struct {
	store      exportJobStore
	reports    reportComposer
	attendance attendanceComposer
	artifacts  artifactStore
	signer     *storage.TokenSigner
	queue      *jobs.Queue[models.Session]
	retention  time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Store      exportJobStore
	Reports    reportComposer
	Attendance attendanceComposer
	Artifacts  artifactStore
	Signer     *storage.TokenSigner
	QueueCfg   jobs.QueueConfig
	Retention  time.Duration
	Logger     *zap.Logger
}

// NewExportService constructs the service and its worker queue. Call Start
// before enqueueing.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ExportService{
		store:      params.Store,
		reports:    params.Reports,
		attendance: params.Attendance,
		artifacts:  params.Artifacts,
		signer:     params.Signer,
		retention:  params.Retention,
		logger:     logger,
		now:        time.Now,
	}
	cfg := params.QueueCfg
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	svc.queue = jobs.NewQueue("exports", svc.process, cfg)
	return svc
}

// Start launches the export workers, requeues job rows left QUEUED by a
// previous run, and begins the artifact retention sweep.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	s.recoverQueued(ctx)
	if s.retention > 0 {
		go s.sweep(ctx)
	}
}

// Stop drains the export workers.
func (s *ExportService) Stop() { s.queue.Stop() }

// recoverQueued reloads jobs that were accepted but never rendered. Only the
// requestor's identity is persisted with the job; rendering needs it for
// provenance, not authorization, which was already checked at enqueue time.
func (s *ExportService) recoverQueued(ctx context.Context) {
	rows, err := s.store.ListQueued(ctx, recoverBatch)
	if err != nil {
		s.logger.Error("queued export recovery failed", zap.Error(err))
		return
	}
	for _, row := range rows {
		task := jobs.Task[models.Session]{
			ID:      row.ID,
			Kind:    row.Type,
			Payload: models.Session{UserID: row.CreatedBy},
		}
		if err := s.queue.Enqueue(task); err != nil {
			s.logger.Error("requeue of persisted export failed",
				zap.String("job_id", row.ID), zap.Error(err))
			return
		}
	}
	if len(rows) > 0 {
		s.logger.Info("recovered queued exports", zap.Int("count", len(rows)))
	}
}

func (s *ExportService) sweep(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		deleted, err := s.artifacts.CleanupOlderThan(s.retention)
		if err != nil {
			s.logger.Error("artifact sweep failed", zap.Error(err))
		} else if len(deleted) > 0 {
			s.logger.Info("swept expired artifacts", zap.Int("count", len(deleted)))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type exportParams struct {
	CourseID  string `json:"course_id,omitempty"`
	SectionID string `json:"section_id,omitempty"`
}

// Enqueue persists a job row and schedules rendering.
func (s *ExportService) Enqueue(ctx context.Context, session models.Session, exportType, courseID, sectionID string) (*dto.ExportJobResponse, error) {
	switch exportType {
	case ExportTypeAttendanceCSV:
		if sectionID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "sectionId is required")
		}
	case ExportTypeCourseCSV, ExportTypeCoursePDF:
		if courseID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export type %q", exportType))
	}

	params, err := json.Marshal(exportParams{CourseID: courseID, SectionID: sectionID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode export params")
	}
	job := &models.ExportJob{Type: exportType, Params: string(params), CreatedBy: session.UserID}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist export job")
	}
	if err := s.queue.Enqueue(jobs.Task[models.Session]{ID: job.ID, Kind: exportType, Payload: session}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "queue export job")
	}
	return jobResponse(job), nil
}

// Status returns the current job row.
func (s *ExportService) Status(ctx context.Context, id string) (*dto.ExportJobResponse, error) {
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export job not found")
	}
	return jobResponse(job), nil
}

// Download resolves a signed token to the stored artifact bytes.
func (s *ExportService) Download(ctx context.Context, token string) ([]byte, string, error) {
	if s.signer == nil || s.artifacts == nil {
		return nil, "", appErrors.Clone(appErrors.ErrInternal, "exports not configured")
	}
	_, artifact, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	file, err := s.artifacts.Open(artifact)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "artifact missing")
	}
	defer file.Close() //nolint:errcheck
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "read artifact")
	}
	return data, artifact, nil
}

func (s *ExportService) process(ctx context.Context, task jobs.Task[models.Session]) error {
	job, err := s.store.GetByID(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", task.ID, err)
	}

	running := models.ExportStatusRunning
	_ = s.store.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &running})

	data, artifact, err := s.render(ctx, task.Payload, job)
	if err != nil {
		s.fail(ctx, job.ID, err)
		return err
	}
	if _, err := s.artifacts.Save(artifact, data); err != nil {
		s.fail(ctx, job.ID, err)
		return err
	}

	token, _, err := s.signer.Generate(job.ID, artifact)
	if err != nil {
		s.fail(ctx, job.ID, err)
		return err
	}
	resultURL := "/exports/download?token=" + token
	finished := models.ExportStatusFinished
	progress := 100
	now := s.now().UTC()
	return s.store.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:     &finished,
		Progress:   &progress,
		ResultURL:  &resultURL,
		FinishedAt: &now,
	})
}

func (s *ExportService) render(ctx context.Context, session models.Session, job *models.ExportJob) ([]byte, string, error) {
	var params exportParams
	if err := json.Unmarshal([]byte(job.Params), &params); err != nil {
		return nil, "", fmt.Errorf("decode export params: %w", err)
	}

	switch job.Type {
	case ExportTypeAttendanceCSV:
		report, err := s.attendance.SectionStatistics(ctx, session, params.SectionID)
		if err != nil {
			return nil, "", err
		}
		data, err := export.CSV(attendanceDataset(report))
		return data, job.ID + ".csv", err
	case ExportTypeCourseCSV:
		report, err := s.reports.CourseReport(ctx, session, params.CourseID)
		if err != nil {
			return nil, "", err
		}
		data, err := export.CSV(courseDataset(report))
		return data, job.ID + ".csv", err
	case ExportTypeCoursePDF:
		report, err := s.reports.CourseReport(ctx, session, params.CourseID)
		if err != nil {
			return nil, "", err
		}
		data, err := export.PDF(courseDataset(report), "Course Report "+params.CourseID)
		return data, job.ID + ".pdf", err
	default:
		return nil, "", fmt.Errorf("unknown export type %q", job.Type)
	}
}

func (s *ExportService) fail(ctx context.Context, jobID string, cause error) {
	failed := models.ExportStatusFailed
	message := cause.Error()
	now := s.now().UTC()
	if err := s.store.Update(ctx, jobID, repository.UpdateExportJobParams{
		Status:       &failed,
		ErrorMessage: &message,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Error("export failure not persisted", zap.String("job_id", jobID), zap.Error(err))
	}
}

func attendanceDataset(report *dto.AttendanceReportResponse) export.Dataset {
	dataset := export.Dataset{Headers: []string{"student_id", "present", "late", "excused", "absent", "sessions", "rate"}}
	for _, row := range report.Students {
		rate := "N/A"
		if row.Rate != nil {
			rate = strconv.FormatFloat(*row.Rate, 'f', 0, 64)
		}
		dataset.AddRow(map[string]string{
			"student_id": row.StudentID,
			"present":    strconv.Itoa(row.Present),
			"late":       strconv.Itoa(row.Late),
			"excused":    strconv.Itoa(row.Excused),
			"absent":     strconv.Itoa(row.Absent),
			"sessions":   strconv.Itoa(row.TotalSessions),
			"rate":       rate,
		})
	}
	return dataset
}

func courseDataset(report *dto.CourseReportResponse) export.Dataset {
	dataset := export.Dataset{Headers: []string{"activity_id", "submissions", "graded", "ungraded", "late", "average"}}
	for _, rollup := range report.Grades {
		avg := "N/A"
		if rollup.AveragePercentage != nil {
			avg = strconv.FormatFloat(*rollup.AveragePercentage, 'f', 1, 64)
		}
		dataset.AddRow(map[string]string{
			"activity_id": rollup.ActivityID,
			"submissions": strconv.Itoa(rollup.Submissions),
			"graded":      strconv.Itoa(rollup.Graded),
			"ungraded":    strconv.Itoa(rollup.Ungraded),
			"late":        strconv.Itoa(rollup.Late),
			"average":     avg,
		})
	}
	return dataset
}

func jobResponse(job *models.ExportJob) *dto.ExportJobResponse {
	return &dto.ExportJobResponse{
		ID:        job.ID,
		Type:      job.Type,
		Status:    string(job.Status),
		Progress:  job.Progress,
		ResultURL: job.ResultURL,
	}
}
