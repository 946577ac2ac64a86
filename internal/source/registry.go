package source

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	"github.com/alifdwt/lms-bff-api/pkg/config"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

type route struct {
	client *Client
	path   string
}

// Registry maps source collection names onto the client and path that serve
// them. Requesting an unknown name is programmer error and fails loudly.
type Registry struct {
	routes map[string]route
}

// NewRegistry wires the configured owning services to their collections.
func NewRegistry(cfg config.SourcesConfig, logger *zap.Logger) *Registry {
	timeout := cfg.Timeout
	identity := NewClient("identity", cfg.IdentityURL, timeout, logger)
	courses := NewClient("courses", cfg.CoursesURL, timeout, logger)
	content := NewClient("content", cfg.ContentURL, timeout, logger)
	assessment := NewClient("assessment", cfg.AssessmentURL, timeout, logger)
	payments := NewClient("payments", cfg.PaymentsURL, timeout, logger)
	attendance := NewClient("attendance", cfg.AttendanceURL, timeout, logger)

	return &Registry{routes: map[string]route{
		models.SourceStudents:      {identity, "/students"},
		models.SourceInstructors:   {identity, "/instructors"},
		models.SourceCourses:       {courses, "/courses"},
		models.SourceSections:      {courses, "/sections"},
		models.SourceEnrollments:   {courses, "/enrollments"},
		models.SourceModules:       {content, "/modules"},
		models.SourceLessons:       {content, "/lessons"},
		models.SourceAnnouncements: {content, "/announcements"},
		models.SourceActivities:    {assessment, "/activities"},
		models.SourceSubmissions:   {assessment, "/submissions"},
		models.SourceAttendance:    {attendance, "/sessions"},
		models.SourcePayments:      {payments, "/payments"},
	}}
}

// NewRegistryWithRoutes builds a registry over explicit routes. Used by tests
// and by deployments that split collections differently.
func NewRegistryWithRoutes(clients map[string]*Client, paths map[string]string) *Registry {
	routes := make(map[string]route, len(paths))
	for source, path := range paths {
		routes[source] = route{client: clients[source], path: path}
	}
	return &Registry{routes: routes}
}

// Instrument attaches a fetch observer to every routed client.
func (r *Registry) Instrument(observer FetchObserver) {
	seen := make(map[*Client]struct{}, len(r.routes))
	for _, rt := range r.routes {
		if rt.client == nil {
			continue
		}
		if _, done := seen[rt.client]; done {
			continue
		}
		rt.client.Instrument(observer)
		seen[rt.client] = struct{}{}
	}
}

// Known reports whether the registry serves the named source.
func (r *Registry) Known(source string) bool {
	_, ok := r.routes[source]
	return ok
}

// Fetch reads one source collection snapshot.
func (r *Registry) Fetch(ctx context.Context, source string, query url.Values) ([]models.Record, error) {
	rt, ok := r.routes[source]
	if !ok || rt.client == nil {
		return nil, appErrors.Clone(appErrors.ErrAggregationInput, fmt.Sprintf("unknown source %q", source))
	}
	records, _, err := rt.client.List(ctx, rt.path, query)
	return records, err
}

// Task builds the coordinator task for one source.
func (r *Registry) Task(source string, query url.Values) fetch.Task {
	return fetch.Task{
		Source: source,
		Run: func(ctx context.Context) ([]models.Record, error) {
			return r.Fetch(ctx, source, query)
		},
	}
}

// Tasks builds one task per requested source, validating names up front so a
// malformed request list fails before any I/O is issued.
func (r *Registry) Tasks(sources []string, query url.Values) ([]fetch.Task, error) {
	tasks := make([]fetch.Task, 0, len(sources))
	for _, source := range sources {
		if !r.Known(source) {
			return nil, appErrors.Clone(appErrors.ErrAggregationInput, fmt.Sprintf("unknown source %q", source))
		}
		tasks = append(tasks, r.Task(source, query))
	}
	return tasks, nil
}

// CreateRecord dispatches a create to the owning service. Writes are never
// retried here and never span more than one service.
func (r *Registry) CreateRecord(ctx context.Context, source string, payload interface{}) (models.Record, error) {
	rt, ok := r.routes[source]
	if !ok || rt.client == nil {
		return nil, appErrors.Clone(appErrors.ErrAggregationInput, fmt.Sprintf("unknown source %q", source))
	}
	return rt.client.Create(ctx, rt.path, payload)
}

// UpdateRecord dispatches an update for one record to the owning service.
func (r *Registry) UpdateRecord(ctx context.Context, source, id string, payload interface{}) (models.Record, error) {
	rt, ok := r.routes[source]
	if !ok || rt.client == nil {
		return nil, appErrors.Clone(appErrors.ErrAggregationInput, fmt.Sprintf("unknown source %q", source))
	}
	return rt.client.Update(ctx, rt.path+"/"+url.PathEscape(id), payload)
}

// DeleteRecord dispatches a delete for one record to the owning service.
func (r *Registry) DeleteRecord(ctx context.Context, source, id string) error {
	rt, ok := r.routes[source]
	if !ok || rt.client == nil {
		return appErrors.Clone(appErrors.ErrAggregationInput, fmt.Sprintf("unknown source %q", source))
	}
	return rt.client.Delete(ctx, rt.path+"/"+url.PathEscape(id))
}

// GetRecord fetches one record by id from the owning service.
func (r *Registry) GetRecord(ctx context.Context, source, id string) (models.Record, error) {
	rt, ok := r.routes[source]
	if !ok || rt.client == nil {
		return nil, appErrors.Clone(appErrors.ErrAggregationInput, fmt.Sprintf("unknown source %q", source))
	}
	return rt.client.Get(ctx, rt.path+"/"+url.PathEscape(id))
}
