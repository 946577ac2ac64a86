// Package source talks to the owning data services. Each service exposes
// list/get/create/update/delete over JSON HTTP with a
// {success, data, pagination} envelope; this layer adds no retry or backoff
// and never assumes how a service encodes its references.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

// FetchObserver receives the timing of every upstream request, success or
// failure. The metrics service implements it.
type FetchObserver interface {
	ObserveFetch(source string, duration time.Duration)
}

// Client reads and writes one owning service's collections.
type Client struct {
	name     string
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	observer FetchObserver
}

// NewClient constructs a client for one owning service.
func NewClient(name, baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Instrument attaches a fetch observer. Safe to leave unset.
func (c *Client) Instrument(observer FetchObserver) {
	c.observer = observer
}

type envelope struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Message    string             `json:"message,omitempty"`
}

// List fetches a collection snapshot.
func (c *Client) List(ctx context.Context, path string, query url.Values) ([]models.Record, *models.Pagination, error) {
	env, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, nil, err
	}
	var records []models.Record
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &records); err != nil {
			return nil, nil, c.unavailable(fmt.Errorf("decode %s list: %w", path, err))
		}
	}
	return records, env.Pagination, nil
}

// Get fetches one record by path.
func (c *Client) Get(ctx context.Context, path string) (models.Record, error) {
	env, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord(env.Data)
}

// Create posts a new record to the owning service.
func (c *Client) Create(ctx context.Context, path string, payload interface{}) (models.Record, error) {
	env, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeRecord(env.Data)
}

// Update patches an existing record on the owning service.
func (c *Client) Update(ctx context.Context, path string, payload interface{}) (models.Record, error) {
	env, err := c.do(ctx, http.MethodPut, path, nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeRecord(env.Data)
}

// Delete removes a record on the owning service.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload interface{}) (*envelope, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "encode request payload")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, c.unavailable(err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.observer != nil {
		c.observer.ObserveFetch(c.name, time.Since(start))
	}
	if err != nil {
		c.logger.Warn("source request failed",
			zap.String("source", c.name),
			zap.String("path", path),
			zap.Error(err))
		return nil, c.unavailable(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.unavailable(err)
	}

	c.logger.Debug("source request",
		zap.String("source", c.name),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	env := &envelope{}
	if len(raw) > 0 {
		// Non-envelope bodies from older services are tolerated as bare data.
		if err := json.Unmarshal(raw, env); err != nil || (env.Data == nil && !env.Success) {
			env = &envelope{Success: resp.StatusCode < 300, Data: raw}
		}
	}

	if resp.StatusCode >= 300 {
		return nil, c.statusError(resp.StatusCode, env.Message)
	}
	return env, nil
}

func (c *Client) statusError(status int, message string) *appErrors.Error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch {
	case status == http.StatusNotFound:
		return appErrors.ForSource(appErrors.Clone(appErrors.ErrNotFound, message), c.name)
	case status == http.StatusConflict:
		return appErrors.ForSource(appErrors.Clone(appErrors.ErrConflict, message), c.name)
	case status >= 400 && status < 500:
		return appErrors.ForSource(appErrors.New(appErrors.ErrValidation.Code, status, message), c.name)
	default:
		return c.unavailable(fmt.Errorf("%s responded %d: %s", c.name, status, message))
	}
}

func (c *Client) unavailable(err error) *appErrors.Error {
	return appErrors.ForSource(
		appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, fmt.Sprintf("source %s unavailable", c.name)),
		c.name,
	)
}

func decodeRecord(data json.RawMessage) (models.Record, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var record models.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode record")
	}
	return record, nil
}

// DecodeAs converts raw records into typed models via JSON round-trip. It is
// used where statistics need typed fields rather than generic records.
func DecodeAs[T any](records []models.Record) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode record")
		}
		var typed T
		if err := json.Unmarshal(raw, &typed); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode typed record")
		}
		out = append(out, typed)
	}
	return out, nil
}
