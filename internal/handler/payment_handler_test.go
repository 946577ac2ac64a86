package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/middleware"
	"github.com/alifdwt/lms-bff-api/internal/models"
	"github.com/alifdwt/lms-bff-api/internal/service"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

type fakePaymentSrv struct {
	list      *service.PaymentListResponse
	record    models.Record
	err       error
	lastReq   service.UpdateStatusRequest
	createReq service.CreatePaymentRequest
}

func (f *fakePaymentSrv) List(context.Context, models.Session) (*service.PaymentListResponse, error) {
	return f.list, f.err
}

func (f *fakePaymentSrv) CreateRequest(_ context.Context, _ models.Session, req service.CreatePaymentRequest) (models.Record, error) {
	f.createReq = req
	return f.record, f.err
}

func (f *fakePaymentSrv) UpdateStatus(_ context.Context, _ models.Session, req service.UpdateStatusRequest) (models.Record, error) {
	f.lastReq = req
	return f.record, f.err
}

func jsonContext(t *testing.T, method, target string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextSessionKey, models.Session{UserID: "u1", Role: models.RoleAdmin})
	return c, rec
}

func TestPaymentHandlerCreate(t *testing.T) {
	srv := &fakePaymentSrv{record: models.Record{"id": "p1"}}
	handler := NewPaymentHandler(srv)

	c, rec := jsonContext(t, http.MethodPost, "/payments", service.CreatePaymentRequest{
		CourseID: "c1",
		Amount:   150000,
	})
	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "c1", srv.createReq.CourseID)
}

func TestPaymentHandlerCreateRejectsBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPaymentHandler(&fakePaymentSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader([]byte("{")))
	c.Set(middleware.ContextSessionKey, models.Session{UserID: "u1"})

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentHandlerUpdateStatusPathWins(t *testing.T) {
	srv := &fakePaymentSrv{record: models.Record{"id": "p1"}}
	handler := NewPaymentHandler(srv)

	c, rec := jsonContext(t, http.MethodPatch, "/payments/p1/status", service.UpdateStatusRequest{
		PaymentID: "ignored",
		Status:    string(models.PaymentStatusCompleted),
	})
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", srv.lastReq.PaymentID)
}

func TestPaymentHandlerUpdateStatusConflict(t *testing.T) {
	srv := &fakePaymentSrv{err: appErrors.ErrInvalidTransition}
	handler := NewPaymentHandler(srv)

	c, rec := jsonContext(t, http.MethodPatch, "/payments/p1/status", service.UpdateStatusRequest{
		PaymentID: "p1",
		Status:    string(models.PaymentStatusCancelled),
	})
	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, envelope.Error["code"])
}

func TestPaymentHandlerListDegraded(t *testing.T) {
	handler := NewPaymentHandler(&fakePaymentSrv{
		list: &service.PaymentListResponse{
			Verdict: fetch.Verdict{
				Status:        fetch.StatusDegraded,
				FailedSources: []string{models.SourceStudents},
			},
		},
	})

	c, rec := authedContext(t, http.MethodGet, "/payments")
	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.NotNil(t, envelope.Meta["degraded"])
}
