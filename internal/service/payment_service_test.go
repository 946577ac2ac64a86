package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

func TestCreatePaymentEntersPendingApproval(t *testing.T) {
	sources := newFakeSources()
	svc := NewPaymentService(sources, sources, nil, nil, zap.NewNop())

	session := models.Session{UserID: "s1", Role: models.RoleStudent}
	record, err := svc.CreateRequest(context.Background(), session, CreatePaymentRequest{
		CourseID: "c1",
		Amount:   250000,
	})
	require.NoError(t, err)
	require.NotNil(t, record)

	payload, ok := sources.created[models.SourcePayments].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "s1", payload["student"])
	assert.Equal(t, string(models.PaymentStatusPendingApproval), payload["status"])
}

func TestCreatePaymentValidatesPayload(t *testing.T) {
	sources := newFakeSources()
	svc := NewPaymentService(sources, sources, nil, nil, zap.NewNop())

	_, err := svc.CreateRequest(context.Background(), testSession(), CreatePaymentRequest{Amount: -1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, sources.created)
}

func TestUpdatePaymentStatusPendingToTerminal(t *testing.T) {
	sources := newFakeSources()
	sources.getBack = models.Record{"id": "p1", "status": string(models.PaymentStatusPendingApproval)}
	svc := NewPaymentService(sources, sources, nil, nil, zap.NewNop())

	record, err := svc.UpdateStatus(context.Background(), testSession(), UpdateStatusRequest{
		PaymentID: "p1",
		Status:    string(models.PaymentStatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", record.ID())

	payload, ok := sources.updated["payments/p1"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(models.PaymentStatusCompleted), payload["status"])
}

func TestUpdatePaymentStatusRejectsTerminalOrigin(t *testing.T) {
	sources := newFakeSources()
	sources.getBack = models.Record{"id": "p1", "status": string(models.PaymentStatusCompleted)}
	svc := NewPaymentService(sources, sources, nil, nil, zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), testSession(), UpdateStatusRequest{
		PaymentID: "p1",
		Status:    string(models.PaymentStatusCancelled),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	assert.Empty(t, sources.updated)
}

func TestUpdatePaymentStatusUnknownValue(t *testing.T) {
	sources := newFakeSources()
	svc := NewPaymentService(sources, sources, nil, nil, zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), testSession(), UpdateStatusRequest{
		PaymentID: "p1",
		Status:    "refunded",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPaymentListDegradesWhenLedgerDown(t *testing.T) {
	sources := newFakeSources()
	sources.fail[models.SourcePayments] = appErrors.Clone(appErrors.ErrSourceUnavailable, "payments down")
	sources.records[models.SourceStudents] = nRecords(1)
	sources.records[models.SourceCourses] = nRecords(1)
	svc := NewPaymentService(sources, sources, nil, nil, zap.NewNop())

	list, err := svc.List(context.Background(), testSession())
	require.NoError(t, err)
	assert.Empty(t, list.Payments)
	assert.Contains(t, list.Verdict.FailedSources, models.SourcePayments)
}
