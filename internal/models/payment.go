package models

import "time"

// PaymentStatus represents the payment approval lifecycle.
type PaymentStatus string

const (
	// PaymentStatusPendingApproval is the entry state: the student has
	// submitted a payment request, before any gateway interaction.
	PaymentStatusPendingApproval PaymentStatus = "pending_paypal_approval"
	PaymentStatusCompleted       PaymentStatus = "completed"
	PaymentStatusFailed          PaymentStatus = "failed"
	PaymentStatusCancelled       PaymentStatus = "cancelled"
)

// Valid returns true when the status is a supported value.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPendingApproval, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is final. Terminal states admit no
// further transitions; there is no automatic timeout out of pending either.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether an explicit status update from s to next is
// allowed. Only pending may advance, and only to a terminal state.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	if s != PaymentStatusPendingApproval {
		return false
	}
	return next.Terminal()
}

// Payment is a payment request row owned by the payments service.
type Payment struct {
	ID        string        `json:"id"`
	Student   Reference     `json:"student"`
	Course    Reference     `json:"course"`
	Amount    float64       `json:"amount"`
	Status    PaymentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
