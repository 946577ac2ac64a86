package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. No transition table is enforced: admins may
// set any status directly.
const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
	EnrollmentStatusWithdrawn EnrollmentStatus = "withdrawn"
)

// EnrollmentBucket is the status grouping used by every rollup.
type EnrollmentBucket string

const (
	BucketActive    EnrollmentBucket = "active"
	BucketCompleted EnrollmentBucket = "completed"
	BucketDropped   EnrollmentBucket = "dropped"
)

// Valid returns true when the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusEnrolled, EnrollmentStatusActive, EnrollmentStatusCompleted,
		EnrollmentStatusDropped, EnrollmentStatusWithdrawn:
		return true
	default:
		return false
	}
}

// Bucket maps a status to its rollup bucket. Treating enrolled and active as
// one "currently taking" bucket is intentional and relied on by consumers.
func (s EnrollmentStatus) Bucket() EnrollmentBucket {
	switch s {
	case EnrollmentStatusEnrolled, EnrollmentStatusActive:
		return BucketActive
	case EnrollmentStatusCompleted:
		return BucketCompleted
	default:
		return BucketDropped
	}
}

// Enrollment captures a student's registration to a course section. Reference
// fields arrive in either bare or embedded form depending on the endpoint.
type Enrollment struct {
	ID        string           `json:"id"`
	Student   Reference        `json:"student"`
	Course    Reference        `json:"course"`
	Section   Reference        `json:"section"`
	Status    EnrollmentStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}
