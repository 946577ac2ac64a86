package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LMS BFF API",
        "description": "Aggregation layer over the LMS owning services",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Aggregate", "description": "Generic multi-source reads"},
        {"name": "Dashboard", "description": "Landing-page counters"},
        {"name": "Roster", "description": "Course rosters with joined detail"},
        {"name": "Content", "description": "Course module and lesson trees"},
        {"name": "Attendance", "description": "Attendance statistics and marking"},
        {"name": "Grades", "description": "Grading rollups and passthrough"},
        {"name": "Payments", "description": "Payment views and lifecycle"},
        {"name": "Enrollments", "description": "Enrollment lifecycle"},
        {"name": "Reports", "description": "Cross-source reports and exports"},
        {"name": "Health", "description": "Liveness and source status"}
    ],
    "paths": {
        "/aggregate": {
            "get": {
                "tags": ["Aggregate"],
                "summary": "Fetch raw collections from multiple sources in one round trip",
                "parameters": [
                    {"name": "sources", "in": "query", "required": true, "type": "string", "description": "Comma-separated source names"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/overview": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard counters across all owning services",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/roster": {
            "get": {
                "tags": ["Roster"],
                "summary": "Course roster with student, course, and section detail joined in",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/outline": {
            "get": {
                "tags": ["Content"],
                "summary": "Course modules with lessons grouped per module",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "Grade rollups per activity for one course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sections/{id}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Per-student attendance rates for one section",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/marks": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record one attendance mark via the owning service",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/grade": {
            "post": {
                "tags": ["Grades"],
                "summary": "Grade one submission via the assessment service",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeSubmissionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments": {
            "get": {
                "tags": ["Payments"],
                "summary": "Payments joined with student and course detail",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Payments"],
                "summary": "Submit a payment request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/{id}/status": {
            "patch": {
                "tags": ["Payments"],
                "summary": "Advance a pending payment to a terminal state",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student in a course section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}/status": {
            "patch": {
                "tags": ["Enrollments"],
                "summary": "Update an enrollment's lifecycle status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEnrollmentStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Remove an enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/reports/courses/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Enrollment and grading report for one course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/instructors": {
            "get": {
                "tags": ["Reports"],
                "summary": "Teaching load per instructor",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/students/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Enrollment, grade, and attendance report for one student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue an asynchronous report export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnqueueExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Inspect an export job",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export artifact via signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Artifact bytes"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "MarkAttendanceRequest": {
            "type": "object",
            "properties": {
                "section_id": {"type": "string"},
                "student_id": {"type": "string"},
                "date": {"type": "string"},
                "status": {"type": "string", "enum": ["present", "late", "excused", "absent"]}
            },
            "required": ["section_id", "student_id", "date", "status"]
        },
        "GradeSubmissionRequest": {
            "type": "object",
            "properties": {
                "submission_id": {"type": "string"},
                "activity_id": {"type": "string"},
                "score": {"type": "number"}
            },
            "required": ["submission_id", "activity_id", "score"]
        },
        "CreatePaymentRequest": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string"},
                "amount": {"type": "number"}
            },
            "required": ["course_id", "amount"]
        },
        "UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "payment_id": {"type": "string"},
                "status": {"type": "string", "enum": ["completed", "failed", "cancelled"]}
            },
            "required": ["status"]
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "course_id": {"type": "string"},
                "section_id": {"type": "string"}
            },
            "required": ["student_id", "course_id", "section_id"]
        },
        "UpdateEnrollmentStatusRequest": {
            "type": "object",
            "properties": {
                "enrollment_id": {"type": "string"},
                "status": {"type": "string", "enum": ["enrolled", "active", "completed", "dropped", "withdrawn"]}
            },
            "required": ["status"]
        },
        "EnqueueExportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["attendance_csv", "course_report_csv", "course_report_pdf"]},
                "course_id": {"type": "string"},
                "section_id": {"type": "string"}
            },
            "required": ["type"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "source": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
