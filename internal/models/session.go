package models

// UserRole scopes what a session may read or write.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleStudent    UserRole = "STUDENT"
)

// Session is the authenticated caller, threaded explicitly into every
// aggregation call. Nothing in this layer reads ambient user state.
type Session struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
}

// CanManage reports whether the session may perform admin-only writes.
func (s Session) CanManage() bool {
	return s.Role == RoleAdmin
}
