package models

// Student is the identity service's view of a learner.
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Instructor is the identity service's view of a course instructor.
type Instructor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Course is owned by the courses service.
type Course struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Instructor Reference `json:"instructor"`
}

// Section is one scheduled offering of a course.
type Section struct {
	ID         string    `json:"id"`
	Course     Reference `json:"course"`
	Name       string    `json:"name"`
	Capacity   int       `json:"capacity"`
	Enrolled   int       `json:"enrolled"`
	Instructor Reference `json:"instructor"`
}

// CourseModule is a unit of course content.
type CourseModule struct {
	ID     string    `json:"id"`
	Course Reference `json:"course"`
	Title  string    `json:"title"`
	Order  int       `json:"order"`
}

// Lesson belongs to a module.
type Lesson struct {
	ID     string    `json:"id"`
	Module Reference `json:"module"`
	Title  string    `json:"title"`
	Order  int       `json:"order"`
}

// Announcement is a platform-wide notice.
type Announcement struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Active bool   `json:"active"`
}
