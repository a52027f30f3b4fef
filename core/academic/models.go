package academic

import "time"

// Institution is the top of the administrative hierarchy; its reference
// coordinates and radius define the geofence for attendance verification.
type Institution struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters float64   `json:"radius_meters"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

type Department struct {
	ID            string `json:"id"`
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name"`
}

type Major struct {
	ID           string `json:"id"`
	DepartmentID string `json:"department_id"`
	Name         string `json:"name"`
}

// Class is an academic class (a promotion within a major, e.g. "CS 2nd year").
type Class struct {
	ID      string `json:"id"`
	MajorID string `json:"major_id"`
	Name    string `json:"name"`
}

// Section is a cohort of students within a class, expected to attend
// a given set of sessions together.
type Section struct {
	ID      string `json:"id"`
	ClassID string `json:"class_id"`
	Name    string `json:"name"`
}

// Semester belongs to a class; its date bounds drive semester-wide
// session generation. Zero bounds mean "not set yet".
type Semester struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"class_id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type Course struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Assignment ties a professor to a course taught during a semester.
type Assignment struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	SemesterID  string `json:"semester_id"`
	ProfessorID string `json:"professor_id"`
}

type Professor struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

type Student struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	InstitutionID string `json:"institution_id"`
	SectionID     string `json:"section_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}
