package academic

import (
	"context"

	"github.com/youbihi/attest/core"
)

var (
	// errors
	ErrInstitutionNotFound = core.NotFoundErr("institution not found")
	ErrStudentNotFound     = core.NotFoundErr("student not found")
	ErrProfessorNotFound   = core.NotFoundErr("professor not found")
	ErrSectionNotFound     = core.NotFoundErr("section not found")
	ErrSemesterNotFound    = core.NotFoundErr("semester not found")
	ErrAssignmentNotFound  = core.NotFoundErr("course assignment not found")
)

type (
	// Repository provides the administrative lookups the attendance engine
	// consumes, plus thin persistence for the administrative entities.
	Repository interface {
		CreateInstitution(ctx context.Context, inst Institution, exec ...core.DBExecutor) (Institution, error)
		GetInstitutionByID(ctx context.Context, id string, exec ...core.DBExecutor) (Institution, error)

		CreateDepartment(ctx context.Context, dep Department, exec ...core.DBExecutor) (Department, error)
		CreateMajor(ctx context.Context, mjr Major, exec ...core.DBExecutor) (Major, error)

		CreateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		FilterClassesByInstitution(ctx context.Context, institutionID string, exec ...core.DBExecutor) ([]Class, error)

		CreateSection(ctx context.Context, sec Section, exec ...core.DBExecutor) (Section, error)
		GetSectionByID(ctx context.Context, id string, exec ...core.DBExecutor) (Section, error)
		FilterSectionsByClass(ctx context.Context, classID string, exec ...core.DBExecutor) ([]Section, error)

		CreateSemester(ctx context.Context, sem Semester, exec ...core.DBExecutor) (Semester, error)
		GetSemesterByID(ctx context.Context, id string, exec ...core.DBExecutor) (Semester, error)
		FilterSemestersByClass(ctx context.Context, classID string, exec ...core.DBExecutor) ([]Semester, error)

		CreateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)

		CreateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Assignment, error)
		FilterAssignmentsBySemester(ctx context.Context, semesterID string, exec ...core.DBExecutor) ([]Assignment, error)

		CreateProfessor(ctx context.Context, prof Professor, exec ...core.DBExecutor) (Professor, error)
		GetProfessorByID(ctx context.Context, id string, exec ...core.DBExecutor) (Professor, error)
		GetProfessorByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (Professor, error)

		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		GetStudentByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (Student, error)
	}

	// Service is a thin persistence wrapper; the administrative entities
	// carry no business rules of their own.
	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateInstitution(ctx context.Context, inst Institution) (Institution, error) {
	return svc.repo.CreateInstitution(ctx, inst)
}

func (svc *Service) GetInstitution(ctx context.Context, id string) (Institution, error) {
	return svc.repo.GetInstitutionByID(ctx, id)
}

func (svc *Service) CreateSection(ctx context.Context, sec Section) (Section, error) {
	return svc.repo.CreateSection(ctx, sec)
}

func (svc *Service) CreateSemester(ctx context.Context, sem Semester) (Semester, error) {
	return svc.repo.CreateSemester(ctx, sem)
}

func (svc *Service) CreateStudent(ctx context.Context, std Student) (Student, error) {
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

// GetStudentForUser resolves the student profile behind a user account.
func (svc *Service) GetStudentForUser(ctx context.Context, userID string) (Student, error) {
	return svc.repo.GetStudentByUserID(ctx, userID)
}

// GetProfessorForUser resolves the professor profile behind a user account.
func (svc *Service) GetProfessorForUser(ctx context.Context, userID string) (Professor, error) {
	return svc.repo.GetProfessorByUserID(ctx, userID)
}

func (svc *Service) CreateProfessor(ctx context.Context, prof Professor) (Professor, error) {
	return svc.repo.CreateProfessor(ctx, prof)
}
