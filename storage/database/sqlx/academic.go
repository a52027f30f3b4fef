package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/academic"
)

type (
	institutionRow struct {
		ID           string    `db:"id"`
		Name         string    `db:"name"`
		Latitude     float64   `db:"latitude"`
		Longitude    float64   `db:"longitude"`
		RadiusMeters float64   `db:"radius_meters"`
		CreatedAt    time.Time `db:"created_at"`
	}

	sectionRow struct {
		ID      string `db:"id"`
		ClassID string `db:"class_id"`
		Name    string `db:"name"`
	}

	classRow struct {
		ID      string `db:"id"`
		MajorID string `db:"major_id"`
		Name    string `db:"name"`
	}

	semesterRow struct {
		ID        string    `db:"id"`
		ClassID   string    `db:"class_id"`
		Name      string    `db:"name"`
		StartDate null.Time `db:"start_date"`
		EndDate   null.Time `db:"end_date"`
	}

	assignmentRow struct {
		ID          string `db:"id"`
		CourseID    string `db:"course_id"`
		SemesterID  string `db:"semester_id"`
		ProfessorID string `db:"professor_id"`
	}

	professorRow struct {
		ID            string      `db:"id"`
		UserID        null.String `db:"user_id"`
		InstitutionID string      `db:"institution_id"`
		Name          string      `db:"name"`
		Email         null.String `db:"email"`
	}

	studentRow struct {
		ID            string      `db:"id"`
		UserID        null.String `db:"user_id"`
		InstitutionID null.String `db:"institution_id"`
		SectionID     null.String `db:"section_id"`
		Name          string      `db:"name"`
		Email         null.String `db:"email"`
	}
)

type academicRepository struct {
	exec core.DBExecutor
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(exec core.DBExecutor) *academicRepository {
	return &academicRepository{exec: exec}
}

func (repo academicRepository) CreateInstitution(ctx context.Context, inst academic.Institution, exec ...core.DBExecutor) (academic.Institution, error) {
	inst.ID = uuid.New().String()
	q := `INSERT INTO institution (id, name, latitude, longitude, radius_meters, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		inst.ID, inst.Name, inst.Latitude, inst.Longitude, inst.RadiusMeters, inst.CreatedAt.UTC())
	if err != nil {
		return academic.Institution{}, errors.Wrap(err, "inserting institution")
	}
	return inst, nil
}

func (repo academicRepository) GetInstitutionByID(ctx context.Context, id string, exec ...core.DBExecutor) (academic.Institution, error) {
	var rows []institutionRow
	q := `SELECT * FROM institution WHERE id = $1`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, id); err != nil {
		return academic.Institution{}, errors.Wrap(err, "finding institution")
	}
	if len(rows) == 0 {
		return academic.Institution{}, academic.ErrInstitutionNotFound
	}
	r := rows[0]
	return academic.Institution{
		ID:           r.ID,
		Name:         r.Name,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		RadiusMeters: r.RadiusMeters,
		CreatedAt:    r.CreatedAt,
	}, nil
}

func (repo academicRepository) CreateDepartment(ctx context.Context, dep academic.Department, exec ...core.DBExecutor) (academic.Department, error) {
	dep.ID = uuid.New().String()
	q := `INSERT INTO department (id, institution_id, name) VALUES ($1, $2, $3)`
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, q, dep.ID, dep.InstitutionID, dep.Name); err != nil {
		return academic.Department{}, errors.Wrap(err, "inserting department")
	}
	return dep, nil
}

func (repo academicRepository) CreateMajor(ctx context.Context, mjr academic.Major, exec ...core.DBExecutor) (academic.Major, error) {
	mjr.ID = uuid.New().String()
	q := `INSERT INTO major (id, department_id, name) VALUES ($1, $2, $3)`
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, q, mjr.ID, mjr.DepartmentID, mjr.Name); err != nil {
		return academic.Major{}, errors.Wrap(err, "inserting major")
	}
	return mjr, nil
}

func (repo academicRepository) CreateClass(ctx context.Context, cls academic.Class, exec ...core.DBExecutor) (academic.Class, error) {
	cls.ID = uuid.New().String()
	q := `INSERT INTO class (id, major_id, name) VALUES ($1, $2, $3)`
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, q, cls.ID, cls.MajorID, cls.Name); err != nil {
		return academic.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo academicRepository) FilterClassesByInstitution(ctx context.Context, institutionID string, exec ...core.DBExecutor) ([]academic.Class, error) {
	var rows []classRow
	q := `SELECT c.* FROM class c
		JOIN major m ON m.id = c.major_id
		JOIN department d ON d.id = m.department_id
		WHERE d.institution_id = $1`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, institutionID); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]academic.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, academic.Class{ID: r.ID, MajorID: r.MajorID, Name: r.Name})
	}
	return classes, nil
}

func (repo academicRepository) CreateSection(ctx context.Context, sec academic.Section, exec ...core.DBExecutor) (academic.Section, error) {
	sec.ID = uuid.New().String()
	q := `INSERT INTO section (id, class_id, name) VALUES ($1, $2, $3)`
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, q, sec.ID, sec.ClassID, sec.Name); err != nil {
		return academic.Section{}, errors.Wrap(err, "inserting section")
	}
	return sec, nil
}

func (repo academicRepository) GetSectionByID(ctx context.Context, id string, exec ...core.DBExecutor) (academic.Section, error) {
	var rows []sectionRow
	q := `SELECT * FROM section WHERE id = $1`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, id); err != nil {
		return academic.Section{}, errors.Wrap(err, "finding section")
	}
	if len(rows) == 0 {
		return academic.Section{}, academic.ErrSectionNotFound
	}
	return academic.Section{ID: rows[0].ID, ClassID: rows[0].ClassID, Name: rows[0].Name}, nil
}

func (repo academicRepository) FilterSectionsByClass(ctx context.Context, classID string, exec ...core.DBExecutor) ([]academic.Section, error) {
	var rows []sectionRow
	q := `SELECT * FROM section WHERE class_id = $1 ORDER BY name`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying sections")
	}
	sections := make([]academic.Section, 0, len(rows))
	for _, r := range rows {
		sections = append(sections, academic.Section{ID: r.ID, ClassID: r.ClassID, Name: r.Name})
	}
	return sections, nil
}

func (repo academicRepository) CreateSemester(ctx context.Context, sem academic.Semester, exec ...core.DBExecutor) (academic.Semester, error) {
	sem.ID = uuid.New().String()
	q := `INSERT INTO semester (id, class_id, name, start_date, end_date) VALUES ($1, $2, $3, $4, $5)`
	_, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		sem.ID, sem.ClassID, sem.Name,
		null.NewTime(sem.StartDate.UTC(), !sem.StartDate.IsZero()),
		null.NewTime(sem.EndDate.UTC(), !sem.EndDate.IsZero()),
	)
	if err != nil {
		return academic.Semester{}, errors.Wrap(err, "inserting semester")
	}
	return sem, nil
}

func (r semesterRow) unrow() academic.Semester {
	return academic.Semester{
		ID:        r.ID,
		ClassID:   r.ClassID,
		Name:      r.Name,
		StartDate: r.StartDate.Time,
		EndDate:   r.EndDate.Time,
	}
}

func (repo academicRepository) GetSemesterByID(ctx context.Context, id string, exec ...core.DBExecutor) (academic.Semester, error) {
	var rows []semesterRow
	q := `SELECT * FROM semester WHERE id = $1`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, id); err != nil {
		return academic.Semester{}, errors.Wrap(err, "finding semester")
	}
	if len(rows) == 0 {
		return academic.Semester{}, academic.ErrSemesterNotFound
	}
	return rows[0].unrow(), nil
}

func (repo academicRepository) FilterSemestersByClass(ctx context.Context, classID string, exec ...core.DBExecutor) ([]academic.Semester, error) {
	var rows []semesterRow
	q := `SELECT * FROM semester WHERE class_id = $1 ORDER BY start_date`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying semesters")
	}
	semesters := make([]academic.Semester, 0, len(rows))
	for _, r := range rows {
		semesters = append(semesters, r.unrow())
	}
	return semesters, nil
}

func (repo academicRepository) CreateCourse(ctx context.Context, crs academic.Course, exec ...core.DBExecutor) (academic.Course, error) {
	crs.ID = uuid.New().String()
	q := `INSERT INTO course (id, code, name) VALUES ($1, $2, $3)`
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, q, crs.ID, crs.Code, crs.Name); err != nil {
		return academic.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo academicRepository) CreateAssignment(ctx context.Context, asg academic.Assignment, exec ...core.DBExecutor) (academic.Assignment, error) {
	asg.ID = uuid.New().String()
	q := `INSERT INTO assignment (id, course_id, semester_id, professor_id) VALUES ($1, $2, $3, $4)`
	_, err := getExec(repo.exec, exec).ExecContext(ctx, q, asg.ID, asg.CourseID, asg.SemesterID, asg.ProfessorID)
	if err != nil {
		return academic.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (r assignmentRow) unrow() academic.Assignment {
	return academic.Assignment{ID: r.ID, CourseID: r.CourseID, SemesterID: r.SemesterID, ProfessorID: r.ProfessorID}
}

func (repo academicRepository) GetAssignmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (academic.Assignment, error) {
	var rows []assignmentRow
	q := `SELECT * FROM assignment WHERE id = $1`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, id); err != nil {
		return academic.Assignment{}, errors.Wrap(err, "finding assignment")
	}
	if len(rows) == 0 {
		return academic.Assignment{}, academic.ErrAssignmentNotFound
	}
	return rows[0].unrow(), nil
}

func (repo academicRepository) FilterAssignmentsBySemester(ctx context.Context, semesterID string, exec ...core.DBExecutor) ([]academic.Assignment, error) {
	var rows []assignmentRow
	q := `SELECT * FROM assignment WHERE semester_id = $1`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, semesterID); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]academic.Assignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, r.unrow())
	}
	return assignments, nil
}

func (repo academicRepository) CreateProfessor(ctx context.Context, prof academic.Professor, exec ...core.DBExecutor) (academic.Professor, error) {
	prof.ID = uuid.New().String()
	q := `INSERT INTO professor (id, user_id, institution_id, name, email) VALUES ($1, $2, $3, $4, $5)`
	_, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		prof.ID, null.NewString(prof.UserID, prof.UserID != ""), prof.InstitutionID,
		prof.Name, null.NewString(prof.Email, prof.Email != ""))
	if err != nil {
		return academic.Professor{}, errors.Wrap(err, "inserting professor")
	}
	return prof, nil
}

func (repo academicRepository) GetProfessorByID(ctx context.Context, id string, exec ...core.DBExecutor) (academic.Professor, error) {
	var rows []professorRow
	q := `SELECT * FROM professor WHERE id = $1`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, id); err != nil {
		return academic.Professor{}, errors.Wrap(err, "finding professor")
	}
	if len(rows) == 0 {
		return academic.Professor{}, academic.ErrProfessorNotFound
	}
	r := rows[0]
	return academic.Professor{
		ID:            r.ID,
		UserID:        r.UserID.String,
		InstitutionID: r.InstitutionID,
		Name:          r.Name,
		Email:         r.Email.String,
	}, nil
}

func (repo academicRepository) GetProfessorByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (academic.Professor, error) {
	var rows []professorRow
	q := `SELECT * FROM professor WHERE user_id = $1`
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, userID); err != nil {
		return academic.Professor{}, errors.Wrap(err, "finding professor by user")
	}
	if len(rows) == 0 {
		return academic.Professor{}, academic.ErrProfessorNotFound
	}
	r := rows[0]
	return academic.Professor{
		ID:            r.ID,
		UserID:        r.UserID.String,
		InstitutionID: r.InstitutionID,
		Name:          r.Name,
		Email:         r.Email.String,
	}, nil
}

func (repo academicRepository) CreateStudent(ctx context.Context, std academic.Student, exec ...core.DBExecutor) (academic.Student, error) {
	std.ID = uuid.New().String()
	q := `INSERT INTO student (id, user_id, institution_id, section_id, name, email) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := getExec(repo.exec, exec).ExecContext(ctx, q,
		std.ID,
		null.NewString(std.UserID, std.UserID != ""),
		null.NewString(std.InstitutionID, std.InstitutionID != ""),
		null.NewString(std.SectionID, std.SectionID != ""),
		std.Name,
		null.NewString(std.Email, std.Email != ""))
	if err != nil {
		return academic.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo academicRepository) getOneStudent(ctx context.Context, exe core.DBExecutor, q string, args ...interface{}) (academic.Student, error) {
	var rows []studentRow
	if err := queryAll(ctx, exe, &rows, q, args...); err != nil {
		return academic.Student{}, errors.Wrap(err, "finding student")
	}
	if len(rows) == 0 {
		return academic.Student{}, academic.ErrStudentNotFound
	}
	r := rows[0]
	return academic.Student{
		ID:            r.ID,
		UserID:        r.UserID.String,
		InstitutionID: r.InstitutionID.String,
		SectionID:     r.SectionID.String,
		Name:          r.Name,
		Email:         r.Email.String,
	}, nil
}

func (repo academicRepository) GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (academic.Student, error) {
	q := `SELECT * FROM student WHERE id = $1`
	return repo.getOneStudent(ctx, getExec(repo.exec, exec), q, id)
}

func (repo academicRepository) GetStudentByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (academic.Student, error) {
	q := `SELECT * FROM student WHERE user_id = $1`
	return repo.getOneStudent(ctx, getExec(repo.exec, exec), q, userID)
}
