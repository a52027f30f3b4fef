package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/academic"
)

type academicRepository struct {
	db *DB
}

var _ academic.Repository = (*academicRepository)(nil)

func NewAcademicRepository(db *DB) *academicRepository {
	return &academicRepository{db: db}
}

func (repo *academicRepository) CreateInstitution(_ context.Context, inst academic.Institution, _ ...core.DBExecutor) (academic.Institution, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	inst.ID = uuid.New().String()
	repo.db.institutions[inst.ID] = &inst
	return inst, nil
}

func (repo *academicRepository) GetInstitutionByID(_ context.Context, id string, _ ...core.DBExecutor) (academic.Institution, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if inst, ok := repo.db.institutions[id]; ok {
		return *inst, nil
	}
	return academic.Institution{}, academic.ErrInstitutionNotFound
}

func (repo *academicRepository) CreateDepartment(_ context.Context, dep academic.Department, _ ...core.DBExecutor) (academic.Department, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	dep.ID = uuid.New().String()
	repo.db.departments[dep.ID] = &dep
	return dep, nil
}

func (repo *academicRepository) CreateMajor(_ context.Context, mjr academic.Major, _ ...core.DBExecutor) (academic.Major, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	mjr.ID = uuid.New().String()
	repo.db.majors[mjr.ID] = &mjr
	return mjr, nil
}

func (repo *academicRepository) CreateClass(_ context.Context, cls academic.Class, _ ...core.DBExecutor) (academic.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	cls.ID = uuid.New().String()
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

// FilterClassesByInstitution walks class -> major -> department -> institution.
func (repo *academicRepository) FilterClassesByInstitution(_ context.Context, institutionID string, _ ...core.DBExecutor) ([]academic.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var classes []academic.Class
	for _, cls := range repo.db.classes {
		mjr, ok := repo.db.majors[cls.MajorID]
		if !ok {
			continue
		}
		dep, ok := repo.db.departments[mjr.DepartmentID]
		if !ok {
			continue
		}
		if dep.InstitutionID == institutionID {
			classes = append(classes, *cls)
		}
	}
	return classes, nil
}

func (repo *academicRepository) CreateSection(_ context.Context, sec academic.Section, _ ...core.DBExecutor) (academic.Section, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	sec.ID = uuid.New().String()
	repo.db.sections[sec.ID] = &sec
	return sec, nil
}

func (repo *academicRepository) GetSectionByID(_ context.Context, id string, _ ...core.DBExecutor) (academic.Section, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sec, ok := repo.db.sections[id]; ok {
		return *sec, nil
	}
	return academic.Section{}, academic.ErrSectionNotFound
}

func (repo *academicRepository) FilterSectionsByClass(_ context.Context, classID string, _ ...core.DBExecutor) ([]academic.Section, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var sections []academic.Section
	for _, sec := range repo.db.sections {
		if sec.ClassID == classID {
			sections = append(sections, *sec)
		}
	}
	return sections, nil
}

func (repo *academicRepository) CreateSemester(_ context.Context, sem academic.Semester, _ ...core.DBExecutor) (academic.Semester, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	sem.ID = uuid.New().String()
	repo.db.semesters[sem.ID] = &sem
	return sem, nil
}

func (repo *academicRepository) GetSemesterByID(_ context.Context, id string, _ ...core.DBExecutor) (academic.Semester, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sem, ok := repo.db.semesters[id]; ok {
		return *sem, nil
	}
	return academic.Semester{}, academic.ErrSemesterNotFound
}

func (repo *academicRepository) FilterSemestersByClass(_ context.Context, classID string, _ ...core.DBExecutor) ([]academic.Semester, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var semesters []academic.Semester
	for _, sem := range repo.db.semesters {
		if sem.ClassID == classID {
			semesters = append(semesters, *sem)
		}
	}
	return semesters, nil
}

func (repo *academicRepository) CreateCourse(_ context.Context, crs academic.Course, _ ...core.DBExecutor) (academic.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	crs.ID = uuid.New().String()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *academicRepository) CreateAssignment(_ context.Context, asg academic.Assignment, _ ...core.DBExecutor) (academic.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	asg.ID = uuid.New().String()
	repo.db.assignments[asg.ID] = &asg
	return asg, nil
}

func (repo *academicRepository) GetAssignmentByID(_ context.Context, id string, _ ...core.DBExecutor) (academic.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if asg, ok := repo.db.assignments[id]; ok {
		return *asg, nil
	}
	return academic.Assignment{}, academic.ErrAssignmentNotFound
}

func (repo *academicRepository) FilterAssignmentsBySemester(_ context.Context, semesterID string, _ ...core.DBExecutor) ([]academic.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var assignments []academic.Assignment
	for _, asg := range repo.db.assignments {
		if asg.SemesterID == semesterID {
			assignments = append(assignments, *asg)
		}
	}
	return assignments, nil
}

func (repo *academicRepository) CreateProfessor(_ context.Context, prof academic.Professor, _ ...core.DBExecutor) (academic.Professor, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	prof.ID = uuid.New().String()
	repo.db.professors[prof.ID] = &prof
	return prof, nil
}

func (repo *academicRepository) GetProfessorByID(_ context.Context, id string, _ ...core.DBExecutor) (academic.Professor, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if prof, ok := repo.db.professors[id]; ok {
		return *prof, nil
	}
	return academic.Professor{}, academic.ErrProfessorNotFound
}

func (repo *academicRepository) GetProfessorByUserID(_ context.Context, userID string, _ ...core.DBExecutor) (academic.Professor, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, prof := range repo.db.professors {
		if prof.UserID == userID {
			return *prof, nil
		}
	}
	return academic.Professor{}, academic.ErrProfessorNotFound
}

func (repo *academicRepository) CreateStudent(_ context.Context, std academic.Student, _ ...core.DBExecutor) (academic.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	std.ID = uuid.New().String()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *academicRepository) GetStudentByID(_ context.Context, id string, _ ...core.DBExecutor) (academic.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return academic.Student{}, academic.ErrStudentNotFound
}

func (repo *academicRepository) GetStudentByUserID(_ context.Context, userID string, _ ...core.DBExecutor) (academic.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, std := range repo.db.students {
		if std.UserID == userID {
			return *std, nil
		}
	}
	return academic.Student{}, academic.ErrStudentNotFound
}
