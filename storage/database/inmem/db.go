package inmemdb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/pkg/errors"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/academic"
	"github.com/youbihi/attest/core/attendance"
	"github.com/youbihi/attest/core/schedule"
	"github.com/youbihi/attest/core/user"
)

var errRawSQL = errors.New("inmemdb: raw SQL not supported")

// DB is an in-memory storage used in tests and local development.
// Transactions are no-ops: operations apply immediately.
type DB struct {
	mu sync.RWMutex

	users        map[string]*user.User
	institutions map[string]*academic.Institution
	departments  map[string]*academic.Department
	majors       map[string]*academic.Major
	classes      map[string]*academic.Class
	sections     map[string]*academic.Section
	semesters    map[string]*academic.Semester
	courses      map[string]*academic.Course
	assignments  map[string]*academic.Assignment
	professors   map[string]*academic.Professor
	students     map[string]*academic.Student
	timetables   map[string]*schedule.TimeTable
	days         map[string]*schedule.CalendarDay
	sessions     map[string]*schedule.Session
	attendances  map[string]*attendance.Attendance
	tokens       map[string]*attendance.Token
}

var _ core.DB = (*DB)(nil)

func Open() (*DB, error) {
	return &DB{
		users:        make(map[string]*user.User),
		institutions: make(map[string]*academic.Institution),
		departments:  make(map[string]*academic.Department),
		majors:       make(map[string]*academic.Major),
		classes:      make(map[string]*academic.Class),
		sections:     make(map[string]*academic.Section),
		semesters:    make(map[string]*academic.Semester),
		courses:      make(map[string]*academic.Course),
		assignments:  make(map[string]*academic.Assignment),
		professors:   make(map[string]*academic.Professor),
		students:     make(map[string]*academic.Student),
		timetables:   make(map[string]*schedule.TimeTable),
		days:         make(map[string]*schedule.CalendarDay),
		sessions:     make(map[string]*schedule.Session),
		attendances:  make(map[string]*attendance.Attendance),
		tokens:       make(map[string]*attendance.Token),
	}, nil
}

func (db *DB) Exec(string, ...interface{}) (sql.Result, error) { return nil, errRawSQL }
func (db *DB) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errRawSQL
}
func (db *DB) Query(string, ...interface{}) (*sql.Rows, error) { return nil, errRawSQL }
func (db *DB) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errRawSQL
}
func (db *DB) QueryRow(string, ...interface{}) *sql.Row                            { return nil }
func (db *DB) QueryRowContext(context.Context, string, ...interface{}) *sql.Row    { return nil }
func (db *DB) Begin() (core.DBTransactor, error)                                   { return noopTx{db}, nil }
func (db *DB) BeginTx(context.Context, *sql.TxOptions) (core.DBTransactor, error) {
	return noopTx{db}, nil
}

type noopTx struct{ *DB }

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }
