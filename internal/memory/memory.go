// Package memory provides an in-memory implementation of the enrollment
// store contract, used by tests and ephemeral environments. It applies the
// same validation, email uniqueness and roster set semantics as the
// DynamoDB store.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jacentio/roster/enrollment"
	"github.com/jacentio/roster/internal/uniquekey"
	"github.com/jacentio/roster/store"
)

var _ enrollment.Store = (*Store)(nil)

// Store keeps schools and students in process memory.
type Store struct {
	mu       sync.Mutex
	schools  map[string]store.School
	students map[string]store.Student
	emails   map[string]string // claim key -> record id
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		schools:  map[string]store.School{},
		students: map[string]store.Student{},
		emails:   map[string]string{},
	}
}

func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func cloneSchool(s store.School) store.School {
	s.Students = slices.Clone(s.Students)
	return s
}

func cloneStudent(s store.Student) store.Student {
	if s.Address != nil {
		addr := *s.Address
		s.Address = &addr
	}
	if s.ParentInfo != nil {
		parent := *s.ParentInfo
		s.ParentInfo = &parent
	}
	return s
}

// CreateSchool validates and stores a new school with an empty roster.
func (m *Store) CreateSchool(_ context.Context, school *store.School) error {
	school.Email = store.NormalizeEmail(school.Email)
	if err := school.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	claim := uniquekey.Email("school", school.Email)
	if _, taken := m.emails[claim]; taken {
		return store.ErrDuplicateEmail
	}

	school.ID = uuid.NewString()
	school.Students = nil
	now := timestamp()
	school.CreatedAt = now
	school.UpdatedAt = now

	m.emails[claim] = school.ID
	m.schools[school.ID] = cloneSchool(*school)
	return nil
}

// GetSchool fetches a school by id.
func (m *Store) GetSchool(_ context.Context, id string) (*store.School, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	school, ok := m.schools[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	school = cloneSchool(school)
	return &school, nil
}

// ListSchools returns every school, ordered by id.
func (m *Store) ListSchools(_ context.Context) ([]store.School, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	schools := make([]store.School, 0, len(m.schools))
	for _, school := range m.schools {
		schools = append(schools, cloneSchool(school))
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].ID < schools[j].ID })
	return schools, nil
}

// GetSchoolsBatch fetches schools by id, skipping ids that don't resolve.
func (m *Store) GetSchoolsBatch(_ context.Context, ids []string) ([]store.School, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var schools []store.School
	for _, id := range ids {
		if school, ok := m.schools[id]; ok {
			schools = append(schools, cloneSchool(school))
		}
	}
	return schools, nil
}

// UpdateSchool applies a partial update, validating only supplied fields
// and swapping the email claim on a change.
func (m *Store) UpdateSchool(_ context.Context, id string, upd store.SchoolUpdate) (*store.School, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	school, ok := m.schools[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	if upd.Email != nil {
		if newEmail := store.NormalizeEmail(*upd.Email); newEmail != school.Email {
			newClaim := uniquekey.Email("school", newEmail)
			if _, taken := m.emails[newClaim]; taken {
				return nil, store.ErrDuplicateEmail
			}
			delete(m.emails, uniquekey.Email("school", school.Email))
			m.emails[newClaim] = id
			school.Email = newEmail
		}
	}
	if upd.Name != nil {
		school.Name = *upd.Name
	}
	if upd.Address != nil {
		school.Address = *upd.Address
	}
	if upd.Phone != nil {
		school.Phone = *upd.Phone
	}
	if upd.EstablishedYear != nil {
		school.EstablishedYear = *upd.EstablishedYear
	}
	if upd.Principal != nil {
		school.Principal = *upd.Principal
	}
	school.UpdatedAt = timestamp()

	m.schools[id] = cloneSchool(school)
	school = cloneSchool(school)
	return &school, nil
}

// DeleteSchool removes the record and releases its email claim.
func (m *Store) DeleteSchool(_ context.Context, school *store.School) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.schools[school.ID]
	if !ok {
		return store.ErrNotFound
	}
	delete(m.schools, school.ID)
	delete(m.emails, uniquekey.Email("school", stored.Email))
	return nil
}

// AddStudentToSet adds a student id to a school's roster; adding an
// existing member is a no-op.
func (m *Store) AddStudentToSet(_ context.Context, schoolID, studentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	school, ok := m.schools[schoolID]
	if !ok {
		return store.ErrNotFound
	}
	if !slices.Contains(school.Students, studentID) {
		school.Students = append(slices.Clone(school.Students), studentID)
	}
	school.UpdatedAt = timestamp()
	m.schools[schoolID] = school
	return nil
}

// RemoveStudentFromSet removes a student id from a school's roster;
// removing an absent member is a no-op.
func (m *Store) RemoveStudentFromSet(_ context.Context, schoolID, studentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	school, ok := m.schools[schoolID]
	if !ok {
		return store.ErrNotFound
	}
	school.Students = slices.DeleteFunc(slices.Clone(school.Students), func(id string) bool {
		return id == studentID
	})
	if len(school.Students) == 0 {
		school.Students = nil
	}
	school.UpdatedAt = timestamp()
	m.schools[schoolID] = school
	return nil
}

// CreateStudent validates and stores a new student, defaulting
// EnrollmentDate to now when unset.
func (m *Store) CreateStudent(_ context.Context, student *store.Student) error {
	student.Email = store.NormalizeEmail(student.Email)
	if student.EnrollmentDate.IsZero() {
		student.EnrollmentDate = timestamp()
	}
	if err := student.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	claim := uniquekey.Email("student", student.Email)
	if _, taken := m.emails[claim]; taken {
		return store.ErrDuplicateEmail
	}

	student.ID = uuid.NewString()
	now := timestamp()
	student.CreatedAt = now
	student.UpdatedAt = now

	m.emails[claim] = student.ID
	m.students[student.ID] = cloneStudent(*student)
	return nil
}

// GetStudent fetches a student by id.
func (m *Store) GetStudent(_ context.Context, id string) (*store.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	student, ok := m.students[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	student = cloneStudent(student)
	return &student, nil
}

// GetStudentsBatch fetches students by id, skipping ids that don't
// resolve.
func (m *Store) GetStudentsBatch(_ context.Context, ids []string) ([]store.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var students []store.Student
	for _, id := range ids {
		if student, ok := m.students[id]; ok {
			students = append(students, cloneStudent(student))
		}
	}
	return students, nil
}

// ListStudents returns students matching the filter, ordered by id.
func (m *Store) ListStudents(_ context.Context, filter store.StudentFilter) ([]store.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var students []store.Student
	for _, student := range m.students {
		if filter.School != "" && student.SchoolID != filter.School {
			continue
		}
		if filter.Grade != "" && student.Grade != filter.Grade {
			continue
		}
		if filter.IsActive != nil && student.IsActive != *filter.IsActive {
			continue
		}
		students = append(students, cloneStudent(student))
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

// UpdateStudent applies a partial update, validating only supplied fields
// and swapping the email claim on a change. An empty School value clears
// the reference.
func (m *Store) UpdateStudent(_ context.Context, id string, upd store.StudentUpdate) (*store.Student, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	student, ok := m.students[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	if upd.Email != nil {
		if newEmail := store.NormalizeEmail(*upd.Email); newEmail != student.Email {
			newClaim := uniquekey.Email("student", newEmail)
			if _, taken := m.emails[newClaim]; taken {
				return nil, store.ErrDuplicateEmail
			}
			delete(m.emails, uniquekey.Email("student", student.Email))
			m.emails[newClaim] = id
			student.Email = newEmail
		}
	}
	if upd.FirstName != nil {
		student.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		student.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		student.Phone = *upd.Phone
	}
	if upd.DateOfBirth != nil {
		student.DateOfBirth = *upd.DateOfBirth
	}
	if upd.Grade != nil {
		student.Grade = *upd.Grade
	}
	if upd.Address != nil {
		addr := *upd.Address
		student.Address = &addr
	}
	if upd.ParentInfo != nil {
		parent := *upd.ParentInfo
		student.ParentInfo = &parent
	}
	if upd.EnrollmentDate != nil {
		student.EnrollmentDate = *upd.EnrollmentDate
	}
	if upd.IsActive != nil {
		student.IsActive = *upd.IsActive
	}
	if upd.School != nil {
		student.SchoolID = *upd.School
	}
	student.UpdatedAt = timestamp()

	m.students[id] = cloneStudent(student)
	student = cloneStudent(student)
	return &student, nil
}

// DeleteStudent removes the record and releases its email claim.
func (m *Store) DeleteStudent(_ context.Context, student *store.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.students[student.ID]
	if !ok {
		return store.ErrNotFound
	}
	delete(m.students, student.ID)
	delete(m.emails, uniquekey.Email("student", stored.Email))
	return nil
}

// SetStudentSchool sets or clears a student's school reference.
func (m *Store) SetStudentSchool(_ context.Context, studentID, schoolID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	student, ok := m.students[studentID]
	if !ok {
		return store.ErrNotFound
	}
	student.SchoolID = schoolID
	student.UpdatedAt = timestamp()
	m.students[studentID] = student
	return nil
}
