// Package enrollment coordinates writes that span school rosters and
// student school references, and composes the cross-record read
// projections.
package enrollment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jacentio/roster/store"
)

// Store is the persistence contract the coordinator drives. *store.Store
// implements it against DynamoDB; internal/memory provides an in-process
// implementation for tests and ephemeral environments.
type Store interface {
	CreateSchool(ctx context.Context, school *store.School) error
	GetSchool(ctx context.Context, id string) (*store.School, error)
	GetSchoolsBatch(ctx context.Context, ids []string) ([]store.School, error)
	ListSchools(ctx context.Context) ([]store.School, error)
	UpdateSchool(ctx context.Context, id string, upd store.SchoolUpdate) (*store.School, error)
	DeleteSchool(ctx context.Context, school *store.School) error
	AddStudentToSet(ctx context.Context, schoolID, studentID string) error
	RemoveStudentFromSet(ctx context.Context, schoolID, studentID string) error

	CreateStudent(ctx context.Context, student *store.Student) error
	GetStudent(ctx context.Context, id string) (*store.Student, error)
	GetStudentsBatch(ctx context.Context, ids []string) ([]store.Student, error)
	ListStudents(ctx context.Context, filter store.StudentFilter) ([]store.Student, error)
	UpdateStudent(ctx context.Context, id string, upd store.StudentUpdate) (*store.Student, error)
	DeleteStudent(ctx context.Context, student *store.Student) error
	SetStudentSchool(ctx context.Context, studentID, schoolID string) error
}

// Coordinator owns every operation that touches both a school's roster and
// a student's school reference. Writes within an operation are sequential
// and never rolled back: a failing step surfaces its error with all
// earlier steps already applied. Whenever a student's school changes, the
// removal from the old roster is issued before the addition to the new
// one.
type Coordinator struct {
	store Store
}

// NewCoordinator creates a Coordinator on top of the given store.
func NewCoordinator(st Store) *Coordinator {
	return &Coordinator{store: st}
}

// CreateSchool persists a new school with an empty roster.
func (c *Coordinator) CreateSchool(ctx context.Context, school *store.School) (*SchoolView, error) {
	if err := c.store.CreateSchool(ctx, school); err != nil {
		return nil, err
	}
	return &SchoolView{School: *school, Students: []StudentSummary{}}, nil
}

// GetSchool returns a school with its enrolled students projected in.
func (c *Coordinator) GetSchool(ctx context.Context, id string) (*SchoolView, error) {
	school, err := c.store.GetSchool(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.schoolView(ctx, school)
}

// ListSchools returns every school with its student projections.
func (c *Coordinator) ListSchools(ctx context.Context) ([]SchoolView, error) {
	schools, err := c.store.ListSchools(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]SchoolView, 0, len(schools))
	for i := range schools {
		view, err := c.schoolView(ctx, &schools[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// UpdateSchool applies a partial update and returns the new state with
// student projections.
func (c *Coordinator) UpdateSchool(ctx context.Context, id string, upd store.SchoolUpdate) (*SchoolView, error) {
	school, err := c.store.UpdateSchool(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	return c.schoolView(ctx, school)
}

// DeleteSchool clears the school reference of every enrolled student, then
// deletes the record. The sweep is a per-student update, not a
// transaction: a failure partway leaves the already-cleared students
// cleared and the school in place.
func (c *Coordinator) DeleteSchool(ctx context.Context, id string) error {
	school, err := c.store.GetSchool(ctx, id)
	if err != nil {
		return err
	}
	if _, err := c.DetachSchool(ctx, id); err != nil {
		return fmt.Errorf("clear school references: %w", err)
	}
	return c.store.DeleteSchool(ctx, school)
}

// SchoolStudents lists the students of one school, verifying the school
// exists first.
func (c *Coordinator) SchoolStudents(ctx context.Context, schoolID string) ([]StudentView, error) {
	school, err := c.store.GetSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	students, err := c.store.ListStudents(ctx, store.StudentFilter{School: schoolID})
	if err != nil {
		return nil, err
	}

	views := make([]StudentView, 0, len(students))
	for i := range students {
		views = append(views, StudentView{
			Student:  students[i],
			FullName: students[i].FullName(),
			School:   newSchoolSummary(school),
		})
	}
	return views, nil
}

// CreateStudent persists a new student and, when a school reference is
// supplied, adds the student to that school's roster. The roster add is
// conditioned on the school existing: when it doesn't, the call fails with
// store.ErrNotFound while the student record, dangling reference included,
// stays persisted. There is deliberately no rollback.
func (c *Coordinator) CreateStudent(ctx context.Context, student *store.Student) (*StudentDetail, error) {
	if err := c.store.CreateStudent(ctx, student); err != nil {
		return nil, err
	}
	if student.SchoolID != "" {
		if err := c.store.AddStudentToSet(ctx, student.SchoolID, student.ID); err != nil {
			return nil, fmt.Errorf("add student %s to school roster: %w", student.ID, err)
		}
	}
	return c.studentDetail(ctx, student)
}

// GetStudent returns a student with the contact-profile school projection.
func (c *Coordinator) GetStudent(ctx context.Context, id string) (*StudentDetail, error) {
	student, err := c.store.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.studentDetail(ctx, student)
}

// ListStudents returns students matching the filter, each with the
// summary-profile school projection.
func (c *Coordinator) ListStudents(ctx context.Context, filter store.StudentFilter) ([]StudentView, error) {
	students, err := c.store.ListStudents(ctx, filter)
	if err != nil {
		return nil, err
	}
	summaries, err := c.schoolSummaries(ctx, students)
	if err != nil {
		return nil, err
	}

	views := make([]StudentView, 0, len(students))
	for i := range students {
		views = append(views, StudentView{
			Student:  students[i],
			FullName: students[i].FullName(),
			School:   summaries[students[i].SchoolID],
		})
	}
	return views, nil
}

// UpdateStudent applies a partial update. When the update moves the
// student between schools the roster edits run first - remove from the
// old school, add to the new - and the field change persists last. A
// vanished old school counts as already cleaned; any other failed step
// surfaces with the earlier steps applied.
func (c *Coordinator) UpdateStudent(ctx context.Context, id string, upd store.StudentUpdate) (*StudentDetail, error) {
	current, err := c.store.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.School != nil && *upd.School != current.SchoolID {
		if current.SchoolID != "" {
			if err := c.removeFromRoster(ctx, current.SchoolID, id); err != nil {
				return nil, fmt.Errorf("remove student %s from old school roster: %w", id, err)
			}
		}
		if *upd.School != "" {
			if err := c.store.AddStudentToSet(ctx, *upd.School, id); err != nil {
				return nil, fmt.Errorf("add student %s to school roster: %w", id, err)
			}
		}
	}

	student, err := c.store.UpdateStudent(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	return c.studentDetail(ctx, student)
}

// DeleteStudent removes the student from its school's roster, if any, then
// deletes the record.
func (c *Coordinator) DeleteStudent(ctx context.Context, id string) error {
	student, err := c.store.GetStudent(ctx, id)
	if err != nil {
		return err
	}
	if student.SchoolID != "" {
		if err := c.removeFromRoster(ctx, student.SchoolID, id); err != nil {
			return fmt.Errorf("remove student %s from school roster: %w", id, err)
		}
	}
	return c.store.DeleteStudent(ctx, student)
}

// Enroll places a student in a school: remove from the previous school's
// roster when moving, set the student's reference, add to the new roster.
// Both records are verified up front; the writes that follow are still
// individually fallible and never rolled back. Enrolling into the current
// school re-runs the set add, which is a no-op for membership.
func (c *Coordinator) Enroll(ctx context.Context, studentID, schoolID string) (*StudentDetail, error) {
	if schoolID == "" {
		return nil, ErrSchoolRequired
	}
	student, err := c.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if _, err := c.store.GetSchool(ctx, schoolID); err != nil {
		return nil, err
	}

	if student.SchoolID != "" && student.SchoolID != schoolID {
		if err := c.removeFromRoster(ctx, student.SchoolID, studentID); err != nil {
			return nil, fmt.Errorf("remove student %s from old school roster: %w", studentID, err)
		}
	}
	if err := c.store.SetStudentSchool(ctx, studentID, schoolID); err != nil {
		return nil, err
	}
	if err := c.store.AddStudentToSet(ctx, schoolID, studentID); err != nil {
		return nil, fmt.Errorf("add student %s to school roster: %w", studentID, err)
	}

	student, err = c.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return c.studentDetail(ctx, student)
}

// Unenroll removes a student from its school: remove from the roster, then
// clear the reference. Fails with ErrNotEnrolled before writing anything
// when the student has no school.
func (c *Coordinator) Unenroll(ctx context.Context, studentID string) (*StudentDetail, error) {
	student, err := c.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.SchoolID == "" {
		return nil, ErrNotEnrolled
	}

	if err := c.removeFromRoster(ctx, student.SchoolID, studentID); err != nil {
		return nil, fmt.Errorf("remove student %s from school roster: %w", studentID, err)
	}
	if err := c.store.SetStudentSchool(ctx, studentID, ""); err != nil {
		return nil, err
	}

	student, err = c.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return c.studentDetail(ctx, student)
}

// DetachSchool clears the school reference of every student still
// referencing schoolID, returning how many were cleared. Students that
// disappear mid-sweep are skipped. Safe to re-run; used by DeleteSchool
// and by the out-of-band reconciler.
func (c *Coordinator) DetachSchool(ctx context.Context, schoolID string) (int, error) {
	students, err := c.store.ListStudents(ctx, store.StudentFilter{School: schoolID})
	if err != nil {
		return 0, err
	}

	cleared := 0
	for i := range students {
		err := c.store.SetStudentSchool(ctx, students[i].ID, "")
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return cleared, err
		}
		cleared++
	}
	return cleared, nil
}

// DetachStudent removes a student id from a school's roster, treating a
// missing school as already cleaned. Safe to re-run; used by the
// out-of-band reconciler after a student record is removed.
func (c *Coordinator) DetachStudent(ctx context.Context, studentID, schoolID string) error {
	return c.removeFromRoster(ctx, schoolID, studentID)
}

// removeFromRoster issues the membership removal, tolerating a school
// record that has vanished.
func (c *Coordinator) removeFromRoster(ctx context.Context, schoolID, studentID string) error {
	err := c.store.RemoveStudentFromSet(ctx, schoolID, studentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// schoolView projects a school's roster into student summaries.
func (c *Coordinator) schoolView(ctx context.Context, school *store.School) (*SchoolView, error) {
	view := &SchoolView{School: *school, Students: []StudentSummary{}}
	if len(school.Students) == 0 {
		return view, nil
	}
	students, err := c.store.GetStudentsBatch(ctx, school.Students)
	if err != nil {
		return nil, err
	}
	view.Students = studentSummaries(students)
	return view, nil
}

// studentDetail attaches the contact-profile school projection. A
// dangling reference projects as no school at all.
func (c *Coordinator) studentDetail(ctx context.Context, student *store.Student) (*StudentDetail, error) {
	detail := &StudentDetail{Student: *student, FullName: student.FullName()}
	if student.SchoolID == "" {
		return detail, nil
	}

	school, err := c.store.GetSchool(ctx, student.SchoolID)
	if errors.Is(err, store.ErrNotFound) {
		return detail, nil
	}
	if err != nil {
		return nil, err
	}
	detail.School = newSchoolContact(school)
	return detail, nil
}

// schoolSummaries batch-fetches the distinct schools referenced by the
// students and returns summaries keyed by school id. Dangling references
// simply have no entry.
func (c *Coordinator) schoolSummaries(ctx context.Context, students []store.Student) (map[string]*SchoolSummary, error) {
	var ids []string
	seen := map[string]bool{}
	for i := range students {
		id := students[i].SchoolID
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	schools, err := c.store.GetSchoolsBatch(ctx, ids)
	if err != nil {
		return nil, err
	}
	summaries := make(map[string]*SchoolSummary, len(schools))
	for i := range schools {
		summaries[schools[i].ID] = newSchoolSummary(&schools[i])
	}
	return summaries, nil
}
