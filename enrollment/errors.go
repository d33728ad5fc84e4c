package enrollment

import "errors"

var (
	// ErrNotEnrolled is returned when unenrolling a student who has no school.
	ErrNotEnrolled = errors.New("roster: student is not enrolled")

	// ErrSchoolRequired is returned when enrolling without a school id.
	ErrSchoolRequired = errors.New("roster: school id is required")
)
