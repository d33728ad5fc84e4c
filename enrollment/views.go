package enrollment

import (
	"sort"

	"github.com/jacentio/roster/store"
)

// StudentSummary is the shallow student projection embedded in school
// reads: name, email and grade only.
type StudentSummary struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Grade    string `json:"grade"`
}

// SchoolSummary is the compact school projection used on student listings.
type SchoolSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// SchoolContact is the extended school projection used on single-student
// reads. It adds the school's contact details to the summary fields.
type SchoolContact struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// SchoolView is a school with its enrolled students projected in. The
// outer Students field shadows the record's raw id set in the JSON
// encoding, the same way a populated reference replaces its id.
type SchoolView struct {
	store.School
	Students []StudentSummary `json:"students"`
}

// StudentView is a student with the summary school projection, used on
// listings. The outer School field shadows the record's raw school id in
// the JSON encoding; it is nil when the student is not enrolled or the
// reference dangles.
type StudentView struct {
	store.Student
	FullName string         `json:"fullName"`
	School   *SchoolSummary `json:"school,omitempty"`
}

// StudentDetail is a student with the contact school projection, used on
// single-record reads.
type StudentDetail struct {
	store.Student
	FullName string         `json:"fullName"`
	School   *SchoolContact `json:"school,omitempty"`
}

func newStudentSummary(st store.Student) StudentSummary {
	return StudentSummary{
		ID:       st.ID,
		FullName: st.FullName(),
		Email:    st.Email,
		Grade:    st.Grade,
	}
}

func newSchoolSummary(sc *store.School) *SchoolSummary {
	return &SchoolSummary{
		ID:      sc.ID,
		Name:    sc.Name,
		Address: sc.Address,
	}
}

func newSchoolContact(sc *store.School) *SchoolContact {
	return &SchoolContact{
		ID:      sc.ID,
		Name:    sc.Name,
		Address: sc.Address,
		Phone:   sc.Phone,
		Email:   sc.Email,
	}
}

// studentSummaries projects and orders a roster for stable output.
func studentSummaries(students []store.Student) []StudentSummary {
	summaries := make([]StudentSummary, 0, len(students))
	for i := range students {
		summaries = append(summaries, newStudentSummary(students[i]))
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].FullName != summaries[j].FullName {
			return summaries[i].FullName < summaries[j].FullName
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries
}
