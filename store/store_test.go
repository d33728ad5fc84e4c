package store_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jacentio/roster/store"
)

// validSchool returns a school that passes validation.
func validSchool() store.School {
	return store.School{
		Name:            "Lincoln High School",
		Address:         "100 Main St, Springfield, IL 62701",
		Phone:           "+1 (555) 123-4567",
		Email:           "office@lincoln.edu",
		EstablishedYear: 1950,
		Principal:       "Dana Whitfield",
	}
}

// validStudent returns a student that passes validation.
func validStudent() store.Student {
	return store.Student{
		FirstName:   "Alice",
		LastName:    "Nguyen",
		Email:       "alice.nguyen@example.com",
		Phone:       "555-123-4567",
		DateOfBirth: time.Date(2010, time.March, 14, 0, 0, 0, 0, time.UTC),
		Grade:       "9th",
	}
}

// fieldMessage extracts the message for a field from a validation error,
// failing the test when err is not a ValidationError or the field is absent.
func fieldMessage(t *testing.T, err error, field string) string {
	t.Helper()
	var verr *store.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *store.ValidationError, got %v", err)
	}
	msg, ok := verr.Fields[field]
	if !ok {
		t.Fatalf("expected field %q in validation error, got %v", field, verr.Fields)
	}
	return msg
}

// --- Config Tests ---

func TestDefaultConfig(t *testing.T) {
	cfg := store.DefaultConfig()

	if cfg.SchoolsTable != "roster_schools" {
		t.Errorf("expected schools table 'roster_schools', got %q", cfg.SchoolsTable)
	}
	if cfg.StudentsTable != "roster_students" {
		t.Errorf("expected students table 'roster_students', got %q", cfg.StudentsTable)
	}
	if cfg.EmailsTable != "roster_emails" {
		t.Errorf("expected emails table 'roster_emails', got %q", cfg.EmailsTable)
	}
	if cfg.StudentSchoolIndex != "school-index" {
		t.Errorf("expected school index 'school-index', got %q", cfg.StudentSchoolIndex)
	}
}

func TestNew_EmptyConfig(t *testing.T) {
	// Empty config is filled with defaults, not rejected.
	s := store.New(nil, store.Config{})
	if s == nil {
		t.Fatal("expected non-nil Store")
	}
}

func TestNew_DefaultConfig(t *testing.T) {
	s := store.New(nil, store.DefaultConfig())
	if s == nil {
		t.Fatal("expected non-nil Store")
	}
}

// --- School Validation Tests ---

func TestSchoolValidate_Valid(t *testing.T) {
	school := validSchool()
	if err := school.Validate(); err != nil {
		t.Errorf("expected valid school, got %v", err)
	}
}

func TestSchoolValidate_NoPrincipal(t *testing.T) {
	school := validSchool()
	school.Principal = ""

	// Principal is optional.
	if err := school.Validate(); err != nil {
		t.Errorf("expected valid school without principal, got %v", err)
	}
}

func TestSchoolValidate_MissingRequired(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*store.School)
		field  string
	}{
		{"missing name", func(s *store.School) { s.Name = "" }, "name"},
		{"missing address", func(s *store.School) { s.Address = "" }, "address"},
		{"missing phone", func(s *store.School) { s.Phone = "" }, "phone"},
		{"missing email", func(s *store.School) { s.Email = "" }, "email"},
		{"missing year", func(s *store.School) { s.EstablishedYear = 0 }, "establishedYear"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			school := validSchool()
			tt.mutate(&school)

			msg := fieldMessage(t, school.Validate(), tt.field)
			if msg != "is required" {
				t.Errorf("expected 'is required', got %q", msg)
			}
		})
	}
}

func TestSchoolValidate_EstablishedYear(t *testing.T) {
	currentYear := time.Now().Year()

	tests := []struct {
		name  string
		year  int
		valid bool
	}{
		{"before 1800", 1799, false},
		{"exactly 1800", 1800, true},
		{"current year", currentYear, true},
		{"next year", currentYear + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			school := validSchool()
			school.EstablishedYear = tt.year

			err := school.Validate()
			if tt.valid && err != nil {
				t.Errorf("expected year %d to be valid, got %v", tt.year, err)
			}
			if !tt.valid {
				msg := fieldMessage(t, err, "establishedYear")
				want := fmt.Sprintf("must be between 1800 and %d", currentYear)
				if msg != want {
					t.Errorf("expected %q, got %q", want, msg)
				}
			}
		})
	}
}

func TestSchoolValidate_BadPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
	}{
		{"letters", "call-me-maybe"},
		{"too short", "12345"},
		{"too long", "123456789012345678901234567890"},
		{"plus only", "+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			school := validSchool()
			school.Phone = tt.phone

			msg := fieldMessage(t, school.Validate(), "phone")
			if msg != "must be a valid phone number" {
				t.Errorf("expected phone message, got %q", msg)
			}
		})
	}
}

func TestSchoolValidate_BadEmail(t *testing.T) {
	school := validSchool()
	school.Email = "not-an-email"

	msg := fieldMessage(t, school.Validate(), "email")
	if msg != "must be a valid email address" {
		t.Errorf("expected email message, got %q", msg)
	}
}

func TestSchoolValidate_NameTooLong(t *testing.T) {
	school := validSchool()
	school.Name = strings.Repeat("x", 101)

	msg := fieldMessage(t, school.Validate(), "name")
	if msg != "must be at most 100 characters" {
		t.Errorf("expected max length message, got %q", msg)
	}
}

func TestSchoolValidate_CollectsAllFailures(t *testing.T) {
	// A zero school reports every required field at once.
	var school store.School
	err := school.Validate()

	var verr *store.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *store.ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "address", "phone", "email", "establishedYear"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("expected field %q in %v", field, verr.Fields)
		}
	}
}

// --- Student Validation Tests ---

func TestStudentValidate_Valid(t *testing.T) {
	student := validStudent()
	if err := student.Validate(); err != nil {
		t.Errorf("expected valid student, got %v", err)
	}
}

func TestStudentValidate_OptionalFieldsEmpty(t *testing.T) {
	student := validStudent()
	student.Phone = ""
	student.Address = nil
	student.ParentInfo = nil

	if err := student.Validate(); err != nil {
		t.Errorf("expected valid student without optional fields, got %v", err)
	}
}

func TestStudentValidate_MissingRequired(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*store.Student)
		field  string
	}{
		{"missing first name", func(s *store.Student) { s.FirstName = "" }, "firstName"},
		{"missing last name", func(s *store.Student) { s.LastName = "" }, "lastName"},
		{"missing email", func(s *store.Student) { s.Email = "" }, "email"},
		{"missing date of birth", func(s *store.Student) { s.DateOfBirth = time.Time{} }, "dateOfBirth"},
		{"missing grade", func(s *store.Student) { s.Grade = "" }, "grade"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			student := validStudent()
			tt.mutate(&student)

			msg := fieldMessage(t, student.Validate(), tt.field)
			if msg != "is required" {
				t.Errorf("expected 'is required', got %q", msg)
			}
		})
	}
}

func TestStudentValidate_AllGrades(t *testing.T) {
	for _, grade := range store.Grades {
		t.Run(grade, func(t *testing.T) {
			student := validStudent()
			student.Grade = grade

			if err := student.Validate(); err != nil {
				t.Errorf("expected grade %q to be valid, got %v", grade, err)
			}
		})
	}
}

func TestStudentValidate_UnknownGrade(t *testing.T) {
	for _, grade := range []string{"13th", "kindergarten", "first", "1"} {
		t.Run(grade, func(t *testing.T) {
			student := validStudent()
			student.Grade = grade

			msg := fieldMessage(t, student.Validate(), "grade")
			if !strings.HasPrefix(msg, "must be one of ") {
				t.Errorf("expected oneof message, got %q", msg)
			}
		})
	}
}

func TestStudentValidate_FutureDateOfBirth(t *testing.T) {
	student := validStudent()
	student.DateOfBirth = time.Now().Add(24 * time.Hour)

	msg := fieldMessage(t, student.Validate(), "dateOfBirth")
	if msg != "must be in the past" {
		t.Errorf("expected past message, got %q", msg)
	}
}

func TestStudentValidate_BadPhone(t *testing.T) {
	student := validStudent()
	student.Phone = "not-a-phone"

	msg := fieldMessage(t, student.Validate(), "phone")
	if msg != "must be a valid phone number" {
		t.Errorf("expected phone message, got %q", msg)
	}
}

func TestStudentValidate_NestedAddress(t *testing.T) {
	student := validStudent()
	student.Address = &store.Address{
		Street:  "42 Elm St",
		City:    "Springfield",
		State:   "IL",
		ZipCode: "1234",
	}

	// Nested failures report under the JSON path of the nested field.
	msg := fieldMessage(t, student.Validate(), "address.zipCode")
	if msg != "must be a valid ZIP code" {
		t.Errorf("expected ZIP message, got %q", msg)
	}
}

func TestStudentValidate_ValidZipCodes(t *testing.T) {
	for _, zip := range []string{"62701", "62701-1234"} {
		t.Run(zip, func(t *testing.T) {
			student := validStudent()
			student.Address = &store.Address{ZipCode: zip}

			if err := student.Validate(); err != nil {
				t.Errorf("expected ZIP %q to be valid, got %v", zip, err)
			}
		})
	}
}

func TestStudentValidate_NestedParentInfo(t *testing.T) {
	student := validStudent()
	student.ParentInfo = &store.ParentInfo{
		Name:  "Minh Nguyen",
		Email: "bad-email",
	}

	msg := fieldMessage(t, student.Validate(), "parentInfo.email")
	if msg != "must be a valid email address" {
		t.Errorf("expected email message, got %q", msg)
	}
}

// --- Update Validation Tests ---

func strPtr(s string) *string { return &s }

func TestSchoolUpdateValidate_Empty(t *testing.T) {
	// Nil fields are skipped entirely.
	if err := (store.SchoolUpdate{}).Validate(); err != nil {
		t.Errorf("expected empty update to be valid, got %v", err)
	}
}

func TestSchoolUpdateValidate_EmptyName(t *testing.T) {
	upd := store.SchoolUpdate{Name: strPtr("")}

	msg := fieldMessage(t, upd.Validate(), "name")
	if msg != "must not be empty" {
		t.Errorf("expected empty name message, got %q", msg)
	}
}

func TestSchoolUpdateValidate_BadEmail(t *testing.T) {
	upd := store.SchoolUpdate{Email: strPtr("nope")}

	msg := fieldMessage(t, upd.Validate(), "email")
	if msg != "must be a valid email address" {
		t.Errorf("expected email message, got %q", msg)
	}
}

func TestSchoolUpdateValidate_BadYear(t *testing.T) {
	year := 1700
	upd := store.SchoolUpdate{EstablishedYear: &year}

	var verr *store.ValidationError
	if !errors.As(upd.Validate(), &verr) {
		t.Error("expected validation error for year 1700")
	}
}

func TestStudentUpdateValidate_Empty(t *testing.T) {
	if err := (store.StudentUpdate{}).Validate(); err != nil {
		t.Errorf("expected empty update to be valid, got %v", err)
	}
}

func TestStudentUpdateValidate_BadGrade(t *testing.T) {
	upd := store.StudentUpdate{Grade: strPtr("14th")}

	msg := fieldMessage(t, upd.Validate(), "grade")
	if !strings.HasPrefix(msg, "must be one of ") {
		t.Errorf("expected oneof message, got %q", msg)
	}
}

func TestStudentUpdateValidate_EmptySchool(t *testing.T) {
	// An empty school pointer clears the reference; it is not a validation
	// failure.
	upd := store.StudentUpdate{School: strPtr("")}
	if err := upd.Validate(); err != nil {
		t.Errorf("expected empty school to be valid, got %v", err)
	}
}

func TestStudentUpdateValidate_EmptyPhone(t *testing.T) {
	// An empty phone pointer clears the optional field.
	upd := store.StudentUpdate{Phone: strPtr("")}
	if err := upd.Validate(); err != nil {
		t.Errorf("expected empty phone to be valid, got %v", err)
	}
}

// --- ValidationError Tests ---

func TestValidationError_Error(t *testing.T) {
	err := &store.ValidationError{Fields: map[string]string{
		"phone": "must be a valid phone number",
		"email": "must be a valid email address",
		"name":  "is required",
	}}

	// Field names are sorted for deterministic output.
	want := "roster: validation failed: email, name, phone"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestValidationError_AsThroughWrap(t *testing.T) {
	school := validSchool()
	school.Email = "nope"
	wrapped := fmt.Errorf("create school: %w", school.Validate())

	var verr *store.ValidationError
	if !errors.As(wrapped, &verr) {
		t.Fatalf("expected errors.As to find ValidationError in %v", wrapped)
	}
	if _, ok := verr.Fields["email"]; !ok {
		t.Errorf("expected email field, got %v", verr.Fields)
	}
}

// --- Sentinel Error Tests ---

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{store.ErrNotFound, store.ErrAlreadyExists, store.ErrDuplicateEmail}

	for _, err := range sentinels {
		if !strings.HasPrefix(err.Error(), "roster: ") {
			t.Errorf("expected 'roster: ' prefix, got %q", err.Error())
		}
	}

	if errors.Is(store.ErrNotFound, store.ErrDuplicateEmail) {
		t.Error("expected sentinels to be distinct")
	}
	if !errors.Is(fmt.Errorf("get: %w", store.ErrNotFound), store.ErrNotFound) {
		t.Error("expected errors.Is to match through wrapping")
	}
}

// --- NormalizeEmail Tests ---

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase unchanged", "alice@example.com", "alice@example.com"},
		{"uppercase folded", "ALICE@EXAMPLE.COM", "alice@example.com"},
		{"mixed case", "Alice@Example.Com", "alice@example.com"},
		{"whitespace trimmed", "  alice@example.com  ", "alice@example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := store.NormalizeEmail(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// --- FullName Tests ---

func TestStudentFullName(t *testing.T) {
	student := store.Student{FirstName: "Alice", LastName: "Nguyen"}
	if got := student.FullName(); got != "Alice Nguyen" {
		t.Errorf("expected 'Alice Nguyen', got %q", got)
	}
}

// --- Grades Tests ---

func TestGrades(t *testing.T) {
	if len(store.Grades) != 12 {
		t.Fatalf("expected 12 grades, got %d", len(store.Grades))
	}
	if store.Grades[0] != "1st" || store.Grades[11] != "12th" {
		t.Errorf("expected grades ordered 1st..12th, got %v", store.Grades)
	}
}

// --- Examples ---

func ExampleNormalizeEmail() {
	fmt.Println(store.NormalizeEmail("  Alice@Example.COM "))
	// Output: alice@example.com
}

func ExampleStudent_FullName() {
	student := store.Student{FirstName: "Alice", LastName: "Nguyen"}
	fmt.Println(student.FullName())
	// Output: Alice Nguyen
}

// --- Benchmarks ---

func BenchmarkStudentValidate(b *testing.B) {
	student := validStudent()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = student.Validate()
	}
}
