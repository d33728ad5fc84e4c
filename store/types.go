package store

import "time"

// MinEstablishedYear is the oldest founding year a school may claim.
const MinEstablishedYear = 1800

// Grades lists the accepted grade labels, ordered lowest to highest.
var Grades = []string{
	"1st", "2nd", "3rd", "4th", "5th", "6th",
	"7th", "8th", "9th", "10th", "11th", "12th",
}

// School is a stored school record.
//
// The students attribute is a string set holding the ids of enrolled
// students. It starts empty and is mutated only through AddStudentToSet and
// RemoveStudentFromSet; the update surface cannot touch it.
type School struct {
	ID              string    `json:"id" dynamodbav:"id"`
	Name            string    `json:"name" dynamodbav:"name" validate:"required,max=100"`
	Address         string    `json:"address" dynamodbav:"address" validate:"required,max=200"`
	Phone           string    `json:"phone" dynamodbav:"phone" validate:"required,phone"`
	Email           string    `json:"email" dynamodbav:"email" validate:"required,email"`
	EstablishedYear int       `json:"establishedYear" dynamodbav:"established_year" validate:"required,established_year"`
	Principal       string    `json:"principal,omitempty" dynamodbav:"principal,omitempty" validate:"max=100"`
	Students        []string  `json:"students" dynamodbav:"students,stringset,omitempty"`
	CreatedAt       time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// Student is a stored student record.
//
// SchoolID holds the id of the school the student is enrolled in; an empty
// value (absent attribute) means not enrolled. The field is persisted
// verbatim and is not verified against the schools table here; cross-record
// maintenance belongs to the enrollment coordinator.
type Student struct {
	ID             string      `json:"id" dynamodbav:"id"`
	FirstName      string      `json:"firstName" dynamodbav:"first_name" validate:"required,max=50"`
	LastName       string      `json:"lastName" dynamodbav:"last_name" validate:"required,max=50"`
	Email          string      `json:"email" dynamodbav:"email" validate:"required,email"`
	Phone          string      `json:"phone,omitempty" dynamodbav:"phone,omitempty" validate:"omitempty,phone"`
	DateOfBirth    time.Time   `json:"dateOfBirth" dynamodbav:"date_of_birth" validate:"required,before_now"`
	Grade          string      `json:"grade" dynamodbav:"grade" validate:"required,oneof=1st 2nd 3rd 4th 5th 6th 7th 8th 9th 10th 11th 12th"`
	Address        *Address    `json:"address,omitempty" dynamodbav:"address,omitempty"`
	ParentInfo     *ParentInfo `json:"parentInfo,omitempty" dynamodbav:"parent_info,omitempty"`
	EnrollmentDate time.Time   `json:"enrollmentDate" dynamodbav:"enrollment_date"`
	IsActive       bool        `json:"isActive" dynamodbav:"is_active"`
	SchoolID       string      `json:"school,omitempty" dynamodbav:"school,omitempty"`
	CreatedAt      time.Time   `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" dynamodbav:"updated_at"`
}

// FullName returns the student's display name.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Address is a student's mailing address.
type Address struct {
	Street  string `json:"street,omitempty" dynamodbav:"street,omitempty"`
	City    string `json:"city,omitempty" dynamodbav:"city,omitempty"`
	State   string `json:"state,omitempty" dynamodbav:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" dynamodbav:"zip_code,omitempty" validate:"omitempty,zipcode"`
}

// ParentInfo is a student's guardian contact information.
type ParentInfo struct {
	Name  string `json:"name,omitempty" dynamodbav:"name,omitempty"`
	Phone string `json:"phone,omitempty" dynamodbav:"phone,omitempty" validate:"omitempty,phone"`
	Email string `json:"email,omitempty" dynamodbav:"email,omitempty" validate:"omitempty,email"`
}

// SchoolUpdate carries a partial update of a school. Nil fields are left
// unchanged; supplied fields are validated against the same constraints as
// at creation.
type SchoolUpdate struct {
	Name            *string `json:"name" validate:"omitnil,min=1,max=100"`
	Address         *string `json:"address" validate:"omitnil,min=1,max=200"`
	Phone           *string `json:"phone" validate:"omitnil,phone"`
	Email           *string `json:"email" validate:"omitnil,email"`
	EstablishedYear *int    `json:"establishedYear" validate:"omitnil,established_year"`
	Principal       *string `json:"principal" validate:"omitnil,max=100"`
}

// StudentUpdate carries a partial update of a student. Nil fields are left
// unchanged. School follows the patch convention used across the API: nil
// leaves the reference alone, an empty string clears it.
type StudentUpdate struct {
	FirstName      *string     `json:"firstName" validate:"omitnil,min=1,max=50"`
	LastName       *string     `json:"lastName" validate:"omitnil,min=1,max=50"`
	Email          *string     `json:"email" validate:"omitnil,email"`
	Phone          *string     `json:"phone" validate:"omitnil,omitempty,phone"`
	DateOfBirth    *time.Time  `json:"dateOfBirth" validate:"omitnil,before_now"`
	Grade          *string     `json:"grade" validate:"omitnil,oneof=1st 2nd 3rd 4th 5th 6th 7th 8th 9th 10th 11th 12th"`
	Address        *Address    `json:"address"`
	ParentInfo     *ParentInfo `json:"parentInfo"`
	EnrollmentDate *time.Time  `json:"enrollmentDate"`
	IsActive       *bool       `json:"isActive"`
	School         *string     `json:"school"`
}

// StudentFilter narrows a student listing. Zero values mean no constraint;
// every supplied field is an exact match.
type StudentFilter struct {
	School   string
	Grade    string
	IsActive *bool
}
