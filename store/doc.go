// Package store persists school and student records in DynamoDB.
//
// Each record type lives in its own table keyed by an opaque id. Emails are
// unique per record type, enforced through a separate claim table written
// transactionally with the record. A school's roster is a native string set
// mutated through atomic, idempotent ADD/DELETE updates.
//
// # Key Features
//
//   - Field validation with per-field error messages
//   - Email uniqueness via conditional claim writes (atomic)
//   - Atomic set membership for school rosters
//   - Partial updates that re-validate only supplied fields
//   - School-scoped student listing through a global secondary index
//
// # Ownership
//
// The store never performs cross-record maintenance: setting a student's
// school reference does not touch the school's roster and vice versa.
// Sequencing both sides of the association belongs to the enrollment
// coordinator.
//
// # Validation
//
// [School.Validate] and [Student.Validate] check every client field;
// [SchoolUpdate.Validate] and [StudentUpdate.Validate] check only supplied
// fields. All of them report failures as a [ValidationError] holding a
// field-to-message map.
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [ErrNotFound] - record doesn't exist
//   - [ErrAlreadyExists] - record with this id already exists
//   - [ErrDuplicateEmail] - email claimed by another record
//   - [ValidationError] - one or more fields failed their constraints
package store
