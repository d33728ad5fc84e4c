package store

// Config holds configuration for the Store.
type Config struct {
	// SchoolsTable is the name of the schools table.
	// Default: "roster_schools"
	SchoolsTable string

	// StudentsTable is the name of the students table.
	// Default: "roster_students"
	StudentsTable string

	// EmailsTable is the name of the email uniqueness table. One row per
	// claimed email, written transactionally with the owning record.
	// Default: "roster_emails"
	EmailsTable string

	// StudentSchoolIndex is the global secondary index on the students
	// table keyed by the school attribute. School-scoped listings query it
	// instead of scanning.
	// Default: "school-index"
	StudentSchoolIndex string
}

// DefaultConfig returns the table layout used by the deployment templates.
func DefaultConfig() Config {
	return Config{
		SchoolsTable:       "roster_schools",
		StudentsTable:      "roster_students",
		EmailsTable:        "roster_emails",
		StudentSchoolIndex: "school-index",
	}
}

// validate fills in defaults for any unset values.
func (c *Config) validate() {
	if c.SchoolsTable == "" {
		c.SchoolsTable = "roster_schools"
	}
	if c.StudentsTable == "" {
		c.StudentsTable = "roster_students"
	}
	if c.EmailsTable == "" {
		c.EmailsTable = "roster_emails"
	}
	if c.StudentSchoolIndex == "" {
		c.StudentSchoolIndex = "school-index"
	}
}
