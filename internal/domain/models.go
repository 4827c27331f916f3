// Package domain defines the persistence models for onboarding submissions
// and identifier counters. These types are mapped with GORM and form the core
// data layer of the onboarding application.
package domain

import "time"

// Submission represents one completed onboarding form. It is created exactly
// once per successful submission and is never updated or deleted; later reads
// serve duplicate checks, identifier counting, and the workbook export.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: applicant's personal email, stored lowercased and trimmed;
//     globally unique (case-insensitive by virtue of normalization).
//   - ProfileImage: relative stored path (or URL) of the uploaded photo.
//   - OfficeEmail: derived company address, e.g. "jane.doe00@faucek.com".
//   - EmployeeID: derived sequential identifier, e.g. "FAC-EMP-004".
//   - CreatedAt: assigned at creation (UTC).
type Submission struct {
	ID                   string    `json:"id"                   gorm:"type:char(36);primaryKey"`
	FirstName            string    `json:"firstName"            gorm:"type:varchar(128);not null"`
	LastName             string    `json:"lastName"             gorm:"type:varchar(128);not null"`
	Email                string    `json:"email"                gorm:"type:varchar(255);not null;uniqueIndex:ux_submissions_email"`
	Phone                string    `json:"phone"                gorm:"type:varchar(64)"`
	City                 string    `json:"city"                 gorm:"type:varchar(128)"`
	ProfileImage         string    `json:"profileImage"         gorm:"type:varchar(512)"`
	HeardFrom            string    `json:"heardFrom"            gorm:"type:varchar(255)"`
	SelectedRole         string    `json:"selectedRole"         gorm:"type:varchar(128)"`
	FutureVision         string    `json:"futureVision"         gorm:"type:text"`
	OnboardingExperience string    `json:"onboardingExperience" gorm:"type:text"`
	OfficeEmail          string    `json:"officeEmail"          gorm:"type:varchar(255);not null"`
	EmployeeID           string    `json:"employeeId"           gorm:"type:varchar(32);not null"`
	CreatedAt            time.Time `json:"createdAt"`
}

// TableName returns the database table name for Submission.
func (Submission) TableName() string { return "submissions" }

// Counter is a named monotonic sequence used for identifier assignment.
// Counters are incremented inside the same transaction that inserts the
// submission, which closes the count-then-assign race the naive design has
// under concurrent requests.
//
// Keys in use:
//   - "employee": global sequence backing the employee ID.
//   - "name:<first>.<last>" (lowercased): per-name sequence backing the
//     office-email suffix.
type Counter struct {
	Key   string `gorm:"type:varchar(300);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the database table name for Counter.
func (Counter) TableName() string { return "counters" }
