// Package identifier derives the office email and employee ID for a
// submission. Both derivations are pure: the caller supplies the counts and
// decides how they are obtained (live query for previews, guarded counter
// for actual assignment).
//
// No name sanitization happens here. Control characters or "@" in names
// propagate verbatim into the generated address; callers that need a clean
// address must sanitize first.
package identifier

import (
	"fmt"
	"strings"
)

// Domain is the fixed company domain appended to every office email.
const Domain = "faucek.com"

// EmployeeIDPrefix is the fixed prefix of every employee identifier.
const EmployeeIDPrefix = "FAC-EMP-"

// OfficeEmail derives the company address for a first/last name pair.
// sameNameCount is the number of prior submissions sharing the same name
// (case-insensitive); it is always encoded as a two-digit zero-padded
// suffix, so the first occurrence of a name gets "00":
//
//	OfficeEmail("Jane", "Doe", 0) == "jane.doe00@faucek.com"
//	OfficeEmail("Jane", "Doe", 3) == "jane.doe03@faucek.com"
//
// Counts of 100 or more widen the suffix naturally.
func OfficeEmail(firstName, lastName string, sameNameCount int64) string {
	base := strings.ToLower(firstName) + "." + strings.ToLower(lastName)
	return fmt.Sprintf("%s%02d@%s", base, sameNameCount, Domain)
}

// EmployeeID derives the sequential identifier for the totalCount-th
// submission (0-indexed):
//
//	EmployeeID(4) == "FAC-EMP-004"
//
// Counts past 999 widen the numeric field instead of wrapping.
func EmployeeID(totalCount int64) string {
	return fmt.Sprintf("%s%03d", EmployeeIDPrefix, totalCount)
}

// NameKey returns the counter key for a first/last name pair, normalized the
// same way OfficeEmail lowercases its inputs so counter lookups and address
// derivation can never disagree on case.
func NameKey(firstName, lastName string) string {
	return "name:" + strings.ToLower(firstName) + "." + strings.ToLower(lastName)
}

// EmployeeKey is the counter key backing the global employee sequence.
const EmployeeKey = "employee"
