// Package services defines the business logic for onboarding submissions.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrInvalidCity is returned when the geocoding provider finds no match
	// for the submitted city.
	ErrInvalidCity = errors.New("city not recognized")

	// ErrDuplicateEmail is returned when a submission with the same
	// normalized email already exists.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrCityLookup is returned when the geocoding provider could not be
	// reached or answered with a failure; the city's validity is unknown.
	ErrCityLookup = errors.New("city lookup failed")
)
