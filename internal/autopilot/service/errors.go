// Package service implements the business operations behind the HTTP layer:
// sessions, tenancy, OAuth state hand-off, client management, and the report
// compile pipeline. Services hold their dependencies as fields and are
// constructed once at startup.
package service

import "errors"

var (
	// ErrInvalidCredentials is returned on login with an unknown email or a
	// wrong password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAgencyMember is returned when the caller does not belong to the
	// agency that owns the resource being touched.
	ErrNotAgencyMember = errors.New("not a member of this agency")

	// ErrUnsupportedPlatform is returned for platform identifiers outside
	// the configured registry.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrInvalidInput is returned for structurally invalid parameters, such
	// as a blank email or an unknown schedule.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when the addressed resource does not exist
	// within the caller's agency.
	ErrNotFound = errors.New("not found")
)
