package calendar

import (
	"errors"
	"fmt"
)

// ErrCountryNotFound is wrapped by sources when the country code is unknown upstream.
var ErrCountryNotFound = errors.New("country not found")

// ValidCountryExamples are suggested back to the caller when a country is not found.
var ValidCountryExamples = []string{"AU", "US", "GB", "NZ", "JP"}

type FetchErrorKind int

const (
	SourceUnavailable FetchErrorKind = iota
	CountryNotFound
)

func (k FetchErrorKind) String() string {
	switch k {
	case CountryNotFound:
		return "country_not_found"
	default:
		return "source_unavailable"
	}
}

// FetchError aborts a window computation. No partial window is ever returned with it.
type FetchError struct {
	Kind        FetchErrorKind
	CountryCode string
	Suggestions []string
	Err         error
}

func newFetchError(countryCode string, cause error) *FetchError {
	if errors.Is(cause, ErrCountryNotFound) {
		return &FetchError{
			Kind:        CountryNotFound,
			CountryCode: countryCode,
			Suggestions: append([]string(nil), ValidCountryExamples...),
			Err:         cause,
		}
	}
	return &FetchError{Kind: SourceUnavailable, CountryCode: countryCode, Err: cause}
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("holiday fetch %s (country=%s)", e.Kind, e.CountryCode)
	}
	return fmt.Sprintf("holiday fetch %s (country=%s): %v", e.Kind, e.CountryCode, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Message is the caller-facing text for the error.
func (e *FetchError) Message() string {
	if e.Kind == CountryNotFound {
		return fmt.Sprintf("Country code '%s' not found in Nager.Date", e.CountryCode)
	}
	var se *StatusError
	if errors.As(e.Err, &se) {
		return fmt.Sprintf("Holiday API returned %d", se.Code)
	}
	return "Failed to reach holiday data service"
}

// StatusError is an unexpected non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("holiday api: http %d", e.Code)
	}
	return fmt.Sprintf("holiday api: http %d: %s", e.Code, e.Body)
}
