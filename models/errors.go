package models

import (
	"errors"
	"fmt"
)

// ErrUndefinedLevel is returned when a strategy could not derive a level.
// Callers skip the annotation instead of failing.
var ErrUndefinedLevel = errors.New("level is undefined")

// DataFetchError means market data could not be retrieved: network failure,
// unknown symbol, rejected interval or an unreadable response.
type DataFetchError struct {
	Source string
	Symbol string
	Err    error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("%s: fetch %s: %v", e.Source, e.Symbol, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// EmptySeriesError means the fetch succeeded but produced no usable rows.
type EmptySeriesError struct {
	Symbol   string
	Interval string
}

func (e *EmptySeriesError) Error() string {
	if e.Symbol == "" {
		return "empty price series"
	}
	return fmt.Sprintf("no data for %s (interval %s)", e.Symbol, e.Interval)
}

// RemoteServiceError wraps any failure of the recommendation service:
// transport, authentication, quota, timeout or a malformed completion.
type RemoteServiceError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *RemoteServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: http %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// UndefinedLevelError tells which side of a LevelPair is missing.
type UndefinedLevelError struct {
	Side     string // support or resistance
	Strategy string
}

func (e *UndefinedLevelError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Strategy, e.Side, ErrUndefinedLevel)
}

func (e *UndefinedLevelError) Unwrap() error { return ErrUndefinedLevel }

// InvalidRequestError rejects user input before anything is fetched.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
