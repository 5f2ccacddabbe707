package service

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	StatusCode int
	Wrapped    error
}

func (e HTTPError) Error() string {
	return e.Wrapped.Error()
}

func (e HTTPError) Unwrap() error {
	return e.Wrapped
}

func httpError(statusCode int, err error) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Wrapped:    err,
	}
}

// AuthzDeniedError is an authorization denial carrying the resolved group
// and team names so operators can see what was found. It deliberately does
// not distinguish "no data" from "data present but uncorrelated" towards
// the caller; the logs do.
type AuthzDeniedError struct {
	UserGroups    []string
	MatchingTeams []string
}

func (e *AuthzDeniedError) Error() string {
	return "not authorized: no matching group/team correlation for this repository"
}
