package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/david-wiggs/jenkins-passthrough/internal/api/presenter"
	"github.com/david-wiggs/jenkins-passthrough/internal/service"
)

type validatePayload struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Repository   string `json:"repository"`
	Organization string `json:"organization,omitempty"`
}

type validateResponse struct {
	Success       bool     `json:"success"`
	Token         string   `json:"token"`
	Scopes        []string `json:"scopes"`
	Permissions   string   `json:"permissions"`
	UserGroups    []string `json:"userGroups,omitempty"`
	MatchingTeams []string `json:"matchingTeams,omitempty"`
	ExpiresAt     string   `json:"expiresAt,omitempty"`
}

type validateErrorResponse struct {
	Success       bool     `json:"success"`
	Error         string   `json:"error"`
	UserGroups    []string `json:"userGroups,omitempty"`
	MatchingTeams []string `json:"matchingTeams,omitempty"`
}

// handleValidate validates a set of Jenkins credentials against a repository
// and responds with a scoped token on success.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var payload validatePayload
	if err := DecodePayload(r, &payload, false); err != nil {
		presenter.Error(w, r, "invalid request body", http.StatusBadRequest)
		return
	}

	// all three are required before the pipeline runs
	if payload.Username == "" || payload.Password == "" || payload.Repository == "" {
		presenter.JSON(w, r, validateErrorResponse{
			Error: "username, password and repository are required",
		}, http.StatusBadRequest)
		return
	}

	result, err := s.validationService.Validate(r.Context(), service.ValidateRequest{
		Username:     payload.Username,
		Password:     payload.Password,
		Repository:   payload.Repository,
		Organization: payload.Organization,
	})
	if err != nil {
		s.writeValidateError(w, r, err)
		return
	}

	resp := validateResponse{
		Success:       true,
		Token:         result.Token,
		Scopes:        result.Scopes,
		Permissions:   result.Permission,
		UserGroups:    result.UserGroups,
		MatchingTeams: result.MatchingTeams,
	}
	if result.ExpiresAt != nil {
		resp.ExpiresAt = result.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	presenter.JSON(w, r, resp, http.StatusOK)
}

func (s *Server) writeValidateError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var httpErr *service.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.StatusCode
	}

	// authorization denials carry diagnostics the caller may show in the
	// Jenkins console, everything else stays generic
	var denied *service.AuthzDeniedError
	if errors.As(err, &denied) {
		presenter.JSON(w, r, validateErrorResponse{
			Error:         denied.Error(),
			UserGroups:    denied.UserGroups,
			MatchingTeams: denied.MatchingTeams,
		}, status)
		return
	}

	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg("validation failed")
	}
	presenter.JSON(w, r, validateErrorResponse{Error: err.Error()}, status)
}
