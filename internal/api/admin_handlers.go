package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/david-wiggs/jenkins-passthrough/internal/api/presenter"
	"github.com/david-wiggs/jenkins-passthrough/internal/core"
)

const defaultAuditLimit = 100

// handleAdminAudit returns recent audit entries. Supports ?limit=, ?user= and
// ?granted= filters. Only available when the configured auditor can be
// queried back.
func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	searcher, ok := s.auditor.(core.AuditSearcher)
	if !ok {
		presenter.Error(w, r, "configured auditor is not searchable", http.StatusNotImplemented)
		return
	}

	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			presenter.Error(w, r, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	user := r.URL.Query().Get("user")
	grantedRaw := r.URL.Query().Get("granted")

	var entries []core.AuditEntry
	var err error
	if user == "" && grantedRaw == "" {
		entries, err = searcher.GetRecent(limit)
	} else {
		var granted bool
		if grantedRaw != "" {
			granted, err = strconv.ParseBool(grantedRaw)
			if err != nil {
				presenter.Error(w, r, "invalid granted filter", http.StatusBadRequest)
				return
			}
		}
		entries, err = searcher.Find(func(entry core.AuditEntry) bool {
			if user != "" && !strings.EqualFold(entry.Username, user) {
				return false
			}
			if grantedRaw != "" && entry.Granted != granted {
				return false
			}
			return true
		}, limit)
	}
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to query audit log")
		presenter.Error(w, r, "failed to query audit log", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, map[string]any{
		"count":   len(entries),
		"entries": entries,
	}, http.StatusOK)
}

// handleAdminTokens lists metadata of tokens that have not expired yet.
func (s *Server) handleAdminTokens(w http.ResponseWriter, r *http.Request) {
	if s.tokenStore == nil {
		presenter.Error(w, r, "token store is not configured", http.StatusNotImplemented)
		return
	}

	tokens, err := s.tokenStore.ListActive(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to list active tokens")
		presenter.Error(w, r, "failed to list active tokens", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, map[string]any{
		"count":  len(tokens),
		"tokens": tokens,
	}, http.StatusOK)
}
