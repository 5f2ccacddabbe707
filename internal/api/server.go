package api

import (
	"net/http"

	"github.com/david-wiggs/jenkins-passthrough/internal/api/middleware"
	"github.com/david-wiggs/jenkins-passthrough/internal/core"
	"github.com/david-wiggs/jenkins-passthrough/internal/service"
)

type Server struct {
	validationService *service.ValidationService
	auditor           core.Auditor
	tokenStore        core.TokenStore
}

func NewServer(
	validationService *service.ValidationService,
	auditor core.Auditor,
	tokenStore core.TokenStore,
) *Server {
	return &Server{
		validationService: validationService,
		auditor:           auditor,
		tokenStore:        tokenStore,
	}
}

// Routes builds the handler chain. An empty admin signing key disables the
// admin API entirely.
func (s *Server) Routes(adminSigningKey []byte, corsOrigins []string) http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	// the validation route, the reason this service exists
	mux.HandleFunc("POST "+ValidateCredentialsRoute, s.handleValidate)

	// admin routes
	if len(adminSigningKey) > 0 {
		adminMux := http.NewServeMux()
		adminMux.HandleFunc("GET "+ListAuditsRoute, s.handleAdminAudit)
		adminMux.HandleFunc("GET "+ListActiveTokensRoute, s.handleAdminTokens)
		mux.Handle(AdminParent, middleware.AdminAuth(adminSigningKey)(adminMux))
	}

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.CORSMiddleware(corsOrigins)(
				middleware.LoggingMiddleware(
					mux))))
}
