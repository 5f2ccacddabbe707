package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/icanhazpassthrough"

	ValidateCredentialsRoute = "/v1/token/validate"

	AdminParent           = "/v1/admin/"
	ListAuditsRoute       = AdminParent + "audits"
	ListActiveTokensRoute = AdminParent + "tokens"
)
