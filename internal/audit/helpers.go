package audit

import (
	"fmt"

	"github.com/david-wiggs/jenkins-passthrough/internal/buildinfo"
)

// CreateUserAgent tags outgoing platform API calls so issued tokens can be
// traced back to the originating validation request.
func CreateUserAgent(correlationID, username string) string {
	return fmt.Sprintf("jenkins-passthrough/%s (correlation_id=%s; user=%s)",
		buildinfo.Version, correlationID, username)
}
