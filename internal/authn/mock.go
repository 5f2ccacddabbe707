package authn

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"

	"github.com/david-wiggs/jenkins-passthrough/internal/config"
	"github.com/david-wiggs/jenkins-passthrough/internal/core"
)

var _ core.Authenticator = (*MockAuthenticator)(nil)

// MockOptions are the strategy options of the allow-list authenticator.
type MockOptions struct {
	// Users allowed to authenticate. "*" allows everyone.
	Users []string `mapstructure:"users"`

	// Delay emulates identity-provider latency.
	Delay time.Duration `mapstructure:"delay"`
}

// MockAuthenticator succeeds iff the username is present in the configured
// allow-list (or the allow-list contains a wildcard). It never contacts any
// external system; the delay emulates provider latency so callers exercise
// realistic timing.
type MockAuthenticator struct {
	users []string
	delay time.Duration
}

func NewMock(options map[string]any) (*MockAuthenticator, error) {
	opts := MockOptions{Delay: 250 * time.Millisecond}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &opts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder for mock strategy options: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return nil, fmt.Errorf("failed to decode mock strategy options: %w", err)
	}

	return &MockAuthenticator{
		users: opts.Users,
		delay: opts.Delay,
	}, nil
}

func (m *MockAuthenticator) Name() string {
	return config.StrategyMock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, username, _ string) core.AuthOutcome {
	select {
	case <-time.After(m.delay):
	case <-ctx.Done():
		return core.AuthOutcome{Reason: "request cancelled"}
	}

	if slices.Contains(m.users, "*") || slices.Contains(m.users, username) {
		log.Ctx(ctx).Debug().Str("user", username).Msg("mock authentication succeeded")
		return core.AuthOutcome{
			Success:     true,
			BearerToken: "mock-token-" + username,
		}
	}

	log.Ctx(ctx).Warn().Str("user", username).Msg("mock authentication denied, user not in allow-list")
	return core.AuthOutcome{Reason: "user not in allow-list"}
}
