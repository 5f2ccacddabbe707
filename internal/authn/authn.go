// Package authn provides the pluggable authentication capability: three
// interchangeable strategies behind the core.Authenticator contract,
// selected once at startup from configuration. Strategies never return
// errors: any non-success outcome is a denial, and its reason stays in the
// logs.
package authn

import (
	"context"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/david-wiggs/jenkins-passthrough/internal/config"
	"github.com/david-wiggs/jenkins-passthrough/internal/core"
	"github.com/david-wiggs/jenkins-passthrough/internal/directory"
)

// Build constructs the authenticator selected by cfg.Strategy. The rest of
// the pipeline never branches on the strategy tag again.
func Build(ctx context.Context, cfg config.IdentityConfig, dir *directory.Client, development bool) (core.Authenticator, error) {
	switch cfg.Strategy {
	case config.StrategyMock:
		return NewMock(cfg.Options)

	case config.StrategyLookup:
		var cc *clientcredentials.Config
		if cfg.ClientID != "" && cfg.ClientSecret != "" {
			tokenURL, err := tokenEndpoint(ctx, cfg)
			if err != nil {
				return nil, err
			}
			cc = &clientcredentials.Config{
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
				TokenURL:     tokenURL,
				Scopes:       []string{defaultScope(cfg.BaseURL)},
			}
		}
		return NewLookup(cc, dir, development), nil

	case config.StrategyGrant:
		tokenURL, err := tokenEndpoint(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewGrant(&oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
			Scopes:       []string{defaultScope(cfg.BaseURL)},
		}, dir), nil

	default:
		return nil, fmt.Errorf("unknown authentication strategy %q", cfg.Strategy)
	}
}

// tokenEndpoint resolves the provider's token endpoint: an explicit
// token_url wins, otherwise it is discovered from the issuer's OIDC
// metadata.
func tokenEndpoint(ctx context.Context, cfg config.IdentityConfig) (string, error) {
	if cfg.TokenURL != "" {
		return cfg.TokenURL, nil
	}
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return "", fmt.Errorf("discovering identity provider endpoints: %w", err)
	}
	return provider.Endpoint().TokenURL, nil
}

// defaultScope derives the resource default scope from the directory base
// URL (e.g. https://graph.microsoft.com/.default).
func defaultScope(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return ".default"
	}
	return u.Scheme + "://" + u.Host + "/.default"
}
