package authn

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"

	"github.com/david-wiggs/jenkins-passthrough/internal/directory"
)

func TestMockAuthenticate(t *testing.T) {
	tests := []struct {
		name     string
		users    []string
		username string
		want     bool
	}{
		{
			name:     "User In Allow-List",
			users:    []string{"alice", "bob"},
			username: "alice",
			want:     true,
		},
		{
			name:     "User Not In Allow-List",
			users:    []string{"alice"},
			username: "mallory",
			want:     false,
		},
		{
			name:     "Wildcard Allows Everyone",
			users:    []string{"*"},
			username: "anyone",
			want:     true,
		},
		{
			name:     "Empty Allow-List Denies",
			users:    nil,
			username: "alice",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMock(map[string]any{"users": tt.users, "delay": "1ms"})
			if err != nil {
				t.Fatalf("NewMock() error = %v", err)
			}
			out := m.Authenticate(context.Background(), tt.username, "irrelevant")
			if out.Success != tt.want {
				t.Errorf("Authenticate(%q) success = %v, want %v", tt.username, out.Success, tt.want)
			}
			if tt.want && out.BearerToken == "" {
				t.Errorf("Authenticate(%q) returned empty bearer token on success", tt.username)
			}
		})
	}
}

func TestLookup_FailsClosedWithoutServiceClient(t *testing.T) {
	l := NewLookup(nil, directory.NewClient("http://unused"), false)
	if out := l.Authenticate(context.Background(), "alice", "pw"); out.Success {
		t.Errorf("Authenticate() success = true, want fail-closed denial")
	}
}

func TestLookup_AllowsWithoutServiceClientInDevelopment(t *testing.T) {
	l := NewLookup(nil, directory.NewClient("http://unused"), true)
	if out := l.Authenticate(context.Background(), "alice", "pw"); !out.Success {
		t.Errorf("Authenticate() success = false, want development-mode allow")
	}
}

// grantTestServer speaks just enough OAuth2 + directory API for the grant
// strategy: a token endpoint and a /me profile endpoint.
func grantTestServer(t *testing.T, upn string, grantStatus int, grantBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if grantStatus != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(grantStatus)
			fmt.Fprint(w, grantBody)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "user-token", "token_type": "Bearer", "expires_in": 3600}`)
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer user-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprintf(w, `{"id": "1", "userPrincipalName": %q}`, upn)
	})
	return httptest.NewServer(mux)
}

func newGrantAuthenticator(srvURL string) *GrantAuthenticator {
	return NewGrant(&oauth2.Config{
		ClientID: "client",
		Endpoint: oauth2.Endpoint{TokenURL: srvURL + "/token"},
	}, directory.NewClient(srvURL))
}

func TestGrant_Success(t *testing.T) {
	srv := grantTestServer(t, "Alice@Example.com", http.StatusOK, "")
	defer srv.Close()

	g := newGrantAuthenticator(srv.URL)
	// canonical name comparison is case-insensitive
	out := g.Authenticate(context.Background(), "alice@example.com", "pw")
	if !out.Success {
		t.Fatalf("Authenticate() success = false, reason %q", out.Reason)
	}
	if out.BearerToken != "user-token" {
		t.Errorf("BearerToken = %q, want user-token", out.BearerToken)
	}
}

func TestGrant_InvalidCredentials(t *testing.T) {
	srv := grantTestServer(t, "", http.StatusBadRequest, `{"error": "invalid_grant"}`)
	defer srv.Close()

	g := newGrantAuthenticator(srv.URL)
	if out := g.Authenticate(context.Background(), "alice", "wrong"); out.Success {
		t.Errorf("Authenticate() success = true, want denial")
	}
}

func TestGrant_PrincipalMismatchDenied(t *testing.T) {
	srv := grantTestServer(t, "someone-else@example.com", http.StatusOK, "")
	defer srv.Close()

	g := newGrantAuthenticator(srv.URL)
	if out := g.Authenticate(context.Background(), "alice@example.com", "pw"); out.Success {
		t.Errorf("Authenticate() success = true, want token-substitution denial")
	}
}
