// Package auth verifies OpenID Connect ID tokens presented as bearer
// credentials.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Verifier checks ID tokens issued by one OIDC provider for one client.
type Verifier struct {
	verifier       *oidc.IDTokenVerifier
	allowedDomains []string
}

// Claims represents the claims read from an ID token.
type Claims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// NewVerifier creates a Verifier using provider discovery.
func NewVerifier(ctx context.Context, issuerURL, clientID string, allowedDomains []string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	return NewVerifierFrom(verifier, allowedDomains), nil
}

// NewVerifierFrom wraps an existing go-oidc verifier.
func NewVerifierFrom(verifier *oidc.IDTokenVerifier, allowedDomains []string) *Verifier {
	return &Verifier{
		verifier:       verifier,
		allowedDomains: allowedDomains,
	}
}

// Verify validates a raw ID token and returns its claims.
func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (*Claims, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}
	if err := v.ValidateClaims(&claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// ValidateClaims checks if the claims meet requirements (e.g., domain restriction).
func (v *Verifier) ValidateClaims(claims *Claims) error {
	if claims.Email == "" {
		return fmt.Errorf("email claim is required")
	}

	// Check domain restriction if configured
	if len(v.allowedDomains) > 0 {
		emailParts := strings.Split(claims.Email, "@")
		if len(emailParts) != 2 {
			return fmt.Errorf("invalid email format")
		}
		domain := strings.ToLower(emailParts[1])

		allowed := false
		for _, d := range v.allowedDomains {
			if strings.ToLower(d) == domain {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("email domain %s is not allowed", domain)
		}
	}

	return nil
}

// LooksLikeJWT returns true if token has the three dot-separated segments of
// a compact JWS. API keys never contain dots.
func LooksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}
