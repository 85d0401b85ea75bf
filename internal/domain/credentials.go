package domain

import "strings"

// Credentials is a provider client id / secret pair.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Complete reports whether both halves of the pair are present.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.ClientSecret) != ""
}

// String never prints the secret.
func (c Credentials) String() string {
	if c.ClientID == "" {
		return "credentials(empty)"
	}
	return "credentials(" + c.ClientID + ", secret=***)"
}

// CredentialContext carries the credentials visible to one request: whatever the caller
// cached in its session and the process-wide fallback from configuration.
type CredentialContext struct {
	Session  Credentials
	Fallback Credentials
}

// Resolve prefers the session pair and falls back to configuration. A half-filled pair
// is never mixed with the other source.
func (c CredentialContext) Resolve() (Credentials, error) {
	if c.Session.Complete() {
		return c.Session, nil
	}
	if c.Fallback.Complete() {
		return c.Fallback, nil
	}
	return Credentials{}, ErrMissingCredentials
}

// HasSession reports whether the caller cached a complete pair.
func (c CredentialContext) HasSession() bool {
	return c.Session.Complete()
}
