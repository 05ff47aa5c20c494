// Package google acquires capability tokens for the Sheets ledger via
// the OAuth2 refresh-token flow.
package google

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// Endpoint is Google's OAuth2 token endpoint. Overridable for tests.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// TokenSource exchanges a stored refresh token for short-lived access
// tokens. It implements ports.TokenSource.
type TokenSource struct {
	conf         *oauth2.Config
	refreshToken string
}

func NewTokenSource(clientID, clientSecret, refreshToken string) *TokenSource {
	return &TokenSource{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     Endpoint,
			Scopes:       []string{"https://www.googleapis.com/auth/spreadsheets"},
		},
		refreshToken: refreshToken,
	}
}

// Token returns a fresh access token, exchanging the refresh token on
// every call so a caller always holds a non-expired capability.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	if t.refreshToken == "" {
		return "", errors.New("google: no refresh token configured")
	}
	src := t.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: t.refreshToken})
	tok, err := src.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
