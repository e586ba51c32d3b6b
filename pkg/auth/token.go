package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
)

const (
	// TokenFile holds the Notion integration token, stored as an oauth2.Token
	// under the user's config directory (~/.config/invoicer/token.json).
	TokenFile = "token.json"

	// TokenEnvVar overrides the token file when set.
	TokenEnvVar = "NOTION_TOKEN"

	xdgAppName = "invoicer"
)

var ErrNoToken = errors.New("no notion token configured")

// GetClient returns an *http.Client that sends the integration token as a
// bearer token on every request.
func GetClient(ctx context.Context) (*http.Client, error) {
	tok, err := LoadToken()
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok)), nil
}

// LoadToken resolves the integration token, preferring the environment.
func LoadToken() (*oauth2.Token, error) {
	if v := strings.TrimSpace(os.Getenv(TokenEnvVar)); v != "" {
		return &oauth2.Token{AccessToken: v, TokenType: "Bearer"}, nil
	}

	xdgConfigBase, err := GetXdgHome()
	if err != nil {
		return nil, err
	}
	tokenFile := filepath.Join(xdgConfigBase, TokenFile)
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: set %s or run with --set-token", ErrNoToken, TokenEnvVar)
		}
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoToken, tokenFile)
	}
	return tok, nil
}

// SaveToken stores the integration token in the user's config directory.
func SaveToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoToken
	}
	xdgConfigBase, err := GetXdgHome()
	if err != nil {
		return "", err
	}
	path := filepath.Join(xdgConfigBase, TokenFile)
	if err := saveToken(path, &oauth2.Token{AccessToken: token, TokenType: "Bearer"}); err != nil {
		return "", err
	}
	return path, nil
}

// tokenFromFile reads an oauth2.Token from a JSON file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

// saveToken writes an oauth2.Token to a JSON file readable only by its owner.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache notion token to %s: %w", path, err)
	}
	if err := json.NewEncoder(f).Encode(token); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode notion token: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to cache notion token to %s: %w", path, err)
	}
	return nil
}

func GetXdgHome() (string, error) {
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName), nil
}
