package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/calboard/internal/agenda"
)

// CredentialType represents the type of a Google credentials JSON document.
type CredentialType int

const (
	CredentialTypeUnknown CredentialType = iota
	CredentialTypeOAuthClient
	CredentialTypeServiceAccount
)

func (t CredentialType) String() string {
	switch t {
	case CredentialTypeOAuthClient:
		return "OAuth Client"
	case CredentialTypeServiceAccount:
		return "Service Account"
	default:
		return "Unknown"
	}
}

// DetectCredentialType examines the JSON structure to determine credential type.
func DetectCredentialType(data []byte) (CredentialType, error) {
	var check map[string]any
	if err := json.Unmarshal(data, &check); err != nil {
		return CredentialTypeUnknown, fmt.Errorf("failed to parse credentials: %w", err)
	}

	if typ, ok := check["type"].(string); ok && typ == "service_account" {
		return CredentialTypeServiceAccount, nil
	}
	if _, ok := check["installed"]; ok {
		return CredentialTypeOAuthClient, nil
	}
	if _, ok := check["web"]; ok {
		return CredentialTypeOAuthClient, nil
	}

	return CredentialTypeUnknown, fmt.Errorf("unknown credential type")
}

// DecodeInline accepts a service account key passed through the environment.
// Raw JSON is returned unchanged; anything else is treated as standard base64.
func DecodeInline(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if strings.HasPrefix(value, "{") {
		return []byte(value), nil
	}
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("service account JSON is neither JSON nor base64: %w", err)
	}
	return data, nil
}

// ReadCredentialsFile loads a service account key from disk.
func ReadCredentialsFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key: %w", err)
	}
	return data, nil
}

// ValidateServiceAccount checks that data is a service account key with the
// fields the JWT flow needs. Failures are configuration errors.
func ValidateServiceAccount(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return agenda.NewConfigurationError("missing service account credentials")
	}

	credType, err := DetectCredentialType(data)
	if err != nil {
		return agenda.NewConfigurationError("invalid service account credentials: %v", err)
	}
	if credType != CredentialTypeServiceAccount {
		return agenda.NewConfigurationError("expected service account credentials, got %s", credType)
	}

	var key struct {
		ClientEmail string `json:"client_email"`
		PrivateKey  string `json:"private_key"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return agenda.NewConfigurationError("invalid service account credentials: %v", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return agenda.NewConfigurationError("service account credentials need client_email and private_key")
	}
	return nil
}

// NewHTTPClient returns an HTTP client that signs requests with a token
// minted from the service account key, restricted to DefaultScopes.
//
// The client is configured to use HTTP/1.1.
func NewHTTPClient(ctx context.Context, data []byte) (*http.Client, error) {
	if err := ValidateServiceAccount(data); err != nil {
		return nil, err
	}

	config, err := google.JWTConfigFromJSON(data, DefaultScopes...)
	if err != nil {
		return nil, agenda.NewConfigurationError("unable to parse service account key: %v", err)
	}

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: config.TokenSource(ctx),
			Base:   otelhttp.NewTransport(&http.Transport{ForceAttemptHTTP2: false, Proxy: http.ProxyFromEnvironment}),
		},
	}, nil
}
