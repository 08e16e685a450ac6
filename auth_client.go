package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go-registration-portal/models"
)

// AuthProviderClient defines the operations the portal needs from the
// external identity service. The portal never stores credentials itself.
type AuthProviderClient interface {
	// LookupEmailProvider reports which sign-in provider, if any, an email
	// address is registered with. An unknown address is not an error.
	LookupEmailProvider(email string) (*models.ProviderLookup, error)

	// RequestPasswordReset asks the identity service to send a reset mail.
	RequestPasswordReset(email, redirectURL string) error

	// CreateAccount registers the credentials with the identity service.
	CreateAccount(email, password string) error

	// HealthCheck verifies the identity service is available
	HealthCheck() error
}

// IdentityServiceClient implements the AuthProviderClient interface
type IdentityServiceClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewIdentityServiceClient creates a new instance of IdentityServiceClient
func NewIdentityServiceClient(baseURL, serviceKey string) *IdentityServiceClient {
	return &IdentityServiceClient{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *IdentityServiceClient) newRequest(method, url string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	}
	return req, nil
}

// LookupEmailProvider asks the identity service which provider an email is
// registered with. A 404 means the account simply does not exist and yields
// an empty lookup rather than an error.
func (c *IdentityServiceClient) LookupEmailProvider(email string) (*models.ProviderLookup, error) {
	url := fmt.Sprintf("%s/user-provider", c.baseURL)

	req, err := c.newRequest(http.MethodPost, url, map[string]string{"email": email})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute provider lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		slog.Debug("Provider lookup found no account")
		return &models.ProviderLookup{}, nil
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider lookup failed with status %d: %s", resp.StatusCode, string(body))
	}

	var lookup models.ProviderLookup
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return nil, fmt.Errorf("failed to decode provider lookup response: %w", err)
	}

	slog.Debug("Provider lookup completed", "found", lookup.Email != nil)
	return &lookup, nil
}

// RequestPasswordReset asks the identity service to mail a reset link.
func (c *IdentityServiceClient) RequestPasswordReset(email, redirectURL string) error {
	url := fmt.Sprintf("%s/recover", c.baseURL)

	payload := map[string]string{"email": email}
	if redirectURL != "" {
		payload["redirect_url"] = redirectURL
	}

	req, err := c.newRequest(http.MethodPost, url, payload)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute password reset request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("password reset failed with status %d: %s", resp.StatusCode, string(body))
	}

	slog.Info("Password reset requested at identity service")
	return nil
}

// CreateAccount registers new credentials with the identity service.
func (c *IdentityServiceClient) CreateAccount(email, password string) error {
	url := fmt.Sprintf("%s/signup", c.baseURL)

	req, err := c.newRequest(http.MethodPost, url, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute signup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("signup failed with status %d: %s", resp.StatusCode, string(body))
	}

	slog.Info("Account created at identity service")
	return nil
}

// HealthCheck verifies the identity service is available
func (c *IdentityServiceClient) HealthCheck() error {
	url := fmt.Sprintf("%s/healthz", c.baseURL)

	req, err := c.newRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute health check request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check failed with status %d: %s", resp.StatusCode, string(body))
	}

	slog.Info("Identity service health check passed")
	return nil
}
