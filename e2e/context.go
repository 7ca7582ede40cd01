package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	id "vaxledger/pkg/domain"
)

// TokenIssuer mints bearer tokens for caller addresses.
type TokenIssuer interface {
	IssueCallerToken(ctx context.Context, address id.Address, label string) (string, error)
}

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	AdminToken       string

	issuer      TokenIssuer
	bearer      string
	persons     map[string]string
	proofTokens map[string]string
}

// NewTestContext creates a new test context against baseURL.
func NewTestContext(baseURL, adminToken string, issuer TokenIssuer) *TestContext {
	return &TestContext{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		AdminToken:  adminToken,
		issuer:      issuer,
		persons:     make(map[string]string),
		proofTokens: make(map[string]string),
	}
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body interface{}) error {
	return tc.send(http.MethodPost, path, body, nil)
}

// POSTWithHeaders makes a POST request with optional headers
func (tc *TestContext) POSTWithHeaders(path string, body interface{}, headers map[string]string) error {
	return tc.send(http.MethodPost, path, body, headers)
}

// PUTWithHeaders makes a PUT request with optional headers
func (tc *TestContext) PUTWithHeaders(path string, body interface{}, headers map[string]string) error {
	return tc.send(http.MethodPut, path, body, headers)
}

func (tc *TestContext) send(method, path string, body interface{}, headers map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return tc.do(req)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return nil
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}

	return value, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}

	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}

	return false
}

// Getter methods for step package interfaces

func (tc *TestContext) GetAdminToken() string {
	return tc.AdminToken
}

// ActAs switches the bearer token attached to authenticated requests.
func (tc *TestContext) ActAs(address string) error {
	token, err := tc.issuer.IssueCallerToken(context.Background(), id.Address(address), "e2e")
	if err != nil {
		return fmt.Errorf("issue token for %s: %w", address, err)
	}
	tc.bearer = "Bearer " + token
	return nil
}

// AuthHeaders returns the Authorization header for the current caller, if any.
func (tc *TestContext) AuthHeaders() map[string]string {
	if tc.bearer == "" {
		return nil
	}
	return map[string]string{"Authorization": tc.bearer}
}

func (tc *TestContext) GetPersonID(name string) (string, bool) {
	v, ok := tc.persons[name]
	return v, ok
}

func (tc *TestContext) SetPersonID(name, personID string) {
	tc.persons[name] = personID
}

func (tc *TestContext) GetProofToken(name string) (string, bool) {
	v, ok := tc.proofTokens[name]
	return v, ok
}

func (tc *TestContext) SetProofToken(name, token string) {
	tc.proofTokens[name] = token
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}
