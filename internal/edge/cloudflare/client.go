package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sitehost/internal/edge"
)

const (
	defaultAPIBase = "https://api.cloudflare.com/client/v4"
	requestTimeout = 10 * time.Second
)

// Client implements edge.Client against the Cloudflare custom hostname API.
// Calls are single round-trips with no retry; refresh is idempotent so the
// caller can simply re-invoke it.
type Client struct {
	apiBase  string
	apiToken string
	zoneID   string
	client   *http.Client
}

// New creates a Cloudflare custom hostname client. Credentials may be empty;
// every call then fails fast with edge.ErrNotConfigured.
func New(apiToken, zoneID string) *Client {
	return &Client{
		apiBase:  defaultAPIBase,
		apiToken: apiToken,
		zoneID:   zoneID,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// apiResponse represents the Cloudflare API envelope
type apiResponse struct {
	Success bool            `json:"success"`
	Errors  []apiError      `json:"errors"`
	Result  json.RawMessage `json:"result"`
}

// apiError represents a Cloudflare API error
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// customHostname represents a custom hostname API result. Validation records
// appear both nested under ssl and as top-level ownership challenges; they
// are flattened into one record list before deriving the descriptor.
type customHostname struct {
	ID       string `json:"id"`
	Hostname string `json:"hostname"`
	Status   string `json:"status"`
	SSL      struct {
		Status            string             `json:"status"`
		ValidationRecords []validationRecord `json:"validation_records"`
	} `json:"ssl"`
	OwnershipVerification struct {
		Type  string `json:"type"`
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"ownership_verification"`
	OwnershipVerificationHTTP struct {
		HTTPURL  string `json:"http_url"`
		HTTPBody string `json:"http_body"`
	} `json:"ownership_verification_http"`
}

// validationRecord is one entry of ssl.validation_records
type validationRecord struct {
	CnameName   string `json:"cname_name"`
	CnameTarget string `json:"cname_target"`
	TxtName     string `json:"txt_name"`
	TxtValue    string `json:"txt_value"`
	HTTPURL     string `json:"http_url"`
	HTTPBody    string `json:"http_body"`
}

// CreateHostname registers a hostname with domain-validated TLS
func (c *Client) CreateHostname(ctx context.Context, hostname string) (*edge.Hostname, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"hostname": hostname,
		"ssl": map[string]interface{}{
			"method": "http",
			"type":   "dv",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/zones/%s/custom_hostnames", c.apiBase, c.zoneID)
	result, err := c.do(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	return normalize(result)
}

// FetchStatus re-reads the current provider state for a hostname id
func (c *Client) FetchStatus(ctx context.Context, providerID string) (*edge.Hostname, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/zones/%s/custom_hostnames/%s", c.apiBase, c.zoneID, providerID)
	result, err := c.do(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	return normalize(result)
}

// DeleteHostname deregisters a hostname id at the provider. A 404 is treated
// as success: the hostname is already gone.
func (c *Client) DeleteHostname(ctx context.Context, providerID string) error {
	if err := c.checkConfigured(); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/zones/%s/custom_hostnames/%s", c.apiBase, c.zoneID, providerID)
	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var cfResp apiResponse
	if err := json.Unmarshal(respBody, &cfResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if !cfResp.Success {
		return fmt.Errorf("cloudflare API error: %s", firstError(cfResp.Errors))
	}

	return nil
}

func (c *Client) checkConfigured() error {
	if c.apiToken == "" || c.zoneID == "" {
		return edge.ErrNotConfigured
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
}

// do performs a request and decodes the envelope, returning the raw result
func (c *Client) do(ctx context.Context, method, url string, body io.Reader) (*customHostname, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, edge.ErrHostnameNotFound
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var cfResp apiResponse
	if err := json.Unmarshal(respBody, &cfResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !cfResp.Success {
		return nil, fmt.Errorf("cloudflare API error: %s", firstError(cfResp.Errors))
	}

	var ch customHostname
	if err := json.Unmarshal(cfResp.Result, &ch); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}

	return &ch, nil
}

// normalize flattens provider validation records and derives the
// verification descriptor. Used identically for create and status-fetch.
func normalize(ch *customHostname) (*edge.Hostname, error) {
	if ch.ID == "" {
		return nil, fmt.Errorf("cloudflare result missing hostname id")
	}

	var records []edge.ValidationRecord
	for _, r := range ch.SSL.ValidationRecords {
		records = append(records, edge.ValidationRecord{
			CnameName:   r.CnameName,
			CnameTarget: r.CnameTarget,
			TxtName:     r.TxtName,
			TxtValue:    r.TxtValue,
			HTTPURL:     r.HTTPURL,
			HTTPBody:    r.HTTPBody,
		})
	}
	if ch.OwnershipVerification.Type == "txt" && ch.OwnershipVerification.Value != "" {
		records = append(records, edge.ValidationRecord{
			TxtName:  ch.OwnershipVerification.Name,
			TxtValue: ch.OwnershipVerification.Value,
		})
	}
	if ch.OwnershipVerificationHTTP.HTTPURL != "" {
		records = append(records, edge.ValidationRecord{
			HTTPURL:  ch.OwnershipVerificationHTTP.HTTPURL,
			HTTPBody: ch.OwnershipVerificationHTTP.HTTPBody,
		})
	}

	method, value := edge.Describe(records)

	status := ch.Status
	if status == "" {
		status = "pending"
	}

	return &edge.Hostname{
		ID:                ch.ID,
		Hostname:          ch.Hostname,
		Status:            status,
		Method:            method,
		Value:             value,
		ValidationRecords: records,
	}, nil
}

// firstError returns the first provider-reported error message
func firstError(errs []apiError) string {
	if len(errs) == 0 {
		return "unknown error"
	}
	return fmt.Sprintf("[%d] %s", errs[0].Code, errs[0].Message)
}
