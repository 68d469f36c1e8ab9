package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
)

// Client submits source code to a Judge0 CE instance (via RapidAPI) and
// waits for the run to finish. The coordinator never calls this directly;
// code execution is a collaborator on the REST side only.
type Client struct {
	httpClient *http.Client
	baseURL    string
	host       string
	apiKey     string
}

// RunOutput is what a single execution produced.
type RunOutput struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	host := ""
	if u, err := url.Parse(baseURL); err == nil {
		host = u.Host
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		host:       host,
		apiKey:     apiKey,
	}
}

// Run executes source code under the given Judge0 language id and returns
// stdout/stderr. The context bounds the full wait=true round trip.
func (c *Client) Run(ctx context.Context, sourceCode string, languageID int) (*RunOutput, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"source_code": sourceCode,
		"language_id": languageID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %v", err)
	}

	endpoint := c.baseURL + "/submissions?base64_encoded=false&wait=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("judge0 request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		detail := apiErr.Message
		if detail == "" {
			detail = apiErr.Error
		}
		log.Printf("[JUDGE0] API error (%d): %s", resp.StatusCode, detail)
		return nil, fmt.Errorf("judge0 returned %d: %s", resp.StatusCode, detail)
	}

	var out RunOutput
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode judge0 response: %v", err)
	}
	return &out, nil
}
