// Package translate turns a Turkish product name into its German and
// Punjabi equivalents using the Gemini API.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const promptTemplate = `You are a professional translator. Translate the following Turkish food product name to German and Punjabi (Gurmukhi script).

Turkish product name: %q

Return ONLY a JSON object with this exact structure:
{
  "name_de": "German translation",
  "name_pa": "Punjabi translation in Gurmukhi script"
}

Do not include any explanations, just the JSON object.`

// Translation is the pair of translated names.
type Translation struct {
	NameDE string `json:"name_de"`
	NamePA string `json:"name_pa"`
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      "gemini-1.5-flash",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Translate requests German and Punjabi names for the given Turkish name.
func (c *Client) Translate(ctx context.Context, nameTR string) (*Translation, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("translate client not configured: missing API key")
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(promptTemplate, nameTR)}}}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal translate request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translate API returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decode translate response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("translate response has no candidates")
	}

	text := stripCodeFences(genResp.Candidates[0].Content.Parts[0].Text)

	var tr Translation
	if err := json.Unmarshal([]byte(text), &tr); err != nil {
		return nil, fmt.Errorf("parse translation JSON: %w", err)
	}
	if tr.NameDE == "" || tr.NamePA == "" {
		return nil, fmt.Errorf("translation incomplete: %+v", tr)
	}
	return &tr, nil
}

// stripCodeFences removes markdown code fences the model sometimes wraps
// around its JSON answer.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
