// llm.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/genai"
)

// LLMResult is the structured reply the model is instructed to produce.
type LLMResult struct {
	Summary string `json:"summary"`
	Caveats string `json:"caveats,omitempty"`
}

// callLLM sends the rendered equivalence classes to Gemini and parses the
// JSON reply. There is no simulation fallback: a missing key is an error,
// not a silently fabricated answer.
func callLLM(partitions string, apiKey, model, apiBase string) (LLMResult, error) {
	if apiKey == "" {
		return LLMResult{}, fmt.Errorf("missing api key: set GEMINI_API_KEY")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	sysPrompt, userPayload := buildExplainPrompts(partitions)
	raw, err := executeGeminiRaw(ctx, sysPrompt, userPayload, apiKey, model, apiBase)
	if err != nil {
		return LLMResult{}, err
	}
	return parseLLMJSON(raw)
}

// proxyTransport reroutes requests to an alternative API base, used to
// point the SDK at a mock endpoint in tests.
type proxyTransport struct {
	apiBase   string
	transport http.RoundTripper
}

func (t *proxyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target, err := url.Parse(t.apiBase)
	if err != nil {
		return nil, err
	}
	req.URL.Scheme = target.Scheme
	req.URL.Host = target.Host
	return t.transport.RoundTrip(req)
}

// executeGeminiRaw uses the official SDK so auth headers and endpoint
// versioning stay correct.
func executeGeminiRaw(ctx context.Context, sysPrompt, userMsg, apiKey, model, apiBase string) (string, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if apiBase != "" {
		cfg.HTTPClient = &http.Client{
			Transport: &proxyTransport{
				apiBase:   apiBase,
				transport: http.DefaultTransport,
			},
		}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: sysPrompt}},
		},
	}
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: userMsg},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty candidate from Gemini")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// -- Helpers & Validation --

func buildExplainPrompts(partitions string) (string, string) {
	systemPrompt := `You are a compiler optimization assistant.
You receive the Herbrand equivalence classes a dataflow analysis computed
for a small imperative program: at each control flow node, expressions in
the same [id]{...} class are provably equal along every path.

### OUTPUT PROTOCOL ###
1. Return strictly valid JSON.
2. Schema: {"summary": "string", "caveats": "string"}
3. "summary" explains in plain language which values the program keeps
   equal and which redundancies could be eliminated.
4. Do NOT include executable code.`

	userPayload := fmt.Sprintf("### ANALYSIS RESULT ###\n%s", partitions)
	return systemPrompt, userPayload
}

func parseLLMJSON(raw string) (LLMResult, error) {
	// Models occasionally wrap JSON in a code fence despite the MIME type.
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	var result LLMResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), &result); err != nil {
		return LLMResult{}, fmt.Errorf("malformed LLM reply: %w", err)
	}
	if result.Summary == "" {
		return LLMResult{}, fmt.Errorf("LLM reply missing summary")
	}
	return result, nil
}
