package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// OllamaClient talks to an Ollama-style /api/generate endpoint. The response
// body may be a single JSON object or a line-delimited stream of fragments;
// both shapes funnel into the same parser.
//
// Generation is slow, so the client carries a short connect timeout and a long
// read timeout. Exceeding either surfaces as a *GenerationError, never a hang.
type OllamaClient struct {
	baseURL string
	model   string
	httpc   *http.Client
	probe   *http.Client
}

const (
	ollamaConnectTimeout = 5 * time.Second
	ollamaReadTimeout    = 60 * time.Second
	ollamaProbeTimeout   = 2 * time.Second
)

func NewOllama(baseURL, model string) *OllamaClient {
	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: ollamaConnectTimeout}).DialContext,
	}
	return &OllamaClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		httpc:   &http.Client{Transport: transport, Timeout: ollamaReadTimeout},
		probe:   &http.Client{Transport: transport, Timeout: ollamaProbeTimeout},
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

func (c *OllamaClient) Generate(ctx context.Context, topicTitle, difficulty string, count int) ([]GeneratedQuestion, error) {
	body, err := json.Marshal(ollamaRequest{Model: c.model, Prompt: mcqPrompt(topicTitle, difficulty, count)})
	if err != nil {
		return nil, genErr("ollama", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, genErr("ollama", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, unavailableErr("ollama", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, genErr("ollama", fmt.Errorf("status %d", resp.StatusCode))
	}

	content, err := collectStream(resp)
	if err != nil {
		return nil, genErr("ollama", err)
	}
	slog.Debug("ollama response", "raw", content)

	questions, err := ParseQuestions(content)
	if err != nil {
		return nil, genErr("ollama", err)
	}
	return questions, nil
}

// collectStream concatenates the "response" field of every JSON line in the
// body. A non-streaming provider sends a single line, which degenerates to the
// same loop. An in-stream error object fails the whole call.
func collectStream(resp *http.Response) (string, error) {
	var content strings.Builder
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var chunk struct {
			Response string `json:"response"`
			Error    string `json:"error"`
		}
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return "", fmt.Errorf("bad stream line: %w", err)
		}
		if chunk.Error != "" {
			return "", fmt.Errorf("provider error: %s", chunk.Error)
		}
		content.WriteString(chunk.Response)
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return content.String(), nil
}

// IsAvailable hits the provider root. It only answers "is something listening
// there" -- a healthy provider can still return unparsable content.
func (c *OllamaClient) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := c.probe.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

var _ Generator = (*OllamaClient)(nil)
