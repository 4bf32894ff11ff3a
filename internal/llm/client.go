package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"call-insights-go/internal/logger"
	"call-insights-go/internal/types"
)

const defaultTimeout = 25 * time.Second

// Client calls an OpenAI-compatible chat gateway once per analysis. The
// pipeline itself never retries; callers that want retries supply a backoff
// policy at construction.
type Client struct {
	gatewayURL string
	apiKey     string
	model      string
	timeout    time.Duration
	newBackoff func() backoff.BackOff
	mock       bool
	httpClient *http.Client
	log        *logrus.Entry
}

type Option func(*Client)

// WithTimeout bounds each gateway call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetryPolicy attaches a caller-owned retry policy; the factory is
// invoked per call so each analysis gets a fresh backoff state.
func WithRetryPolicy(factory func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackoff = factory }
}

// NewFromEnv reads LLM_GATEWAY_URL, LLM_API_KEY, LLM_MODEL and USE_MOCK_LLM.
func NewFromEnv(opts ...Option) *Client {
	c := &Client{
		gatewayURL: os.Getenv("LLM_GATEWAY_URL"),
		apiKey:     os.Getenv("LLM_API_KEY"),
		model:      os.Getenv("LLM_MODEL"),
		timeout:    defaultTimeout,
		mock:       os.Getenv("USE_MOCK_LLM") == "true",
		log:        logger.New().WithComponent("llm-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{Timeout: c.timeout}
	return c
}

// AnalyzeTranscript performs the one external-service call of the pipeline.
// Transport and gateway errors are returned to the caller; a response that
// parses to no usable JSON is treated as an empty contribution instead.
func (c *Client) AnalyzeTranscript(ctx context.Context, transcript string, metadata *types.CallMetadata) (types.LLMInsights, error) {
	if c.mock {
		c.log.Info("mock LLM mode ON - returning deterministic insights")
		return mockInsights(), nil
	}

	if c.gatewayURL == "" || c.apiKey == "" {
		return types.LLMInsights{}, fmt.Errorf("llm gateway not configured")
	}

	prompt := BuildAnalysisPrompt(transcript, metadata)
	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.0,
	}
	data, _ := json.Marshal(reqBody)

	var insights types.LLMInsights
	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.gatewayURL, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		c.log.WithField("http_status", resp.StatusCode).Debug("llm raw response received")

		if resp.StatusCode >= 400 {
			err := fmt.Errorf("llm gateway status %d: %s", resp.StatusCode, truncate(string(body), 200))
			if resp.StatusCode < 500 {
				// Client errors won't heal on retry.
				return backoff.Permanent(err)
			}
			return err
		}

		insights = parseInsights(body, c.log)
		return nil
	}

	var err error
	if c.newBackoff != nil {
		err = backoff.Retry(op, backoff.WithContext(c.newBackoff(), ctx))
	} else {
		err = op()
	}
	if err != nil {
		return types.LLMInsights{}, fmt.Errorf("llm analysis failed: %w", err)
	}
	return insights, nil
}

// parseInsights tries choices[0].message.content first, then the first
// balanced JSON object anywhere in the body. Unparseable output degrades to
// an empty contribution.
func parseInsights(body []byte, log *logrus.Entry) types.LLMInsights {
	var insights types.LLMInsights

	if inner := extractContentFromChoices(body); inner != "" {
		if err := json.Unmarshal([]byte(inner), &insights); err == nil {
			return insights
		}
	}

	if fallback := extractJSON(string(body)); fallback != "" {
		if err := json.Unmarshal([]byte(fallback), &insights); err == nil {
			return insights
		}
	}

	log.Warn("no usable JSON in llm output, treating as empty contribution")
	return types.LLMInsights{}
}

// extractContentFromChoices reads openai-style choices[0].message.content.
func extractContentFromChoices(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}

	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	c0, _ := choices[0].(map[string]any)
	if c0 == nil {
		return ""
	}
	msg, _ := c0["message"].(map[string]any)
	if msg == nil {
		return ""
	}
	content, _ := msg["content"].(string)
	return extractJSON(content)
}

// extractJSON finds the first balanced JSON object in a string, stripping
// common markdown fences first.
func extractJSON(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, r := range []string{"```json", "```yaml", "```text", "```", "`json", "`"} {
		s = strings.ReplaceAll(s, r, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return ""
}

func mockInsights() types.LLMInsights {
	return types.LLMInsights{
		NextBestActions: []types.NextActionPayload{
			{Action: "Send pricing breakdown with ROI comparison", DueDate: "2 days", Owner: "rep"},
			{Action: "Schedule technical demo with the engineering lead", DueDate: "1 week", Owner: "rep"},
			{Action: "Share two case studies from the same industry", Owner: "rep"},
		},
		DealRationale:  "Engaged prospect with a concrete budget conversation and one unresolved pricing concern.",
		TalkRatioNotes: "Balanced conversation with the prospect speaking freely.",
		SentimentNotes: "Mostly positive with a dip around pricing.",
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
