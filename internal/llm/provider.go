// Package llm hosts the model providers used by the plan-review
// pipeline. Providers are strictly downstream of the verification
// engine: they consume its findings and never influence them.
package llm

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
)

// Provider is one hosted or local model backend.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Review asks the model to review a plan given the engine's findings
	// and the supplied project context.
	Review(ctx context.Context, req ReviewRequest) (*ReviewResponse, error)

	// IsAvailable checks the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// Streamer is implemented by providers that can stream the review as it
// is generated.
type Streamer interface {
	// ReviewStream writes tokens to out as they arrive and returns the
	// complete response.
	ReviewStream(ctx context.Context, req ReviewRequest, out io.Writer) (*ReviewResponse, error)
}

// ReviewRequest is the input for one plan review.
type ReviewRequest struct {
	// Plan is the plan text under review.
	Plan string

	// Findings is the engine's findings excerpt. The reviewer must treat
	// it as ground truth.
	Findings string

	// Context is the token-budgeted project context.
	Context string

	// Prompt overrides the default prompt when non-empty.
	Prompt string

	// Model overrides the configured model.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int
}

// ReviewResponse is the model's review output.
type ReviewResponse struct {
	// Markdown is the review text.
	Markdown string

	// Model is the model that generated the response.
	Model string

	// TokensUsed tracks token consumption.
	TokensUsed int

	// Warnings lists strict-mode violations found in the output.
	Warnings []string
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "".
	Provider string

	// Model name (provider-specific).
	Model string

	// APIKey for hosted providers.
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama, API gateways).
	BaseURL string

	// Timeout for API requests, in seconds.
	Timeout int

	// MaxTokens for response generation.
	MaxTokens int

	// Proxy settings.
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults. The reviewer is disabled
// until a provider is configured.
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Timeout:   60,
		MaxTokens: 2000,
	}
}

// ConfigFromModel converts the persisted configuration section.
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:   c.Provider,
		Model:      c.Model,
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		MaxTokens:  c.MaxTokens,
		HTTPProxy:  c.HTTPProxy,
		HTTPSProxy: c.HTTPSProxy,
		NoProxy:    c.NoProxy,
	}
}

const systemPrompt = "You are reviewing an implementation plan against verified project ground truth. " +
	"The findings you are given were produced by static verification and are authoritative. " +
	"Only reference files, tables, types and routes that appear in the supplied context or findings. " +
	"Never invent project entities."

// BuildPrompt constructs the default review prompt. The findings block
// is the engine's output; the reviewer's job is to explain and
// prioritize, not to re-verify.
func BuildPrompt(req ReviewRequest) string {
	var b strings.Builder
	b.WriteString("Review the following implementation plan.\n\n")
	if req.Findings != "" {
		b.WriteString("Verified findings (authoritative, do not contradict):\n")
		b.WriteString(req.Findings)
		b.WriteString("\n")
	} else {
		b.WriteString("Static verification found no hallucinated references.\n\n")
	}
	if req.Context != "" {
		b.WriteString("Project context:\n")
		b.WriteString(req.Context)
		b.WriteString("\n")
	}
	b.WriteString("Plan:\n")
	b.WriteString(req.Plan)
	b.WriteString("\n\nSummarize the findings, explain their impact, and flag any plan step ")
	b.WriteString("that depends on a hallucinated reference. 3-6 short paragraphs.")
	return b.String()
}

var pathTokenRe = regexp.MustCompile(`[\w.-]+(?:/[\w.\[\]-]+)+\.[A-Za-z][A-Za-z0-9]*`)

// checkReferences flags file paths cited in the review that appear
// nowhere in the supplied material. Leaks are reported as warnings: the
// review is advisory, so a violation degrades rather than fails.
func checkReferences(req ReviewRequest, review string) []string {
	supplied := req.Plan + "\n" + req.Findings + "\n" + req.Context
	var warnings []string
	seen := make(map[string]bool)
	for _, p := range pathTokenRe.FindAllString(review, -1) {
		if seen[p] || strings.Contains(supplied, p) {
			continue
		}
		seen[p] = true
		warnings = append(warnings, fmt.Sprintf("review cites %s, which is not in the supplied context", p))
	}
	return warnings
}
