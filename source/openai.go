package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/gotlres"
)

// MachineSource produces bundles for any locale by machine-translating the
// base-locale bundle with OpenAI's chat API. Keys and nesting are kept, and
// a translation that drops or invents {placeholders} is replaced by the
// base text.
type MachineSource struct {
	client      *openai.Client
	model       string
	temperature float32
	base        BundleSource
	baseLocale  string
	context     string
	log         zerolog.Logger
}

// MachineConfig holds configuration for the machine translation source.
type MachineConfig struct {
	APIKey      string       // OpenAI API key
	Model       string       // Model to use (default: "gpt-4o-mini")
	Temperature float32      // Temperature for generation (default: 0.3)
	BaseURL     string       // Custom base URL (optional)
	Base        BundleSource // Source of base-locale bundles
	BaseLocale  string       // Locale of Base (default: "en")
	Context     string       // What the strings are for, e.g. "checkout flow"
	Logger      *zerolog.Logger
}

// NewMachineSource creates a new machine translation source.
func NewMachineSource(cfg MachineConfig) *MachineSource {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	baseLocale := cfg.BaseLocale
	if baseLocale == "" {
		baseLocale = "en"
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("sys", "machine-source").Logger()
	}

	return &MachineSource{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		base:        cfg.Base,
		baseLocale:  baseLocale,
		context:     cfg.Context,
		log:         log,
	}
}

// FetchBundle loads module in the base locale and translates its strings
// into locale. The base locale itself is passed through untranslated.
func (m *MachineSource) FetchBundle(ctx context.Context, locale, module string) (Bundle, error) {
	if m.base == nil {
		return nil, &gotlres.SourceError{Message: "machine source has no base source"}
	}

	bundle, err := m.base.FetchBundle(ctx, m.baseLocale, module)
	if err != nil {
		return nil, err
	}
	if gotlres.NormalizeLocale(locale) == gotlres.NormalizeLocale(m.baseLocale) {
		return bundle, nil
	}

	flat := gotlres.Flatten(bundle)
	keys := make([]string, 0, len(flat))
	for k, v := range flat {
		if _, ok := v.(string); ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	if len(keys) == 0 {
		return Bundle{}, nil
	}

	texts := make([]string, len(keys))
	for i, k := range keys {
		texts[i] = flat[k].(string)
	}

	translations, err := m.translate(ctx, locale, texts)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(keys))
	for i, k := range keys {
		t := translations[i]
		if !slices.Equal(gotlres.Placeholders(texts[i]), gotlres.Placeholders(t)) {
			m.log.Warn().Str("locale", locale).Str("module", module).Str("key", k).
				Msg("placeholders changed by translation; keeping base text")
			t = texts[i]
		}
		out[k] = t
	}
	return gotlres.Unflatten(out), nil
}

func (m *MachineSource) translate(ctx context.Context, locale string, texts []string) ([]string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: m.buildSystemPrompt(locale)},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(texts)},
		},
		Temperature: m.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &gotlres.SourceError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &gotlres.SourceError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return parseResponse(resp.Choices[0].Message.Content, len(texts))
}

func (m *MachineSource) buildSystemPrompt(locale string) string {
	targetName := gotlres.LanguageName(locale)
	sourceName := gotlres.LanguageName(m.baseLocale)

	contextText := "The strings are user interface messages of a web application."
	if m.context != "" {
		contextText = fmt.Sprintf("The strings are user interface messages for: %s.", m.context)
	}

	prompt := fmt.Sprintf(`# Role
You are an expert software localizer translating %s interface strings into %s.

# Context
%s

# Rules
- Keep the meaning and tone; prefer the wording a native %s product would use.
- Keep every placeholder in curly braces exactly as written, e.g. {name} or {count}.
- Do NOT translate HTML tags, URLs or email addresses.
- Keep leading and trailing whitespace.`, sourceName, targetName, contextText, targetName)

	if gotlres.IsRTL(locale) {
		prompt += "\n- The target script is right-to-left; do not add direction marks."
	}

	prompt += `

# Format
Return a valid JSON object with a single key "translations" containing an array of strings in the exact same order as the input.
Example: { "translations": ["translated string 1", "translated string 2"] }
- Do NOT wrap in Markdown code blocks.`

	return prompt
}

func buildUserMessage(texts []string) string {
	data, _ := json.Marshal(texts)
	return string(data)
}

func parseResponse(content string, expectedCount int) ([]string, error) {
	var objResult map[string]any
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if translations, ok := objResult["translations"]; ok {
			if arr, ok := translations.([]any); ok {
				return toStringSlice(arr, expectedCount)
			}
		}

		// Fallback: first array value
		for _, v := range objResult {
			if arr, ok := v.([]any); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
	}

	var arrResult []any
	if err := json.Unmarshal([]byte(content), &arrResult); err == nil {
		return toStringSlice(arrResult, expectedCount)
	}

	return nil, &gotlres.SourceError{
		Message:   "invalid response format from OpenAI",
		Retryable: false,
	}
}

func toStringSlice(arr []any, expectedCount int) ([]string, error) {
	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}

	if len(result) != expectedCount {
		return nil, &gotlres.CountMismatchError{
			Expected: expectedCount,
			Got:      len(result),
		}
	}

	return result, nil
}

func isRetryableError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "timeout", "connection refused", "temporary"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify MachineSource implements BundleSource
var _ BundleSource = (*MachineSource)(nil)
