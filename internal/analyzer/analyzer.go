package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-videoquote/internal/generation"
	"github.com/noah-isme/backend-videoquote/internal/llm"
	"github.com/noah-isme/backend-videoquote/internal/obs"
)

var (
	// ErrFetchFailed is returned when no URL variant could be downloaded.
	ErrFetchFailed = errors.New("analyzer: could not access the website")
	// ErrAnalysisFailed is returned when the model answer yields no company name.
	ErrAnalysisFailed = errors.New("analyzer: failed to analyze website content")
)

// Completer returns the text answer for a chat conversation.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// Result is the company data extracted from a website.
type Result struct {
	URL         string `json:"url"`
	CompanyName string `json:"companyName"`
	Activity    string `json:"activity"`
	Language    string `json:"language"`
}

// Analyzer downloads a company website and asks the model to describe it.
type Analyzer struct {
	Fetcher   Fetcher
	Completer Completer
}

// Analyze fetches rawURL (trying the www variant too) and extracts the
// company name and activity written in language.
func (a Analyzer) Analyze(ctx context.Context, rawURL, language string) (Result, error) {
	start := time.Now()
	res, err := a.analyze(ctx, rawURL, language)
	result := "ok"
	switch {
	case errors.Is(err, ErrInvalidURL):
		result = "invalid_url"
	case errors.Is(err, ErrFetchFailed):
		result = "fetch_failed"
	case errors.Is(err, ErrNoContent):
		result = "no_content"
	case err != nil:
		result = "analysis_failed"
	}
	obs.ObserveWebsiteAnalysis(result)
	zerolog.Ctx(ctx).Info().
		Str("url", res.URL).
		Str("result", result).
		Dur("took", time.Since(start)).
		Msg("website_analyzed")
	return res, err
}

func (a Analyzer) analyze(ctx context.Context, rawURL, language string) (Result, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return Result{}, err
	}
	lang := strings.ToLower(strings.TrimSpace(language))
	langName, ok := generation.LanguageName(lang)
	if !ok {
		lang = generation.DefaultLanguage
		langName, _ = generation.LanguageName(lang)
	}

	var (
		content   string
		lastErr   error
		used      string
		noContent bool
	)
	for _, candidate := range URLVariants(normalized) {
		page, err := a.Fetcher.Fetch(ctx, candidate)
		if err != nil {
			lastErr = err
			zerolog.Ctx(ctx).Debug().Err(err).Str("url", candidate).Msg("website_fetch_failed")
			continue
		}
		text, err := ExtractText(bytes.NewReader(page))
		if err != nil {
			lastErr = err
			noContent = noContent || errors.Is(err, ErrNoContent)
			continue
		}
		content, used = text, candidate
		break
	}
	if content == "" {
		if noContent {
			return Result{URL: normalized}, ErrNoContent
		}
		return Result{URL: normalized}, fmt.Errorf("%w: %v", ErrFetchFailed, lastErr)
	}

	answer, err := a.Completer.Complete(ctx, []llm.Message{
		llm.System(extractionSystemPrompt(langName)),
		llm.User(extractionUserPrompt(langName, Truncate(content, MaxContentChars))),
	})
	if err != nil {
		return Result{URL: used}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	name, activity := ParseExtraction(answer)
	if name == "" {
		return Result{URL: used}, ErrAnalysisFailed
	}
	return Result{URL: used, CompanyName: name, Activity: activity, Language: lang}, nil
}

func extractionSystemPrompt(lang string) string {
	return `Extract company information from the provided content and write the description in ` + lang + `. Return a JSON object with:
{
  "companyName": "Just the company name, no additional text",
  "activity": "3-4 sentences describing what they do, in ` + lang + `"
}`
}

func extractionUserPrompt(lang, content string) string {
	return `Extract from this content and write the description in ` + lang + `:
1. Company name (just the name, no extra text)
2. Brief company description in ` + lang + ` (3-4 sentences)

Website content:
` + content
}
