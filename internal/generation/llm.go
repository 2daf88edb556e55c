package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/noah-isme/backend-videoquote/internal/idea"
	"github.com/noah-isme/backend-videoquote/internal/llm"
)

// Completer returns the text answer for a chat conversation.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// LLMGenerator asks a chat completion model for video concepts.
type LLMGenerator struct {
	Client Completer
}

// Generate implements Generator.
func (g LLMGenerator) Generate(ctx context.Context, req Request) ([]idea.Candidate, error) {
	lang, ok := LanguageName(req.Language)
	if !ok {
		lang, _ = LanguageName(DefaultLanguage)
	}
	text, err := g.Client.Complete(ctx, []llm.Message{
		llm.System(systemPrompt(lang)),
		llm.User(userPrompt(req, lang)),
	})
	if err != nil {
		return nil, err
	}
	return ParseCandidates(text)
}

func systemPrompt(lang string) string {
	return `You are a professional video marketing scriptwriter specializing in short-form video content. Create engaging video concepts that follow these rules:

1. Duration: every video is short-form (20-60 seconds). Split topics that need more time into several related videos. Give the recommended duration in seconds.
2. Content mix: balance direct company-focused videos (products, services, team) with indirect industry content (tips, trends, education). Each video has a clear value for viewers.
3. Format: one main point per video, visual suggestions that work in vertical format, fast pacing.

Answer only with a JSON array of objects with these fields:
- title: catchy, SEO-friendly title
- description: brief concept explanation (2-3 sentences)
- duration: recommended duration in seconds
- type: "direct" or "indirect"

All content MUST be in ` + lang + "."
}

func userPrompt(req Request, lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create exactly %d video concepts for this company.\n\n", req.Count)
	fmt.Fprintf(&b, "Company: %s\nActivity: %s\n\n", req.CompanyName, req.Activity)
	b.WriteString("Mix direct company content with indirect industry content, keep every video between 20 and 60 seconds ")
	fmt.Fprintf(&b, "and write every title and description in %s.\n\n", lang)
	b.WriteString(`Format each video as {"title": "...", "description": "...", "duration": 30, "type": "direct"}`)
	return b.String()
}

var wrapperKeys = []string{"videos", "ideas", "scripts", "concepts", "items", "data"}

// ParseCandidates extracts idea candidates from a model answer. The answer may be
// a JSON array, an object wrapping one array field, or either inside a code fence.
// Array elements that are not objects decode as empty candidates.
func ParseCandidates(text string) ([]idea.Candidate, error) {
	raw := bytes.TrimSpace([]byte(stripFence(text)))
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty answer", ErrMalformedResponse)
	}

	var items []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	case '{':
		arr, err := unwrapArray(raw)
		if err != nil {
			return nil, err
		}
		items = arr
	default:
		start, end := bytes.IndexByte(raw, '['), bytes.LastIndexByte(raw, ']')
		if start < 0 || end <= start {
			return nil, fmt.Errorf("%w: no JSON array found", ErrMalformedResponse)
		}
		if err := json.Unmarshal(raw[start:end+1], &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}

	out := make([]idea.Candidate, 0, len(items))
	for _, item := range items {
		var c idea.Candidate
		if err := json.Unmarshal(item, &c); err != nil {
			c = idea.Candidate{}
		}
		out = append(out, c)
	}
	return out, nil
}

func unwrapArray(raw []byte) ([]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for _, key := range wrapperKeys {
		if v, ok := obj[key]; ok && isArray(v) {
			var arr []json.RawMessage
			if json.Unmarshal(v, &arr) == nil {
				return arr, nil
			}
		}
	}
	var found []json.RawMessage
	matches := 0
	for _, v := range obj {
		var arr []json.RawMessage
		if isArray(v) && json.Unmarshal(v, &arr) == nil {
			found = arr
			matches++
		}
	}
	if matches != 1 {
		return nil, fmt.Errorf("%w: object does not wrap a single array", ErrMalformedResponse)
	}
	return found, nil
}

func isArray(v json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(v), []byte("["))
}

func stripFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	} else {
		return ""
	}
	if end := strings.LastIndex(t, "```"); end >= 0 {
		t = t[:end]
	}
	return t
}
