package analyzer

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

var (
	nameSplit      = regexp.MustCompile(`[.:]|\s+-\s+`)
	leadingArticle = regexp.MustCompile(`(?i)^(la |el |las |los |l'|le |les |the |a |an )`)
	leadingNoise   = regexp.MustCompile(`^(\d+[.)]\s*|[^\p{L}\p{N}])+`)
	lineLabel      = regexp.MustCompile(`(?i)^(company name|brief company description|description|activity)\s*:?\s*`)
)

// CleanCompanyName keeps the part of name before the first period, colon or
// spaced dash and drops a leading article.
func CleanCompanyName(name string) string {
	name = strings.TrimSpace(name)
	name = nameSplit.Split(name, 2)[0]
	name = leadingArticle.ReplaceAllString(strings.TrimSpace(name), "")
	return strings.TrimSpace(name)
}

// ParseExtraction reads the model answer as {companyName, activity}. Answers
// that are not JSON fall back to a line-based reading: the first meaningful
// line is the name, the rest is the activity.
func ParseExtraction(text string) (companyName, activity string) {
	var out struct {
		CompanyName string `json:"companyName"`
		Activity    string `json:"activity"`
	}
	if raw := jsonObject(text); raw != nil && json.Unmarshal(raw, &out) == nil && out.CompanyName != "" {
		return CleanCompanyName(out.CompanyName), strings.TrimSpace(out.Activity)
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.ReplaceAll(line, "**", "")
		line = leadingNoise.ReplaceAllString(strings.TrimSpace(line), "")
		line = strings.TrimSpace(lineLabel.ReplaceAllString(line, ""))
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", ""
	}
	activity = strings.TrimSpace(strings.TrimPrefix(strings.Join(lines[1:], " "), ":"))
	return CleanCompanyName(lines[0]), activity
}

func jsonObject(text string) []byte {
	b := []byte(strings.TrimSpace(text))
	start := bytes.IndexByte(b, '{')
	end := bytes.LastIndexByte(b, '}')
	if start < 0 || end <= start {
		return nil
	}
	return b[start : end+1]
}
