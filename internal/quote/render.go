package quote

import (
	"bufio"
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
)

// RenderText writes doc as plain text.
func RenderText(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, doc.Title)
	fmt.Fprintln(bw, doc.Vendor.Name)
	if doc.Vendor.Email != "" {
		fmt.Fprintln(bw, doc.Vendor.Email)
	}
	if doc.CompanyName != "" {
		fmt.Fprintln(bw, doc.CompanyName)
	}
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, doc.Labels.SelectedVideos)
	for _, l := range doc.Lines {
		fmt.Fprintf(bw, "%d. %s\n", l.Number, l.Title)
		fmt.Fprintf(bw, "   %s\n", l.Description)
		fmt.Fprintf(bw, "   %ds - %s - %s\n", l.DurationSeconds, l.FocusLabel, FormatMoney(doc.Locale, l.UnitPrice))
	}
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, doc.Labels.Summary)
	for _, row := range summaryRows(doc) {
		fmt.Fprintln(bw, row)
	}
	return bw.Flush()
}

// RenderMarkdown writes doc as CommonMark.
func RenderMarkdown(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n\n", mdEscape(doc.Title))
	fmt.Fprintf(bw, "**%s**  \n", mdEscape(doc.Vendor.Name))
	if doc.Vendor.Email != "" {
		fmt.Fprintf(bw, "%s\n", mdEscape(doc.Vendor.Email))
	}
	if doc.CompanyName != "" {
		fmt.Fprintf(bw, "\n%s\n", mdEscape(doc.CompanyName))
	}
	fmt.Fprintf(bw, "\n## %s\n\n", mdEscape(doc.Labels.SelectedVideos))
	for _, l := range doc.Lines {
		fmt.Fprintf(bw, "%d. **%s**  \n", l.Number, mdEscape(l.Title))
		fmt.Fprintf(bw, "   %s  \n", mdEscape(l.Description))
		fmt.Fprintf(bw, "   %ds \\- %s \\- %s\n", l.DurationSeconds, mdEscape(l.FocusLabel), mdEscape(FormatMoney(doc.Locale, l.UnitPrice)))
	}
	fmt.Fprintf(bw, "\n## %s\n\n", mdEscape(doc.Labels.Summary))
	for _, row := range summaryRows(doc) {
		fmt.Fprintf(bw, "- %s\n", mdEscape(row))
	}
	return bw.Flush()
}

var htmlPage = template.Must(template.New("quote").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>body{font-family:sans-serif;max-width:720px;margin:2rem auto;line-height:1.4}@media print{body{margin:0}}</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// RenderHTML writes doc as a printable HTML page.
func RenderHTML(w io.Writer, doc Document) error {
	var md bytes.Buffer
	if err := RenderMarkdown(&md, doc); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := goldmark.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	return htmlPage.Execute(w, struct {
		Lang  string
		Title string
		Body  template.HTML
	}{Lang: doc.Locale, Title: doc.Title, Body: template.HTML(body.String())})
}

func summaryRows(doc Document) []string {
	s := doc.Summary
	rows := []string{fmt.Sprintf("%s: %s", doc.Labels.Subtotal, FormatMoney(doc.Locale, s.Subtotal))}
	if s.HasDiscount() {
		rows = append(rows, fmt.Sprintf("%s (%s%%): -%s", doc.Labels.Discount, FormatPercent(doc.Locale, s.DiscountPercent), FormatMoney(doc.Locale, s.DiscountAmount)))
	}
	return append(rows, fmt.Sprintf("%s: %s", doc.Labels.Total, FormatMoney(doc.Locale, s.Total)))
}

const mdSpecial = "\\`*_{}[]()#+-.!|<>~&"

func mdEscape(s string) string {
	if !strings.ContainsAny(s, mdSpecial) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(mdSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
