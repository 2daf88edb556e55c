package quote

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-videoquote/internal/idea"
	"github.com/noah-isme/backend-videoquote/internal/pricing"
)

func ideas(n int) []idea.VideoIdea {
	out := make([]idea.VideoIdea, n)
	for i := range out {
		focus := idea.FocusDirect
		if i%2 == 1 {
			focus = idea.FocusIndirect
		}
		out[i] = idea.VideoIdea{
			ID:              string(rune('a' + i)),
			Title:           "Idea " + string(rune('A'+i)),
			Description:     "Short description",
			DurationSeconds: 30,
			FocusType:       focus,
		}
	}
	return out
}

func TestBuildMatchesEngine(t *testing.T) {
	b := Builder{Engine: pricing.Engine{UnitPrice: 9900, Policy: pricing.PolicyBundle}}
	doc, err := b.Build(Input{Ideas: ideas(3), CompanyName: " Acme ", Locale: "en-GB"})
	require.NoError(t, err)

	require.Equal(t, "en", doc.Locale)
	require.Equal(t, "Acme", doc.CompanyName)
	require.Equal(t, DefaultVendor, doc.Vendor)
	require.Equal(t, b.Engine.QuoteCount(3), doc.Summary)
	require.Len(t, doc.Lines, 3)
	require.Equal(t, "Indirect focus", doc.Lines[1].FocusLabel)

	var net pricing.Money
	for i, l := range doc.Lines {
		require.Equal(t, i+1, l.Number)
		net += l.NetPrice
	}
	require.Equal(t, doc.Summary.Total, net)
}

func TestBuildRejectsEmptySelection(t *testing.T) {
	_, err := Builder{}.Build(Input{CompanyName: "Acme"})
	require.ErrorIs(t, err, ErrEmptySelection)
}

func TestUnknownLocaleFallsBack(t *testing.T) {
	require.Equal(t, "es", NormalizeLocale("ja"))
	require.Equal(t, "es", NormalizeLocale(""))
	require.Equal(t, "pt", NormalizeLocale("pt_BR"))
	require.Equal(t, "Propuesta de videos", LabelsFor("xx").Title)
}

func TestFormatMoney(t *testing.T) {
	require.Equal(t, "€99.00", FormatMoney("en", 9900))
	require.Equal(t, "€1,234.56", FormatMoney("en", 123456))
	require.Equal(t, "1.234,56 €", FormatMoney("de", 123456))
	require.Equal(t, "-€5.00", FormatMoney("en", -500))
}

func TestRenderTextDiscountLine(t *testing.T) {
	b := Builder{Engine: pricing.Engine{UnitPrice: 9900, Policy: pricing.PolicyLegacy}}

	single, err := b.Build(Input{Ideas: ideas(1), CompanyName: "Acme", Locale: "en"})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, single))
	require.NotContains(t, buf.String(), "Discount")
	require.Contains(t, buf.String(), "Total: €99.00")

	ten, err := b.Build(Input{Ideas: ideas(10), CompanyName: "Acme", Locale: "en"})
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, RenderText(&buf, ten))
	out := buf.String()
	require.Contains(t, out, "Epica Works")
	require.Contains(t, out, "1. Idea A")
	require.Contains(t, out, "10. Idea J")
	require.Contains(t, out, "Subtotal: €990.00")
	require.Contains(t, out, "Discount (40.0%): -€396.00")
	require.Contains(t, out, "Total: €594.00")
}

func TestRenderHTMLEscapesContent(t *testing.T) {
	b := Builder{Engine: pricing.Engine{}}
	in := ideas(2)
	in[0].Title = "<script>alert(1)</script> *bold*"
	doc, err := b.Build(Input{Ideas: in, CompanyName: "Acme & Co", Locale: "en"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, doc))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	require.NotContains(t, out, "<script>")
	require.NotContains(t, out, "<em>bold</em>")
	require.Contains(t, out, "Acme &amp; Co")
	require.Contains(t, out, "<h2>Order summary</h2>")
}
