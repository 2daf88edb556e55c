package quote

import (
	"errors"
	"strings"

	"github.com/noah-isme/backend-videoquote/internal/idea"
	"github.com/noah-isme/backend-videoquote/internal/pricing"
)

// Export filenames offered to clients.
const (
	TextFilename = "epica-works-order.txt"
	HTMLFilename = "epica-works-order.html"
)

// ErrEmptySelection is returned when a quote is requested without ideas.
var ErrEmptySelection = errors.New("quote: no ideas selected")

// Vendor identifies the seller printed on every quote.
type Vendor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DefaultVendor is the seller used when a Builder has none configured.
var DefaultVendor = Vendor{Name: "Epica Works", Email: "hello@epicaworks.com"}

// Input is the material for one quote document.
type Input struct {
	Ideas       []idea.VideoIdea
	CompanyName string
	Locale      string
}

// Line is a numbered entry of the document.
type Line struct {
	Number          int            `json:"number"`
	IdeaID          string         `json:"ideaId"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	DurationSeconds int            `json:"duration"`
	Focus           idea.FocusType `json:"type"`
	FocusLabel      string         `json:"typeLabel"`
	UnitPrice       pricing.Money  `json:"unitPrice"`
	// NetPrice is this line's share of the discounted total. Shares sum to Summary.Total.
	NetPrice pricing.Money `json:"netPrice"`
}

// Document is a finalized quote ready for rendering.
type Document struct {
	Locale      string        `json:"locale"`
	Labels      Labels        `json:"-"`
	Title       string        `json:"title"`
	Vendor      Vendor        `json:"vendor"`
	CompanyName string        `json:"companyName"`
	Lines       []Line        `json:"lines"`
	Summary     pricing.Quote `json:"summary"`
}

// Builder assembles quote documents with a shared pricing engine.
type Builder struct {
	Engine pricing.Engine
	Vendor Vendor
}

// Build prices the ideas in their given order and lays them out as a document.
func (b Builder) Build(in Input) (Document, error) {
	if len(in.Ideas) == 0 {
		return Document{}, ErrEmptySelection
	}
	locale := NormalizeLocale(in.Locale)
	labels := LabelsFor(locale)
	vendor := b.Vendor
	if vendor.Name == "" {
		vendor = DefaultVendor
	}

	summary := pricing.ComputeQuote(b.Engine, in.Ideas)
	shares := pricing.Distribute(summary.Total, len(in.Ideas))

	lines := make([]Line, len(in.Ideas))
	for i, it := range in.Ideas {
		lines[i] = Line{
			Number:          i + 1,
			IdeaID:          it.ID,
			Title:           it.Title,
			Description:     it.Description,
			DurationSeconds: it.DurationSeconds,
			Focus:           it.FocusType,
			FocusLabel:      labels.FocusLabel(it.FocusType),
			UnitPrice:       summary.UnitPrice,
			NetPrice:        shares[i],
		}
	}

	return Document{
		Locale:      locale,
		Labels:      labels,
		Title:       labels.Title,
		Vendor:      vendor,
		CompanyName: strings.TrimSpace(in.CompanyName),
		Lines:       lines,
		Summary:     summary,
	}, nil
}
