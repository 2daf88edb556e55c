package quote

import (
	"strings"

	"github.com/noah-isme/backend-videoquote/internal/idea"
)

// DefaultLocale is used for unknown or empty locales.
const DefaultLocale = "es"

// Labels holds the fixed strings printed on a quote document.
type Labels struct {
	Title          string
	SelectedVideos string
	Summary        string
	Subtotal       string
	Discount       string
	Total          string
	PerVideo       string
	Direct         string
	Indirect       string
}

var labelTable = map[string]Labels{
	"es": {
		Title:          "Propuesta de videos",
		SelectedVideos: "Videos seleccionados",
		Summary:        "Resumen del pedido",
		Subtotal:       "Subtotal",
		Discount:       "Descuento",
		Total:          "Total",
		PerVideo:       "por video",
		Direct:         "Enfoque directo",
		Indirect:       "Enfoque indirecto",
	},
	"en": {
		Title:          "Video Proposals",
		SelectedVideos: "Selected videos",
		Summary:        "Order summary",
		Subtotal:       "Subtotal",
		Discount:       "Discount",
		Total:          "Total",
		PerVideo:       "per video",
		Direct:         "Direct focus",
		Indirect:       "Indirect focus",
	},
	"fr": {
		Title:          "Propositions de vidéos",
		SelectedVideos: "Vidéos sélectionnées",
		Summary:        "Récapitulatif de la commande",
		Subtotal:       "Sous-total",
		Discount:       "Remise",
		Total:          "Total",
		PerVideo:       "par vidéo",
		Direct:         "Focus direct",
		Indirect:       "Focus indirect",
	},
	"de": {
		Title:          "Video-Vorschläge",
		SelectedVideos: "Ausgewählte Videos",
		Summary:        "Bestellübersicht",
		Subtotal:       "Zwischensumme",
		Discount:       "Rabatt",
		Total:          "Gesamt",
		PerVideo:       "pro Video",
		Direct:         "Direkter Fokus",
		Indirect:       "Indirekter Fokus",
	},
	"it": {
		Title:          "Proposte video",
		SelectedVideos: "Video selezionati",
		Summary:        "Riepilogo dell'ordine",
		Subtotal:       "Subtotale",
		Discount:       "Sconto",
		Total:          "Totale",
		PerVideo:       "per video",
		Direct:         "Focus diretto",
		Indirect:       "Focus indiretto",
	},
	"pt": {
		Title:          "Propostas de vídeo",
		SelectedVideos: "Vídeos selecionados",
		Summary:        "Resumo do pedido",
		Subtotal:       "Subtotal",
		Discount:       "Desconto",
		Total:          "Total",
		PerVideo:       "por vídeo",
		Direct:         "Foco direto",
		Indirect:       "Foco indireto",
	},
}

// NormalizeLocale reduces tags such as "en-GB" to a supported language code.
func NormalizeLocale(locale string) string {
	code := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	if _, ok := labelTable[code]; ok {
		return code
	}
	return DefaultLocale
}

// LabelsFor returns the label set for locale.
func LabelsFor(locale string) Labels {
	return labelTable[NormalizeLocale(locale)]
}

// FocusLabel returns the printable label for a focus type.
func (l Labels) FocusLabel(f idea.FocusType) string {
	if f == idea.FocusIndirect {
		return l.Indirect
	}
	return l.Direct
}
