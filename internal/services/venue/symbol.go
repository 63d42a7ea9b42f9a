package venue

import (
	"strings"

	"OrderFlow/internal/domain/models"
)

var quoteSuffixes = []string{"USDT", "USD"} // longest first

// Normalizer maps canonical pairs ("BTC-USDT", "BTCUSD") to each venue's native spelling.
type Normalizer struct {
	formats map[string]string
}

// NewNormalizer builds the format table from venue configuration.
func NewNormalizer(venues []models.Venue) *Normalizer {
	formats := make(map[string]string, len(venues))
	for _, v := range venues {
		if v.SymbolFormat != "" {
			formats[v.ID] = v.SymbolFormat
		}
	}
	return &Normalizer{formats: formats}
}

// NewNormalizerFromTable builds a normalizer from a venue ID -> format table.
func NewNormalizerFromTable(formats map[string]string) *Normalizer {
	cp := make(map[string]string, len(formats))
	for k, v := range formats {
		cp[k] = v
	}
	return &Normalizer{formats: cp}
}

// Normalize returns the native symbol for venueID. When the venue has no format or the
// quote currency is not recognised, canonical is returned unchanged with ok=false.
func (n *Normalizer) Normalize(canonical, venueID string) (string, bool) {
	format, known := n.formats[venueID]
	if !known {
		return canonical, false
	}
	base, quote, ok := SplitPair(canonical)
	if !ok {
		return canonical, false
	}
	r := strings.NewReplacer("{base}", base, "{quote}", quote, "{BASE}", base, "{QUOTE}", quote)
	return r.Replace(format), true
}

// SplitPair strips separators and splits a canonical pair into base and quote.
func SplitPair(canonical string) (base, quote string, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(canonical))
	s = strings.NewReplacer("-", "", "/", "", "_", "", " ", "").Replace(s)
	for _, q := range quoteSuffixes {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return strings.TrimSuffix(s, q), q, true
		}
	}
	return "", "", false
}
