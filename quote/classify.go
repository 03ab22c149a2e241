package quote

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/Jurgenvdlecq/seatemail/model"
)

// marker is a phrase that decides the variant when present. Order is
// priority: lease language wins over trade-in language.
type marker struct {
	phrase  string
	variant model.Variant
}

var markers = []marker{
	{phrase: "private lease", variant: model.VariantPrivateLease},
	{phrase: "inruilauto", variant: model.VariantTradeIn},
}

var markerMatcher = newMarkerMatcher(markers)

func newMarkerMatcher(ms []marker) *ahocorasick.Matcher {
	phrases := make([]string, len(ms))
	for i, m := range ms {
		phrases[i] = m.phrase
	}
	return ahocorasick.NewStringMatcher(phrases)
}

// Classify picks the quote variant for normalized text. Text without any
// marker is an outright purchase.
func Classify(text string) model.Variant {
	hits := markerMatcher.MatchThreadSafe([]byte(strings.ToLower(text)))
	if len(hits) == 0 {
		return model.VariantPurchase
	}

	found := make(map[int]bool, len(hits))
	for _, idx := range hits {
		found[idx] = true
	}
	for i, m := range markers {
		if found[i] {
			return m.variant
		}
	}
	return model.VariantPurchase
}
