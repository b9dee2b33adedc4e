package router

import "strings"

var marketAliases = map[string]string{
	"uk":             "UK",
	"united kingdom": "UK",
	"gb":             "UK",
	"france":         "France",
	"fr":             "France",
	"sweden":         "Sweden",
	"se":             "Sweden",
	"norway":         "Norway",
	"no":             "Norway",
	"denmark":        "Denmark",
	"dk":             "Denmark",
	"nordics":        "Nordics",
}

// NormalizeMarket maps the many ways users spell a market onto its canonical
// name, title-casing anything unrecognized.
func NormalizeMarket(name string) string {
	if name == "" {
		return ""
	}

	if canonical, ok := marketAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return canonical
	}

	return capitalize(name)
}

// NormalizeParams canonicalizes the market name and applies the default year.
// It returns a new mapping; the routed input stays untouched.
func NormalizeParams(params map[string]any) map[string]any {
	result := make(map[string]any, len(params)+1)
	for key, value := range params {
		result[key] = value
	}

	if market, ok := result["market"].(string); ok {
		result["market"] = NormalizeMarket(market)
	}

	if _, ok := result["year"]; !ok {
		result["year"] = DefaultYear
	}

	return result
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
