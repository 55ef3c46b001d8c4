package assistant

import "strings"

// Rule pairs a predicate with a canned answer. Rules are evaluated in
// order and the first match wins, so broader topics go last. Tutorial
// turns are answered locally and never contact the resolver.
type Rule struct {
	Topic    string
	Match    func(text string) bool
	Response string
}

// ContainsAny builds a case-insensitive substring predicate.
func ContainsAny(phrases ...string) func(string) bool {
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	return func(text string) bool {
		t := strings.ToLower(text)
		for _, p := range lowered {
			if strings.Contains(t, p) {
				return true
			}
		}
		return false
	}
}

// DefaultRules is the static knowledge table behind the assistant's
// tutorial answers.
func DefaultRules() []Rule {
	return []Rule{
		{
			Topic: "hs-code",
			Match: ContainsAny("what is an hs code", "what is hs code", "what are hs codes", "explain hs code", "hs code meaning"),
			Response: "An HS code (Harmonized System code) is an international product " +
				"classification used to determine which tariff rates apply to your goods. " +
				"Describe your product to me and I can suggest candidate codes.",
		},
		{
			Topic: "shipping-mode",
			Match: ContainsAny("what is a shipping mode", "which shipping mode", "shipping modes", "air or sea"),
			Response: "The shipping mode (air or sea) determines the per-kilogram shipping " +
				"rate applied to your transaction. Sea freight is usually cheaper but slower; " +
				"air freight costs more per kilogram.",
		},
		{
			Topic: "vat",
			Match: ContainsAny("what is vat", "what is gst", "value-added tax", "value added tax", "goods and services tax"),
			Response: "VAT (value-added tax) or GST (goods and services tax) is charged by the " +
				"importing country, typically on the product value plus duties plus shipping. " +
				"The calculator includes it in the total cost breakdown.",
		},
		{
			Topic: "trade-agreement",
			Match: ContainsAny("trade agreement", "preferential rate", "most-favoured-nation", "most favored nation", "mfn rate"),
			Response: "A trade agreement between two countries can unlock a preferential " +
				"tariff rate instead of the standard most-favored-nation rate. The result " +
				"page shows which one applied to your calculation.",
		},
		{
			Topic: "ad-valorem",
			Match: ContainsAny("ad valorem"),
			Response: "An ad valorem rate is a tariff expressed as a percentage of the " +
				"declared product value, as opposed to a fixed amount per unit or weight.",
		},
	}
}

// matchTutorial returns the first matching rule's response.
func matchTutorial(rules []Rule, text string) (string, bool) {
	for _, r := range rules {
		if r.Match(text) {
			return r.Response, true
		}
	}
	return "", false
}
