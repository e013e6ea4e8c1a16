package responder

import (
	"strings"
	"unicode"
)

// Category is the topic a user message was classified into.
type Category string

const (
	CategoryPricing  Category = "pricing"
	CategorySupport  Category = "support"
	CategoryDomain   Category = "domain"
	CategoryGreeting Category = "greeting"
	CategoryGeneral  Category = "general"
)

// Keyword lists in priority order. Keywords match whole words or phrases of
// the lowercased message; topic keywords also match their plural.
var (
	pricingKeywords  = []string{"pricing", "price", "cost", "plan", "how much"}
	supportKeywords  = []string{"support", "help", "contact"}
	domainKeywords   = []string{"domain"}
	greetingKeywords = []string{"hi", "hello", "hey"}
)

// fallbackResponses is the local reply corpus.
var fallbackResponses = map[Category][]string{
	CategoryPricing: {
		"Our shared hosting plans start at $2.99 per month, and every plan includes a free SSL certificate.",
		"We have three hosting tiers: Starter, Business and Pro. Would you like me to compare them for you?",
		"Pricing depends on the plan and billing period. Annual billing saves you about 20% compared to monthly.",
		"All plans come with a 30-day money-back guarantee, so you can try us risk-free.",
	},
	CategorySupport: {
		"Our support team is available 24/7 by chat, email and phone. What can I help you with?",
		"I'm happy to help. Could you describe the issue you're running into?",
		"You can also reach us at support@hostdesk.example or open a ticket from your customer dashboard.",
	},
	CategoryDomain: {
		"You can search for and register a domain right from our website. Most extensions are available instantly.",
		"Every annual hosting plan includes a free domain for the first year.",
		"If you already own a domain, you can transfer it to us or simply point its DNS to our servers.",
	},
	CategoryGreeting: {
		"Hello! How can I help you today?",
		"Hi there! What can I do for you?",
		"Hey! Thanks for reaching out. What brings you here today?",
	},
	CategoryGeneral: {
		"Thanks for your message! Could you tell me a bit more so I can help?",
		"Good question. Let me make sure I understand: could you give me a few more details?",
		"I'll be glad to look into that for you. Is this about hosting, domains or billing?",
	},
}

// Classify returns the highest-priority category whose keywords appear in
// message.
func Classify(message string) Category {
	text := normalize(message)

	switch {
	case containsTerm(text, pricingKeywords, true):
		return CategoryPricing
	case containsTerm(text, supportKeywords, true):
		return CategorySupport
	case containsTerm(text, domainKeywords, true):
		return CategoryDomain
	case containsTerm(text, greetingKeywords, false):
		return CategoryGreeting
	default:
		return CategoryGeneral
	}
}

// Responses returns the fallback pool for category.
func Responses(category Category) []string {
	pool, ok := fallbackResponses[category]
	if !ok {
		pool = fallbackResponses[CategoryGeneral]
	}
	return append([]string(nil), pool...)
}

// normalize lowercases message and reduces it to its words separated by
// single spaces, with a space at each end.
func normalize(message string) string {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return " " + strings.Join(words, " ") + " "
}

func containsTerm(text string, terms []string, plural bool) bool {
	for _, term := range terms {
		if strings.Contains(text, " "+term+" ") {
			return true
		}
		if plural && strings.Contains(text, " "+term+"s ") {
			return true
		}
	}
	return false
}
