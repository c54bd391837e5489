package triage

import "github.com/intelscope/intelscope/pkg/domain"

// Rules is the filter configuration for a triage run: keyword tables
// for relevance, classification and scoring. It is a value object —
// callers build a new Rules (see feedback.Apply) instead of mutating
// one in place, and persistence of an updated set is an explicit
// config operation.
type Rules struct {
	// relevance gate; exclusion takes absolute precedence
	Exclude []string
	Include []string

	// corporate PR gate
	PROutlets      []string
	PRPatterns     []string
	RegionKeywords []string

	// ordered category groups, first match wins
	Categories []CategoryRule

	// additive importance boosts
	ScoreTiers []ScoreTier
}

// CategoryRule binds one category to its keyword group
type CategoryRule struct {
	Category domain.Category
	Keywords []string
}

// ScoreTier adds Boost to the importance score when any keyword matches
type ScoreTier struct {
	Boost    int
	Keywords []string
}

// DefaultRules returns the built-in keyword tables tuned for the
// ANZ financial-services intelligence brief. Matching is substring
// based, so multi-word phrases are legal keywords.
func DefaultRules() Rules {
	return Rules{
		Exclude: []string{
			"sunscreen", "spf", "beauty", "cosmetics",
			"airline", "flight", "travel",
			"iron ore", "mining", "bhp", "lithium",
			"health target", "hospital", "physiotherapist", "nurse", "medical",
			"sport", "rugby", "cricket", "athlete",
			"fishing", "orange roughy", "blue cod",
			"conservation", "biodiversity", "wilding",
			"chatham islands", "ship",
			"homeschool", "education",
			"housing supply", "housing crisis",
			// promotional/event content
			"webinar", "promo", "promotion", "promotional",
			"register now", "join us", "rsvp", "event invitation",
			"congress", "conference", "forum", "summit", "symposium",
			"side events", "networking event", "panel discussion",
			"whitepaper", "white paper", "download now", "free report",
			"podcast", "bu podcast", "enroll", "enrollment", "last day",
			"deadline to register", "market overview", "industry overview",
			"free guide", "ebook", "e-book", "report download",
			// generic consumer tech
			"i tested", "i tried", "roku", "sora 2", "linux distro", "ai video",
			"streaming", "tv streaming", "zdnet", "consumer tech", "gadget",
			// geopolitical noise
			"robert fico", "slovakia", "vetoes eu sanctions", "russia sanctions",
			"slovak pm", "would-be assassin", "21-year sentence", "shooting slovak",
		},
		Include: []string{
			// regulators and compliance
			"asic", "apra", "accc", "oaic", "austrac", "rbnz", "fma", "mbie",
			"regulation", "regulatory", "compliance", "enforcement", "legislation",
			"financial stability", "monetary policy", "reserve bank", "central bank",
			// financial services and credit
			"credit", "lending", "loan", "debt", "mortgage", "borrower",
			"bank", "banking", "financial services", "credit union",
			// competitors
			"illion", "experian", "equifax", "fico", "gbg", "creditor watch", "centrix",
			"bureau van dijk", "dye & durham", "dye and durham",
			"credit bureau", "credit reporting agency",
			// credit and risk
			"credit reporting", "credit score", "credit check",
			"risk management", "risk assessment", "credit risk",
			"fraud prevention", "fraud detection", "anti-fraud",
			"identity verification", "identity check", "digital identity",
			"kyc", "know your customer",
			// data and analytics
			"data analytics", "data analysis", "big data",
			"data breach", "privacy", "data protection", "gdpr", "personal information",
			"data sharing", "data governance",
			// technology and emerging
			"open banking", "cdr", "consumer data right",
			"fintech", "regtech", "ai", "artificial intelligence", "machine learning",
			"blockchain", "biometric", "facial recognition",
			// AML/CTF
			"aml", "anti-money laundering", "ctf", "counter-terrorism financing",
			"sanctions", "financial crime", "money laundering",
			// market activity
			"acquisition", "merger", "m&a", "takeover", "ipo", "funding", "investment",
			"partnership", "collaboration", "venture capital",
			// consumer insights
			"consumer behavior", "consumer behaviour", "consumer trend",
			"affordability", "cost of living", "household finances",
			// technology platforms
			"api", "platform", "software", "saas", "cloud",
			"integration", "automation",
		},
		PROutlets: []string{"biometricupdate.com"},
		PRPatterns: []string{
			"launches", "unveils", "announces", "introduces", "releases",
			"adds", "upgrades", "secures funding", "wins", "reaches",
			"offers", "provides", "delivers", "expands", "partners with",
			"integrates", "deploys", "implements", "rolls out",
		},
		RegionKeywords: []string{"australia", "new zealand", "australian", "apra", "asic", "rbnz"},
		Categories: []CategoryRule{
			{domain.CategoryCompetition, []string{
				"illion", "experian", "equifax", "fico", "gbg", "creditor", "centrix",
				"competitor", "acquisition", "merger", "credit bureau", "credit reporting",
			}},
			{domain.CategoryRegulation, []string{
				"regulation", "regulatory", "compliance", "law", "legislation", "privacy",
				"apra", "asic", "oaic", "enforcement", "data protection", "aml", "austrac",
			}},
			{domain.CategoryDisruptive, []string{
				"ai", "artificial intelligence", "blockchain", "digital identity",
				"open banking", "fintech", "technology", "cdr", "consumer data right",
			}},
			{domain.CategoryConsumer, []string{
				"consumer", "customer", "household", "spending", "sentiment",
				"behavior", "behaviour", "borrower", "affordability",
			}},
			{domain.CategoryMarket, []string{
				"market", "industry", "trend", "growth", "forecast", "ipo", "funding", "investment",
			}},
		},
		ScoreTiers: []ScoreTier{
			{30, []string{"financial stability", "reserve bank", "rba", "central bank", "monetary policy"}},
			{20, []string{"asic", "apra", "enforcement", "fraud", "breach", "investigation"}},
			{15, []string{"acquisition", "merger", "ipo"}},
			{10, []string{"privacy", "data protection", "compliance"}},
		},
	}
}
