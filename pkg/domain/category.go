package domain

// Category is one of the fixed report categories
type Category string

// the fixed category set, in report (and classification precedence) order
const (
	CategoryCompetition Category = "Competition"
	CategoryRegulation  Category = "Regulation"
	CategoryDisruptive  Category = "Disruptive Trends and Technological Advancements"
	CategoryConsumer    Category = "Consumer Behaviour and Insights"
	CategoryMarket      Category = "Market Trends"
)

// Categories returns all categories in their fixed order
func Categories() []Category {
	return []Category{
		CategoryCompetition,
		CategoryRegulation,
		CategoryDisruptive,
		CategoryConsumer,
		CategoryMarket,
	}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}
