package extraction

// Category maps an expense category name to the keywords that select it.
type Category struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Taxonomy is an ordered list of categories. Order matters: classification
// picks the first category with a matching keyword.
type Taxonomy []Category

// DefaultTaxonomy returns the standard expense category table.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		{Name: "Travel", Keywords: []string{"taxi", "uber", "lyft", "flight", "train", "bus", "metro", "transport"}},
		{Name: "Meals", Keywords: []string{"restaurant", "cafe", "food", "dining", "lunch", "dinner", "breakfast"}},
		{Name: "Accommodation", Keywords: []string{"hotel", "motel", "bnb", "accommodation", "lodging"}},
		{Name: "Office Supplies", Keywords: []string{"office", "supplies", "stationery", "paper", "pen", "pencil"}},
		{Name: "Software", Keywords: []string{"software", "app", "subscription", "license", "saas"}},
		{Name: "Training", Keywords: []string{"training", "course", "education", "learning", "workshop"}},
		{Name: "Marketing", Keywords: []string{"marketing", "advertising", "promotion", "campaign"}},
		{Name: "Entertainment", Keywords: []string{"movie", "theater", "concert", "entertainment", "game"}},
	}
}

// DefaultVendorKeywords returns the business keywords used to spot a
// merchant name line.
func DefaultVendorKeywords() []string {
	return []string{"restaurant", "hotel", "store", "shop", "cafe", "bar", "market", "gas", "station"}
}
