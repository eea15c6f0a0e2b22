package core

// DefaultCategories is the fixed seed written the first time a user's category
// collection turns up empty. Ids are stable so existing transaction references
// survive a reseed.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Gaji", Icon: "briefcase", Color: "#10b981", Type: Income},
		{ID: "2", Name: "Freelance", Icon: "briefcase", Color: "#059669", Type: Income},
		{ID: "3", Name: "Bonus", Icon: "gift", Color: "#14b8a6", Type: Income},
		{ID: "4", Name: "Makanan", Icon: "utensils", Color: "#f97316", Type: Expense},
		{ID: "5", Name: "Transport", Icon: "car", Color: "#3b82f6", Type: Expense},
		{ID: "6", Name: "Hiburan", Icon: "film", Color: "#a855f7", Type: Expense},
		{ID: "7", Name: "Belanja", Icon: "shopping-cart", Color: "#ec4899", Type: Expense},
		{ID: "8", Name: "Utilities", Icon: "zap", Color: "#eab308", Type: Expense},
		{ID: "9", Name: "Kos", Icon: "home", Color: "#6366f1", Type: Expense},
		{ID: "10", Name: "Kesehatan", Icon: "heart", Color: "#ef4444", Type: Expense},
	}
}

// CategoryIndex builds the id lookup used by the dashboard breakdown.
func CategoryIndex(categories []Category) map[string]Category {
	idx := make(map[string]Category, len(categories))
	for _, c := range categories {
		idx[c.ID] = c
	}
	return idx
}
