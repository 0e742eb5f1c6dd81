package domain

// Category identifies one of the fixed activity categories. The set is
// closed: records referencing anything else are rejected at the API
// boundary, and analytics always report over the full registry.
type Category string

const (
	CategorySleep          Category = "Sleep"
	CategoryExercise       Category = "Physical Activity/Exercise"
	CategoryNutrition      Category = "Nutrition/Meals"
	CategoryWork           Category = "Work/Productivity"
	CategoryPersonalCare   Category = "Personal Care/Hygiene"
	CategorySocial         Category = "Social/Leisure"
	CategoryHousehold      Category = "Household Chores/Maintenance"
	CategoryMindfulness    Category = "Mindfulness/Mental Well-being"
	CategoryTransportation Category = "Transportation/Commute"
	CategoryLearning       Category = "Learning/Skill Development"
)

// CategoryMetadata carries display hints passed through to clients untouched.
type CategoryMetadata struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type categoryEntry struct {
	Name Category
	Meta CategoryMetadata
}

// categoryRegistry is the ordered universe of categories. Order is part of
// the contract: trend reports and summaries enumerate it as-is.
var categoryRegistry = []categoryEntry{
	{CategorySleep, CategoryMetadata{Icon: "🛌", Color: "#667eea"}},
	{CategoryExercise, CategoryMetadata{Icon: "🏃", Color: "#764ba2"}},
	{CategoryNutrition, CategoryMetadata{Icon: "🍎", Color: "#f093fb"}},
	{CategoryWork, CategoryMetadata{Icon: "💼", Color: "#f5576c"}},
	{CategoryPersonalCare, CategoryMetadata{Icon: "🧼", Color: "#4facfe"}},
	{CategorySocial, CategoryMetadata{Icon: "🎉", Color: "#00d4aa"}},
	{CategoryHousehold, CategoryMetadata{Icon: "🧹", Color: "#ff6b6b"}},
	{CategoryMindfulness, CategoryMetadata{Icon: "🧘", Color: "#a8e6cf"}},
	{CategoryTransportation, CategoryMetadata{Icon: "🚗", Color: "#ffd93d"}},
	{CategoryLearning, CategoryMetadata{Icon: "📚", Color: "#6c5ce7"}},
}

// Categories returns the registered categories in registry order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryRegistry))
	for _, entry := range categoryRegistry {
		out = append(out, entry.Name)
	}
	return out
}

// CategoryCount reports the size of the registry.
func CategoryCount() int {
	return len(categoryRegistry)
}

// MetadataFor returns display metadata for a category.
func MetadataFor(c Category) (CategoryMetadata, bool) {
	for _, entry := range categoryRegistry {
		if entry.Name == c {
			return entry.Meta, true
		}
	}
	return CategoryMetadata{}, false
}

// IsRegistered reports whether c is part of the closed category set.
func IsRegistered(c Category) bool {
	_, ok := MetadataFor(c)
	return ok
}
