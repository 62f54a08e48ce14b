package catalog

import "strings"

var avoidFoods = map[string][]string{
	"vegetarian":   {"meat", "poultry", "fish", "seafood"},
	"vegan":        {"meat", "poultry", "fish", "dairy", "eggs", "honey"},
	"gluten-free":  {"wheat", "bread", "pasta", "beer", "cereals"},
	"lactose-free": {"milk", "cheese", "yogurt", "cream", "butter"},
	"nut-free":     {"peanuts", "almonds", "cashews", "walnuts"},
	"keto":         {"sugar", "bread", "pasta", "rice", "potatoes", "fruit juice"},
}

// FoodsToAvoid lists foods that conflict with a restriction. A restriction
// the table does not know is echoed back as its own entry.
func FoodsToAvoid(restriction string) []string {
	if foods, ok := avoidFoods[strings.ToLower(strings.TrimSpace(restriction))]; ok {
		return append([]string(nil), foods...)
	}
	return []string{restriction}
}
