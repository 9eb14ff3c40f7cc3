package model

import "encoding/json"

// MealPlan groups recipes under a title.
//
// Recipes is stored and returned exactly as the client sent it. The server
// only checks that it is a JSON array; what the elements look like is up to
// the client.
type MealPlan struct {
	ID      int64           `json:"id"`
	Title   string          `json:"title"`
	Recipes json.RawMessage `json:"recipes"`
	UserID  int64           `json:"userId"`
}
