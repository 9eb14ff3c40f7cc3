package model

// Recipe is a user-authored recipe.
type Recipe struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Instructions string `json:"instructions"`
	UserID       int64  `json:"userId"`
}
