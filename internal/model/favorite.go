package model

// Favorite is a recipe a user has starred, with a snapshot of its content
// taken at the time it was (last) favorited.
//
// RecipeID is whatever id the client favorited: usually a TheMealDB meal id,
// sometimes the id of one of the user's own recipes. It is not a foreign key.
type Favorite struct {
	RecipeID     int64  `json:"id"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Instructions string `json:"instructions"`
}
