package sqldb

import (
	"strings"

	"github.com/sakif/mealdb/internal/apperror"
)

// PARTIAL UPDATES:
// A PATCH body names only the fields it changes, in the API's camelCase. The
// statement must set only those columns, in snake_case, with every value
// bound as a parameter. Column names cannot be parameters, so they come from
// a fixed table per entity and never from the request itself.

// field maps one API field name to its column.
type field struct {
	name   string
	column string
}

var (
	userFields = []field{
		{"firstName", "first_name"},
		{"lastName", "last_name"},
		{"email", "email"},
		{"password", "password"},
	}
	recipeFields = []field{
		{"title", "title"},
		{"category", "category"},
		{"instructions", "instructions"},
	}
	mealPlanFields = []field{
		{"title", "title"},
		{"recipes", "recipes"},
	}
)

// setClause builds "col1 = ?, col2 = ?" from the fields present in values,
// in table order, and the matching argument list. Names in values that are
// not in the table are ignored. It fails with a validation error when
// nothing would be set.
func setClause(table []field, values map[string]any) (string, []any, error) {
	cols := make([]string, 0, len(table))
	args := make([]any, 0, len(table))
	for _, f := range table {
		v, ok := values[f.name]
		if !ok {
			continue
		}
		cols = append(cols, f.column+" = ?")
		args = append(args, v)
	}
	if len(cols) == 0 {
		return "", nil, apperror.ValidationFailed("", "No data")
	}
	return strings.Join(cols, ", "), args, nil
}
