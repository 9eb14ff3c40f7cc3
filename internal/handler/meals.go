package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// MealFetcher is the part of mealdb.Client the proxy needs. Tests pass a
// stub instead of standing up an HTTP server.
type MealFetcher interface {
	Get(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error)
}

// mealRoute describes one proxied query: which local path, which upstream
// endpoint, how the upstream query is built from the request, and the fixed
// message returned when the upstream call fails.
type mealRoute struct {
	path     string
	endpoint string
	query    func(r *http.Request) url.Values
	message  string
}

// passParam forwards local query parameter from as upstream parameter to.
// An absent parameter is forwarded as empty.
func passParam(from, to string) func(*http.Request) url.Values {
	return func(r *http.Request) url.Values {
		return url.Values{to: {r.URL.Query().Get(from)}}
	}
}

func fixed(q url.Values) func(*http.Request) url.Values {
	return func(*http.Request) url.Values { return q }
}

var mealRoutes = []mealRoute{
	{"/", "search.php", fixed(url.Values{"s": {""}}),
		"An error occurred while searching meal by name."},
	{"/search", "search.php", passParam("name", "s"),
		"An error occurred while searching meal by name."},
	{"/list-by-first-letter", "search.php", passParam("letter", "f"),
		"An error occurred while listing all meals by first letter."},
	{"/lookup", "lookup.php", passParam("id", "i"),
		"An error occurred while looking up full meal details by id."},
	{"/random", "random.php", fixed(nil),
		"An error occurred while looking up a single random meal."},
	{"/categories", "categories.php", fixed(nil),
		"An error occurred while listing all meal categories."},
	// ?filter=c|a|i becomes list.php?c=list and so on.
	{"/list-all", "list.php", func(r *http.Request) url.Values {
		return url.Values{r.URL.Query().Get("filter"): {"list"}}
	}, "An error occurred while listing all Categories, Area, Ingredients."},
	{"/filter-by-category", "filter.php", passParam("category", "c"),
		"An error occurred while filtering by Category."},
	{"/filter-by-area", "filter.php", passParam("area", "a"),
		"An error occurred while filtering by Area."},
	{"/filter-by-ingredient", "filter.php", passParam("ingredient", "i"),
		"An error occurred while filtering by main ingredient."},
}

// MealsHandler proxies read-only queries to TheMealDB.
//
// PASS-THROUGH:
// A successful upstream body is written back byte for byte. On any failure
// the client gets 500 and {"error": "<fixed message>"}; this flat shape is
// what existing clients of these routes expect, so it does not go through
// writeError.
type MealsHandler struct {
	fetcher MealFetcher
	logger  *slog.Logger
}

func NewMealsHandler(fetcher MealFetcher, logger *slog.Logger) *MealsHandler {
	return &MealsHandler{fetcher: fetcher, logger: logger}
}

// Routes returns a router with every proxy route mounted, for use under
// /meals.
func (h *MealsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	for _, route := range mealRoutes {
		r.Get(route.path, h.proxy(route))
	}
	return r
}

func (h *MealsHandler) proxy(route mealRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := h.fetcher.Get(r.Context(), route.endpoint, route.query(r))
		if err != nil {
			h.logger.Error("mealdb proxy failed",
				slog.String("route", route.path),
				slog.String("endpoint", route.endpoint),
				slog.String("error", errorChain(err)),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": route.message})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			h.logger.Warn("writing proxied body", slog.String("error", err.Error()))
		}
	}
}
