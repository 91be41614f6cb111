package recipes

import (
	"errors"
	"log"
	"net/http"

	"tastytreasures/models"
	"tastytreasures/rdx"
	"tastytreasures/storage"
	"tastytreasures/utils"

	"github.com/julienschmidt/httprouter"
)

const trendingLimit = 10

// GetTrending returns the most-unlocked recipes, hydrated from storage.
// Without Redis the list is empty rather than an error.
func (h *Handler) GetTrending(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ids, err := rdx.TopTrending(r.Context(), trendingLimit)
	if err != nil {
		log.Printf("trending lookup failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch trending recipes")
		return
	}

	recipes := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		recipe, err := h.Recipes.GetByID(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			log.Printf("trending hydrate failed for %s: %v", id, err)
			continue
		}
		recipes = append(recipes, *recipe)
	}
	utils.RespondWithJSON(w, http.StatusOK, recipes)
}
