package recipes

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"tastytreasures/events"
	"tastytreasures/ledger"
	"tastytreasures/models"
	"tastytreasures/storage"
	"tastytreasures/utils"

	"github.com/julienschmidt/httprouter"
)

const maxUploadFiles = 10

type Handler struct {
	Recipes   storage.RecipeStore
	Users     storage.UserStore
	Ledger    *ledger.Ledger
	Hub       *events.Hub
	UploadDir string
}

func NewHandler(recipes storage.RecipeStore, users storage.UserStore, l *ledger.Ledger, hub *events.Hub, uploadDir string) *Handler {
	return &Handler{Recipes: recipes, Users: users, Ledger: l, Hub: hub, UploadDir: uploadDir}
}

// AddRecipe accepts a multipart submission with at least one image, credits
// the creator's balance with the submission reward, and persists the recipe.
func (h *Handler) AddRecipe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "No files uploaded")
		return
	}
	if len(files) > maxUploadFiles {
		utils.RespondWithError(w, http.StatusBadRequest, "Too many files uploaded")
		return
	}

	creatorEmail := r.FormValue("creatorEmail")
	if _, err := h.Users.GetByEmail(r.Context(), creatorEmail); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Creator not found")
			return
		}
		log.Printf("creator lookup failed for %s: %v", creatorEmail, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error uploading files")
		return
	}

	// Reward is credited before the insert; recipe insert failure does not
	// roll it back (single-document updates only, no transactions).
	if _, err := h.Users.AdjustCoins(r.Context(), creatorEmail, ledger.SubmitReward); err != nil {
		log.Printf("submit reward failed for %s: %v", creatorEmail, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error uploading files")
		return
	}

	var imageURLs []string
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Error reading file")
			return
		}
		name, err := utils.SaveFile(file, header, h.UploadDir)
		file.Close()
		if err != nil {
			log.Printf("file save failed: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Error saving file")
			return
		}
		utils.MakeThumbnail(h.UploadDir, name)
		imageURLs = append(imageURLs, "/uploads/"+name)
	}

	recipe := models.Recipe{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Category:     r.FormValue("category"),
		Country:      r.FormValue("country"),
		VideoURL:     r.FormValue("videoURL"),
		Ingredients:  splitCSV(r.FormValue("ingredients")),
		Steps:        splitLines(r.FormValue("steps")),
		ImageURLs:    imageURLs,
		CreatorEmail: creatorEmail,
		WatchCount:   0,
		PurchasedBy:  []string{},
		Reactions:    []string{},
	}

	id, err := h.Recipes.Insert(r.Context(), &recipe)
	if err != nil {
		log.Printf("recipe insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error uploading files")
		return
	}

	h.Hub.Publish(events.Event{Type: events.TypeRecipeCreated, RecipeID: id, Email: creatorEmail})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"acknowledged": true,
		"insertedId":   id,
	})
}

// GetRecipeDetail runs the unlock workflow for one viewer and recipe.
func (h *Handler) GetRecipeDetail(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	outcome, err := h.Ledger.View(r.Context(), ps.ByName("id"), r.URL.Query().Get("userEmail"))
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrRecipeNotFound):
			utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"message": "Recipe not found"})
		case errors.Is(err, ledger.ErrUnknownViewer):
			utils.RespondWithJSON(w, http.StatusUnauthorized, utils.M{"message": "User not logged in"})
		default:
			log.Printf("recipe view failed: %v", err)
			utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"message": "Failed to fetch recipe"})
		}
		return
	}

	if outcome.Recipe != nil {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"redirect": outcome.Redirect,
			"recipe":   outcome.Recipe,
		})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"redirect": outcome.Redirect,
		"message":  outcome.Message,
	})
}

type reactRequest struct {
	Email string `json:"email"`
}

// ToggleReaction flips the requester's like marker on a recipe and returns
// the updated record.
func (h *Handler) ToggleReaction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req reactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": "Invalid request body"})
		return
	}

	id := ps.ByName("id")
	recipe, err := h.Recipes.ToggleReaction(r.Context(), id, req.Email)
	if errors.Is(err, storage.ErrNotFound) {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"message": "Recipe not found"})
		return
	}
	if err != nil {
		log.Printf("reaction toggle failed for %s: %v", id, err)
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"message": "Failed to update reaction"})
		return
	}

	h.Hub.Publish(events.Event{Type: events.TypeRecipeReacted, RecipeID: id, Email: req.Email})
	utils.RespondWithJSON(w, http.StatusOK, recipe)
}

// GetRecipes lists recipes filtered by category, country and title search,
// paginated when a page is requested.
func (h *Handler) GetRecipes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	filter := storage.ListFilter{
		Category: q.Get("category"),
		Country:  q.Get("country"),
		Search:   q.Get("search"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(q.Get("pageSize")); err == nil && size > 0 {
		filter.PageSize = size
	}

	recipes, err := h.Recipes.List(r.Context(), filter)
	if err != nil {
		log.Printf("recipe listing failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch recipes")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, recipes)
}

func splitCSV(s string) []string {
	return splitTrimmed(s, ",")
}

func splitLines(s string) []string {
	return splitTrimmed(s, "\n")
}

// splitTrimmed trims each entry but keeps interior empties, so a blank line
// between steps survives as an empty step. Empty input yields an empty
// sequence, never null, to match the other sequence fields on the wire.
func splitTrimmed(s, sep string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
