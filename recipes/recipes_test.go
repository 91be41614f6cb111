package recipes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tastytreasures/ledger"
	"tastytreasures/models"
	"tastytreasures/recipes"
	"tastytreasures/storage"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	users   *storage.MemoryUserStore
	recipes *storage.MemoryRecipeStore
	router  *httprouter.Router
}

func setup(t *testing.T) *env {
	t.Helper()
	userStore := storage.NewMemoryUserStore()
	recipeStore := storage.NewMemoryRecipeStore()
	h := recipes.NewHandler(recipeStore, userStore, ledger.New(userStore, recipeStore, nil), nil, t.TempDir())

	router := httprouter.New()
	router.POST("/addRecipe", h.AddRecipe)
	router.GET("/recipes", h.GetRecipes)
	router.GET("/recipe/:id", h.GetRecipeDetail)
	router.PATCH("/recipe/react/:id", h.ToggleReaction)
	return &env{users: userStore, recipes: recipeStore, router: router}
}

func (e *env) addUser(t *testing.T, email string, coins int) {
	t.Helper()
	require.NoError(t, e.users.Insert(context.Background(), &models.User{Email: email, Coins: coins}))
}

func multipartRequest(t *testing.T, fields map[string]string, fileNames ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, name := range fileNames {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/addRecipe", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestAddRecipeSplitsFieldsAndRewardsCreator(t *testing.T) {
	e := setup(t)
	e.addUser(t, "chef@example.com", 50)

	req := multipartRequest(t, map[string]string{
		"title":        "Pavlova",
		"description":  "Meringue dessert",
		"category":     "Dessert",
		"country":      "Australia",
		"creatorEmail": "chef@example.com",
		"ingredients":  "Flour, Sugar, Egg",
		"steps":        "Mix\nBake",
	}, "pavlova.jpg")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	id, _ := resp["insertedId"].(string)
	require.NotEmpty(t, id)

	recipe, err := e.recipes.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Flour", "Sugar", "Egg"}, recipe.Ingredients)
	assert.Equal(t, []string{"Mix", "Bake"}, recipe.Steps)
	assert.Equal(t, 0, recipe.WatchCount)
	assert.Empty(t, recipe.PurchasedBy)
	assert.Empty(t, recipe.Reactions)
	require.Len(t, recipe.ImageURLs, 1)
	assert.True(t, strings.HasPrefix(recipe.ImageURLs[0], "/uploads/"))
	assert.True(t, strings.HasSuffix(recipe.ImageURLs[0], "-pavlova.jpg"))

	chef, err := e.users.GetByEmail(context.Background(), "chef@example.com")
	require.NoError(t, err)
	assert.Equal(t, 100, chef.Coins)
}

func TestAddRecipeRequiresFiles(t *testing.T) {
	e := setup(t)
	e.addUser(t, "chef@example.com", 50)

	req := multipartRequest(t, map[string]string{"creatorEmail": "chef@example.com"})
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No files uploaded")
}

func TestAddRecipeUnknownCreator(t *testing.T) {
	e := setup(t)

	req := multipartRequest(t, map[string]string{"creatorEmail": "ghost@example.com"}, "pic.jpg")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeDetailResponses(t *testing.T) {
	e := setup(t)
	e.addUser(t, "creator@example.com", 50)
	e.addUser(t, "viewer@example.com", 50)
	e.addUser(t, "broke@example.com", 3)
	id, err := e.recipes.Insert(context.Background(), &models.Recipe{
		Title:        "Ramen",
		CreatorEmail: "creator@example.com",
		PurchasedBy:  []string{},
		Reactions:    []string{},
	})
	require.NoError(t, err)

	get := func(path string) (*httptest.ResponseRecorder, map[string]interface{}) {
		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		var body map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &body)
		return w, body
	}

	w, body := get("/recipe/65b000000000000000000000?userEmail=viewer@example.com")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Recipe not found", body["message"])

	w, body = get("/recipe/" + id + "?userEmail=ghost@example.com")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User not logged in", body["message"])

	// a broke viewer is redirected to the purchase flow with HTTP 200
	w, body = get("/recipe/" + id + "?userEmail=broke@example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "purchaseCoins", body["redirect"])
	assert.Equal(t, "Not enough coins", body["message"])
	assert.NotContains(t, body, "recipe")

	w, body = get("/recipe/" + id + "?userEmail=viewer@example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "recipeDetails", body["redirect"])
	recipe, ok := body["recipe"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Ramen", recipe["title"])
	assert.Equal(t, float64(1), recipe["watchCount"])
}

func TestToggleReactionTwiceRestoresState(t *testing.T) {
	e := setup(t)
	id, err := e.recipes.Insert(context.Background(), &models.Recipe{
		Title:     "Tacos",
		Reactions: []string{"other@example.com"},
	})
	require.NoError(t, err)

	react := func() (*httptest.ResponseRecorder, models.Recipe) {
		body := bytes.NewBufferString(`{"email":"fan@example.com"}`)
		req := httptest.NewRequest(http.MethodPatch, "/recipe/react/"+id, body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, req)
		var recipe models.Recipe
		json.Unmarshal(w.Body.Bytes(), &recipe)
		return w, recipe
	}

	w, recipe := react()
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"other@example.com", "fan@example.com"}, recipe.Reactions)

	w, recipe = react()
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"other@example.com"}, recipe.Reactions)
}

func TestToggleReactionUnknownRecipe(t *testing.T) {
	e := setup(t)
	req := httptest.NewRequest(http.MethodPatch, "/recipe/react/65b000000000000000000000",
		bytes.NewBufferString(`{"email":"fan@example.com"}`))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRecipesPagination(t *testing.T) {
	e := setup(t)
	for i := 1; i <= 5; i++ {
		_, err := e.recipes.Insert(context.Background(), &models.Recipe{
			Title:    fmt.Sprintf("Dessert %d", i),
			Category: "Dessert",
		})
		require.NoError(t, err)
	}
	_, err := e.recipes.Insert(context.Background(), &models.Recipe{Title: "Biryani", Category: "Main"})
	require.NoError(t, err)

	list := func(path string) []models.Recipe {
		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)
		var got []models.Recipe
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		return got
	}

	page := list("/recipes?category=Dessert&page=2&pageSize=3")
	require.Len(t, page, 2)
	assert.Equal(t, "Dessert 4", page[0].Title)
	assert.Equal(t, "Dessert 5", page[1].Title)

	all := list("/recipes")
	assert.Len(t, all, 6)

	found := list("/recipes?search=dessert%202")
	require.Len(t, found, 1)
	assert.Equal(t, "Dessert 2", found[0].Title)
}
