package routes

import (
	"net/http"

	"tastytreasures/events"
	"tastytreasures/ratelim"
	"tastytreasures/recipes"
	"tastytreasures/users"

	"github.com/julienschmidt/httprouter"
)

func AddUserRoutes(router *httprouter.Router, h *users.Handler) {
	router.PUT("/registerUser", ratelim.RateLimit(h.RegisterUser))
	router.GET("/user", h.GetUser)
	router.POST("/purchaseCoins", ratelim.RateLimit(h.PurchaseCoins))
}

func AddRecipeRoutes(router *httprouter.Router, h *recipes.Handler) {
	router.POST("/addRecipe", h.AddRecipe)
	router.GET("/recipes", h.GetRecipes)
	router.GET("/recipes/trending", h.GetTrending)
	router.GET("/recipe/:id", h.GetRecipeDetail)
	router.PATCH("/recipe/react/:id", h.ToggleReaction)
}

func AddActivityRoutes(router *httprouter.Router, hub *events.Hub) {
	router.GET("/ws/activity", hub.HandleWS)
}

func AddStaticRoutes(router *httprouter.Router, uploadDir string) {
	router.ServeFiles("/uploads/*filepath", http.Dir(uploadDir))
}
