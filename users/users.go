package users

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tastytreasures/ledger"
	"tastytreasures/models"
	"tastytreasures/storage"
	"tastytreasures/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	Store storage.UserStore
}

func NewHandler(store storage.UserStore) *Handler {
	return &Handler{Store: store}
}

// RegisterUser creates an account seeded with the signup bonus. Registering
// an email that already exists is a no-op with an empty 200 body, matching
// the frontend's expectations.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if user.Email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email is required")
		return
	}

	_, err := h.Store.GetByEmail(r.Context(), user.Email)
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	if !errors.Is(err, storage.ErrNotFound) {
		log.Printf("register lookup failed for %s: %v", user.Email, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	user.Coins = ledger.SignupBonus
	if err := h.Store.Insert(r.Context(), &user); err != nil {
		log.Printf("register insert failed for %s: %v", user.Email, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"acknowledged": true,
		"insertedId":   user.ID.Hex(),
	})
}

// GetUser fetches a user record by email.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	email := r.URL.Query().Get("email")
	if email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email is required")
		return
	}

	user, err := h.Store.GetByEmail(r.Context(), email)
	if errors.Is(err, storage.ErrNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("user lookup failed for %s: %v", email, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch user data")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

type purchaseRequest struct {
	Email  string `json:"email"`
	Amount int    `json:"amount"`
}

// PurchaseCoins credits a balance. Amounts must be positive; the old
// behavior of accepting negative amounts let clients debit arbitrary
// accounts.
func (h *Handler) PurchaseCoins(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": "Invalid request body"})
		return
	}
	if req.Amount <= 0 {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": "Amount must be a positive number"})
		return
	}

	updated, err := h.Store.AdjustCoins(r.Context(), req.Email, req.Amount)
	if errors.Is(err, storage.ErrNotFound) {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"message": "User not found"})
		return
	}
	if err != nil {
		log.Printf("coin purchase failed for %s: %v", req.Email, err)
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"message": "Failed to purchase coins"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":      "Coins purchased successfully",
		"updatedCoins": updated,
	})
}
