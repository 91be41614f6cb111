package storage

import (
	"context"
	"strings"
	"sync"

	"tastytreasures/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserStore is an in-memory UserStore guarded by a mutex. Used by tests
// and as a dev fallback when no MongoDB is configured.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

func (s *MemoryUserStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	clone := *user
	s.users[user.Email] = &clone
	return nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *MemoryUserStore) AdjustCoins(_ context.Context, email string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[email]
	if !ok {
		return 0, ErrNotFound
	}
	user.Coins += delta
	return user.Coins, nil
}

func (s *MemoryUserStore) DebitCoins(_ context.Context, email string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[email]
	if !ok {
		return ErrNotFound
	}
	if user.Coins < amount {
		return ErrInsufficientFunds
	}
	user.Coins -= amount
	return nil
}

// MemoryRecipeStore is the in-memory RecipeStore counterpart. Insertion order
// is preserved so listings come back in storage-native order.
type MemoryRecipeStore struct {
	mu      sync.RWMutex
	recipes map[string]*models.Recipe
	order   []string
}

func NewMemoryRecipeStore() *MemoryRecipeStore {
	return &MemoryRecipeStore{recipes: make(map[string]*models.Recipe)}
}

func (s *MemoryRecipeStore) Insert(_ context.Context, recipe *models.Recipe) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recipe.ID.IsZero() {
		recipe.ID = primitive.NewObjectID()
	}
	id := recipe.ID.Hex()
	clone := cloneRecipe(recipe)
	s.recipes[id] = clone
	s.order = append(s.order, id)
	return id, nil
}

func (s *MemoryRecipeStore) GetByID(_ context.Context, id string) (*models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipe, ok := s.recipes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecipe(recipe), nil
}

func (s *MemoryRecipeStore) List(_ context.Context, filter ListFilter) ([]models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Recipe, 0)
	for _, id := range s.order {
		r := s.recipes[id]
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.Country != "" && r.Country != filter.Country {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, *cloneRecipe(r))
	}

	if filter.Page > 0 {
		size := filter.PageSize
		if size <= 0 {
			size = DefaultPageSize
		}
		skip := (filter.Page - 1) * size
		if skip >= len(matched) {
			return []models.Recipe{}, nil
		}
		matched = matched[skip:]
		if len(matched) > size {
			matched = matched[:size]
		}
	} else if len(matched) > UnpaginatedCap {
		matched = matched[:UnpaginatedCap]
	}
	return matched, nil
}

func (s *MemoryRecipeStore) AddPurchaser(_ context.Context, id, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipe, ok := s.recipes[id]
	if !ok {
		return false, ErrNotFound
	}
	if recipe.HasPurchased(email) {
		return false, nil
	}
	recipe.PurchasedBy = append(recipe.PurchasedBy, email)
	recipe.WatchCount++
	return true, nil
}

func (s *MemoryRecipeStore) RemovePurchaser(_ context.Context, id, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipe, ok := s.recipes[id]
	if !ok {
		return ErrNotFound
	}
	for i, e := range recipe.PurchasedBy {
		if e == email {
			recipe.PurchasedBy = append(recipe.PurchasedBy[:i], recipe.PurchasedBy[i+1:]...)
			recipe.WatchCount--
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryRecipeStore) ToggleReaction(_ context.Context, id, email string) (*models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipe, ok := s.recipes[id]
	if !ok {
		return nil, ErrNotFound
	}
	removed := false
	for i, e := range recipe.Reactions {
		if e == email {
			recipe.Reactions = append(recipe.Reactions[:i], recipe.Reactions[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		recipe.Reactions = append(recipe.Reactions, email)
	}
	return cloneRecipe(recipe), nil
}

func cloneRecipe(r *models.Recipe) *models.Recipe {
	clone := *r
	clone.Ingredients = append([]string(nil), r.Ingredients...)
	clone.Steps = append([]string(nil), r.Steps...)
	clone.ImageURLs = append([]string(nil), r.ImageURLs...)
	clone.PurchasedBy = append([]string(nil), r.PurchasedBy...)
	clone.Reactions = append([]string(nil), r.Reactions...)
	return &clone
}
