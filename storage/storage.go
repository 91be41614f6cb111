package storage

import (
	"context"
	"errors"

	"tastytreasures/models"
)

var (
	ErrNotFound          = errors.New("storage: not found")
	ErrInsufficientFunds = errors.New("storage: insufficient funds")
)

const (
	// DefaultPageSize applies when a page is requested without a pageSize.
	DefaultPageSize = 3

	// UnpaginatedCap bounds the unpaginated listing mode.
	UnpaginatedCap = 500
)

// UserStore persists user records keyed by email. All coin mutations are
// single-document atomic operations; callers never write a balance they
// previously read.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// AdjustCoins applies delta to the user's balance and returns the new
	// balance. Returns ErrNotFound if no user matches.
	AdjustCoins(ctx context.Context, email string, delta int) (int, error)

	// DebitCoins subtracts amount only when the current balance covers it.
	// Returns ErrInsufficientFunds otherwise, ErrNotFound for unknown users.
	DebitCoins(ctx context.Context, email string, amount int) error
}

// ListFilter narrows and paginates recipe listings. Page <= 0 selects the
// unpaginated mode.
type ListFilter struct {
	Category string
	Country  string
	Search   string
	Page     int
	PageSize int
}

type RecipeStore interface {
	Insert(ctx context.Context, recipe *models.Recipe) (string, error)
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
	List(ctx context.Context, filter ListFilter) ([]models.Recipe, error)

	// AddPurchaser appends email to purchased_by and bumps watchCount in one
	// conditional update. Returns false when email was already present, so a
	// racing second unlock cannot charge twice.
	AddPurchaser(ctx context.Context, id, email string) (bool, error)

	// RemovePurchaser undoes AddPurchaser (compensation when the follow-up
	// debit fails). Returns ErrNotFound when the recipe is missing or email
	// is not among its purchasers.
	RemovePurchaser(ctx context.Context, id, email string) error

	// ToggleReaction flips email's presence in reactions and returns the
	// updated recipe.
	ToggleReaction(ctx context.Context, id, email string) (*models.Recipe, error)
}
