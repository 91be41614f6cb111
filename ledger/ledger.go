// Package ledger holds the coin accounting rules: what a view costs, what a
// submission earns, and how an unlock moves coins between viewer and creator.
package ledger

import (
	"context"
	"errors"

	"tastytreasures/events"
	"tastytreasures/models"
	"tastytreasures/storage"
)

const (
	// SignupBonus seeds every new account.
	SignupBonus = 50

	// SubmitReward is credited to a creator for each recipe they publish.
	SubmitReward = 50

	// UnlockCost is debited from a viewer on first unlock of a recipe.
	UnlockCost = 10

	// CreatorCut is credited to the creator per unlock. The remaining
	// UnlockCost - CreatorCut coins leave circulation as the platform fee.
	CreatorCut = 5
)

const (
	RedirectDetails  = "recipeDetails"
	RedirectPurchase = "purchaseCoins"
)

var (
	ErrRecipeNotFound = errors.New("ledger: recipe not found")
	ErrUnknownViewer  = errors.New("ledger: unknown viewer")
)

// Outcome is the tagged result of a detail-view request: either the client
// may render the recipe, or it should be sent to the coin purchase flow.
type Outcome struct {
	Redirect string
	Message  string
	Recipe   *models.Recipe
}

type Ledger struct {
	users   storage.UserStore
	recipes storage.RecipeStore
	hub     *events.Hub
}

// New builds a Ledger. hub may be nil when no activity feed is wired.
func New(users storage.UserStore, recipes storage.RecipeStore, hub *events.Hub) *Ledger {
	return &Ledger{users: users, recipes: recipes, hub: hub}
}

// View evaluates one (viewer, recipe) detail request. Creators and prior
// purchasers read for free; everyone else pays UnlockCost once, of which
// CreatorCut goes to the creator.
func (l *Ledger) View(ctx context.Context, recipeID, viewerEmail string) (*Outcome, error) {
	recipe, err := l.recipes.GetByID(ctx, recipeID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}

	viewer, err := l.users.GetByEmail(ctx, viewerEmail)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnknownViewer
	}
	if err != nil {
		return nil, err
	}

	if viewer.Email == recipe.CreatorEmail {
		return &Outcome{Redirect: RedirectDetails, Recipe: recipe}, nil
	}
	if viewer.Coins < UnlockCost {
		return &Outcome{Redirect: RedirectPurchase, Message: "Not enough coins"}, nil
	}
	if recipe.HasPurchased(viewerEmail) {
		return &Outcome{Redirect: RedirectDetails, Recipe: recipe}, nil
	}

	// The conditional append is the serialization point: of two racing
	// unlocks only one observes added == true and pays.
	added, err := l.recipes.AddPurchaser(ctx, recipeID, viewerEmail)
	if err != nil {
		return nil, err
	}
	if added {
		if err := l.users.DebitCoins(ctx, viewerEmail, UnlockCost); err != nil {
			if errors.Is(err, storage.ErrInsufficientFunds) {
				// Balance was spent elsewhere between the read and the
				// debit; undo the append and send the viewer to top up.
				if rerr := l.recipes.RemovePurchaser(ctx, recipeID, viewerEmail); rerr != nil {
					return nil, rerr
				}
				return &Outcome{Redirect: RedirectPurchase, Message: "Not enough coins"}, nil
			}
			return nil, err
		}
		if _, err := l.users.AdjustCoins(ctx, recipe.CreatorEmail, CreatorCut); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		l.hub.Publish(events.Event{Type: events.TypeRecipeUnlocked, RecipeID: recipeID, Email: viewerEmail})
	}

	recipe, err = l.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return &Outcome{Redirect: RedirectDetails, Recipe: recipe}, nil
}
