// Package ranking orders search results by how attractive an item is to a
// borrower: the owner's reputation weighs twice as much as the item's
// condition.
package ranking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campuslend/campuslend/internal/model"
	"github.com/campuslend/campuslend/internal/store"
)

// Scoring weights.
const (
	ownerRatingWeight = 0.5
	conditionWeight   = 0.25
)

// Candidate is a scored search result: the item plus a snapshot of its owner.
// Candidates are rebuilt per query and never persisted.
type Candidate struct {
	Item  model.Item    `json:"item"`
	Owner model.Profile `json:"owner"`
	Score float64       `json:"score"`
}

// Score computes a candidate's composite priority from the owner's average
// rating and the item's condition.
func Score(ownerRating float64, condition string) float64 {
	return ownerRating*ownerRatingWeight + float64(model.ConditionRank(condition))*conditionWeight
}

// Engine ranks available items for a searching user.
type Engine struct {
	DB *sql.DB
}

// Search returns available items from the user's school whose title contains
// term (case-insensitive), excluding the user's own listings, ordered by
// descending score. Equal scores keep their discovery order. No matches is an
// empty result, not an error.
func (e *Engine) Search(ctx context.Context, userID, term string) ([]Candidate, error) {
	user, err := store.GetUser(ctx, e.DB, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, model.ErrNotFound)
	}

	// User input never reaches the LIKE predicate unescaped.
	pattern := "%" + store.EscapeLike(term) + "%"
	items, err := store.ListItems(ctx, e.DB, store.ItemFilter{
		Status:     model.ItemStatusAvailable,
		NotOwnerID: userID,
		School:     user.School,
		TitleLike:  pattern,
	})
	if err != nil {
		return nil, err
	}

	queue := &PriorityQueue[Candidate]{}
	owners := map[string]*model.User{}
	for _, item := range items {
		owner, ok := owners[item.OwnerID]
		if !ok {
			owner, err = store.GetUser(ctx, e.DB, item.OwnerID)
			if err != nil {
				return nil, err
			}
			owners[item.OwnerID] = owner
		}

		// A missing owner record scores as unrated.
		var profile model.Profile
		var rating float64
		if owner != nil {
			profile = owner.PublicProfile()
			rating = owner.Rating()
		}

		score := Score(rating, item.Condition)
		queue.Enqueue(score, Candidate{Item: item, Owner: profile, Score: score})
	}

	results := make([]Candidate, 0, queue.Len())
	for !queue.IsEmpty() {
		candidate, err := queue.Dequeue()
		if err != nil {
			return nil, err
		}
		results = append(results, candidate)
	}
	return results, nil
}
