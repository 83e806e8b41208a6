// Package lending owns the item lifecycle: available -> unavailable -> old.
// All transitions run as conditional writes against the store so concurrent
// borrowers cannot double-book an item.
package lending

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campuslend/campuslend/internal/model"
	"github.com/campuslend/campuslend/internal/store"
)

// Service executes item lifecycle transitions.
type Service struct {
	DB *sql.DB
}

// ItemDraft carries the caller-supplied fields for a new listing.
// ReturnDate is the raw string from the client, parsed during Create.
type ItemDraft struct {
	Title       string
	Description string
	Category    string
	Condition   string
	ReturnDate  string
}

// returnDateLayouts are the accepted return date formats, tried in order.
var returnDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseReturnDate parses a return date in ISO 8601 form, with or without a
// time component.
func ParseReturnDate(s string) (time.Time, error) {
	for _, layout := range returnDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: return date must be YYYY-MM-DD or YYYY-MM-DDTHH:MM", model.ErrValidation)
}

// Create validates a draft, snapshots the owner's school and program onto the
// item, and inserts it with status available and no requester.
func (s *Service) Create(ctx context.Context, ownerID string, draft ItemDraft) (*model.Item, error) {
	if draft.Title == "" || draft.Description == "" || draft.Category == "" || draft.Condition == "" {
		return nil, fmt.Errorf("%w: title, description, category and condition are required", model.ErrValidation)
	}
	if !model.ValidCondition(draft.Condition) {
		return nil, fmt.Errorf("%w: unknown condition %q", model.ErrValidation, draft.Condition)
	}

	returnDate, err := ParseReturnDate(draft.ReturnDate)
	if err != nil {
		return nil, err
	}

	owner, err := store.GetUser(ctx, s.DB, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("owner %s: %w", ownerID, model.ErrNotFound)
	}

	item := &model.Item{
		OwnerID:     ownerID,
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Condition:   draft.Condition,
		School:      owner.School,
		Program:     owner.Program,
		ReturnDate:  returnDate,
	}
	return store.InsertItem(ctx, s.DB, item)
}

// Request claims an available item for a borrower. The available -> unavailable
// transition is a single conditional update: if another borrower got there
// first, the update affects zero rows and the call fails with a conflict.
func (s *Service) Request(ctx context.Context, itemID, requesterID string) (*model.Item, error) {
	requester, err := store.GetUser(ctx, s.DB, requesterID)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, fmt.Errorf("requester %s: %w", requesterID, model.ErrNotFound)
	}

	ok, err := store.UpdateItemStatusIf(ctx, s.DB, itemID,
		model.ItemStatusAvailable, model.ItemStatusUnavailable, &requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		item, err := store.GetItem(ctx, s.DB, itemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("item %s: %w", itemID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: item is no longer available", model.ErrConflict)
	}

	return store.GetItem(ctx, s.DB, itemID)
}

// CompleteAndRate closes a loan: the item moves unavailable -> old and the
// owner's rating counters are incremented by (rating, 1). The transition is
// conditional, so rating an already-closed item fails with a conflict rather
// than incrementing the owner's aggregate twice.
func (s *Service) CompleteAndRate(ctx context.Context, itemID string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", model.ErrValidation)
	}

	item, err := store.GetItem(ctx, s.DB, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("item %s: %w", itemID, model.ErrNotFound)
	}

	ok, err := store.UpdateItemStatusIf(ctx, s.DB, itemID,
		model.ItemStatusUnavailable, model.ItemStatusOld, nil)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: loan is not open for rating", model.ErrConflict)
	}

	return store.IncrementUserRating(ctx, s.DB, item.OwnerID, rating, 1)
}

// Activity partitions a borrower's loans into virtual buckets. The buckets are
// computed per call from status and deadline; nothing is stored.
type Activity struct {
	Active      []model.Item `json:"active"`
	NeedsRating []model.Item `json:"needs_rating"`
	History     []model.Item `json:"history"`
}

// ClassifyForBorrower returns the borrower's loans bucketed by state:
// open loans still within the return deadline, overdue loans awaiting a
// rating, and closed loans. Deadline expiry is advisory only; this is a pure
// read and never changes stored status.
func (s *Service) ClassifyForBorrower(ctx context.Context, requesterID string, now time.Time) (*Activity, error) {
	items, err := store.ListItems(ctx, s.DB, store.ItemFilter{
		RequesterID: requesterID,
		Statuses:    []string{model.ItemStatusUnavailable, model.ItemStatusOld},
	})
	if err != nil {
		return nil, err
	}

	activity := &Activity{
		Active:      []model.Item{},
		NeedsRating: []model.Item{},
		History:     []model.Item{},
	}
	for _, item := range items {
		switch {
		case item.Status == model.ItemStatusOld:
			activity.History = append(activity.History, item)
		case item.ReturnDate.Before(now):
			activity.NeedsRating = append(activity.NeedsRating, item)
		default:
			activity.Active = append(activity.Active, item)
		}
	}
	return activity, nil
}
