package model

import "time"

// Item represents a lendable object listed by a user.
type Item struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	RequesterID string    `json:"requester_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	School      string    `json:"school,omitempty"`
	Program     string    `json:"program,omitempty"`
	ImageMime   string    `json:"image_mime,omitempty"`
	Status      string    `json:"status"`
	ReturnDate  time.Time `json:"return_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Item statuses. An item starts available, becomes unavailable when a
// borrower requests it, and becomes old when the loan is closed by a rating.
// Old is terminal.
const (
	ItemStatusAvailable   = "available"
	ItemStatusUnavailable = "unavailable"
	ItemStatusOld         = "old"
)

// Item conditions.
const (
	ConditionExcellent  = "excellent"
	ConditionGentlyUsed = "gently_used"
	ConditionFair       = "fair"
	ConditionPoor       = "poor"
)

// ConditionRank maps a condition to its search-ranking weight.
// Unknown conditions rank as fair.
func ConditionRank(condition string) int {
	ranks := map[string]int{
		ConditionExcellent:  3,
		ConditionGentlyUsed: 2,
		ConditionFair:       1,
		ConditionPoor:       0,
	}
	rank, ok := ranks[condition]
	if !ok {
		return ranks[ConditionFair]
	}
	return rank
}

// ValidCondition checks if condition is one of the known values.
func ValidCondition(condition string) bool {
	switch condition {
	case ConditionExcellent, ConditionGentlyUsed, ConditionFair, ConditionPoor:
		return true
	}
	return false
}
