package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/campuslend/campuslend/internal/db"
	"github.com/campuslend/campuslend/internal/model"
)

func createTestUser(t *testing.T, database *sql.DB, username, school string) *model.User {
	t.Helper()
	ctx := context.Background()
	user, err := CreateUser(ctx, database, username, username+"@example.edu", "hash", school, "CS")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func createTestItem(t *testing.T, database *sql.DB, ownerID, title string) *model.Item {
	t.Helper()
	ctx := context.Background()
	item, err := InsertItem(ctx, database, &model.Item{
		OwnerID:     ownerID,
		Title:       title,
		Description: "test item",
		Category:    "books",
		Condition:   model.ConditionFair,
		School:      "State University",
		ReturnDate:  time.Now().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("InsertItem: %v", err)
	}
	return item
}

func TestInsertAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, database, "owner", "State University")
	item := createTestItem(t, database, owner.ID, "Calculus Textbook")

	if item.ID == "" {
		t.Fatal("expected generated item ID")
	}
	if item.Status != model.ItemStatusAvailable {
		t.Errorf("expected status 'available', got %q", item.Status)
	}
	if item.RequesterID != "" {
		t.Errorf("expected no requester on new item, got %q", item.RequesterID)
	}

	got, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Title != "Calculus Textbook" {
		t.Errorf("expected title 'Calculus Textbook', got %q", got.Title)
	}

	missing, err := GetItem(ctx, database, "nonexistent")
	if err != nil {
		t.Fatalf("GetItem missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestListItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, database, "alice", "State University")
	bob := createTestUser(t, database, "bob", "State University")

	createTestItem(t, database, alice.ID, "Linear Algebra Notes")
	bobItem := createTestItem(t, database, bob.ID, "Graphing Calculator")

	// Claim bob's item so it is no longer available.
	ok, err := UpdateItemStatusIf(ctx, database, bobItem.ID,
		model.ItemStatusAvailable, model.ItemStatusUnavailable, &alice.ID)
	if err != nil || !ok {
		t.Fatalf("UpdateItemStatusIf: ok=%v err=%v", ok, err)
	}

	available, err := ListItems(ctx, database, ItemFilter{Status: model.ItemStatusAvailable})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(available) != 1 || available[0].Title != "Linear Algebra Notes" {
		t.Errorf("expected only alice's item available, got %+v", available)
	}

	notAlice, _ := ListItems(ctx, database, ItemFilter{NotOwnerID: alice.ID})
	if len(notAlice) != 1 || notAlice[0].OwnerID != bob.ID {
		t.Errorf("expected only bob's item, got %+v", notAlice)
	}

	byRequester, _ := ListItems(ctx, database, ItemFilter{RequesterID: alice.ID})
	if len(byRequester) != 1 || byRequester[0].ID != bobItem.ID {
		t.Errorf("expected bob's item by requester, got %+v", byRequester)
	}

	bySchool, _ := ListItems(ctx, database, ItemFilter{School: "Other College"})
	if len(bySchool) != 0 {
		t.Errorf("expected no items for other school, got %d", len(bySchool))
	}
}

func TestListItemsTitleLikeEscaped(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, database, "owner", "State University")
	createTestItem(t, database, owner.ID, "100% Cotton Blanket")
	createTestItem(t, database, owner.ID, "Chemistry Goggles")

	// A literal "%" must only match titles containing "%".
	pattern := "%" + EscapeLike("100%") + "%"
	items, err := ListItems(ctx, database, ItemFilter{TitleLike: pattern})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 || items[0].Title != "100% Cotton Blanket" {
		t.Errorf("expected only the blanket, got %+v", items)
	}

	// An unmatched literal "%" must not act as a wildcard.
	pattern = "%" + EscapeLike("%") + "%"
	items, _ = ListItems(ctx, database, ItemFilter{TitleLike: pattern})
	if len(items) != 1 {
		t.Errorf("expected bare %% to match only the blanket, got %d items", len(items))
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		if got := EscapeLike(tt.in); got != tt.want {
			t.Errorf("EscapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUpdateItemStatusIf(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, database, "owner", "State University")
	borrower := createTestUser(t, database, "borrower", "State University")
	item := createTestItem(t, database, owner.ID, "Desk Lamp")

	// Wrong expected status is a no-op.
	ok, err := UpdateItemStatusIf(ctx, database, item.ID,
		model.ItemStatusUnavailable, model.ItemStatusOld, nil)
	if err != nil {
		t.Fatalf("UpdateItemStatusIf: %v", err)
	}
	if ok {
		t.Error("expected no-op for wrong expected status")
	}

	// Matching expected status transitions and records the requester.
	ok, err = UpdateItemStatusIf(ctx, database, item.ID,
		model.ItemStatusAvailable, model.ItemStatusUnavailable, &borrower.ID)
	if err != nil || !ok {
		t.Fatalf("expected transition to succeed: ok=%v err=%v", ok, err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusUnavailable {
		t.Errorf("expected status 'unavailable', got %q", got.Status)
	}
	if got.RequesterID != borrower.ID {
		t.Errorf("expected requester %q, got %q", borrower.ID, got.RequesterID)
	}

	// A second conditional claim loses.
	ok, _ = UpdateItemStatusIf(ctx, database, item.ID,
		model.ItemStatusAvailable, model.ItemStatusUnavailable, &owner.ID)
	if ok {
		t.Error("expected second claim to be a no-op")
	}

	// Missing item is a no-op, not an error.
	ok, err = UpdateItemStatusIf(ctx, database, "nonexistent",
		model.ItemStatusAvailable, model.ItemStatusUnavailable, &borrower.ID)
	if err != nil {
		t.Fatalf("UpdateItemStatusIf missing: %v", err)
	}
	if ok {
		t.Error("expected no-op for missing item")
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, database, "owner", "State University")
	item := createTestItem(t, database, owner.ID, "Photo Item")

	imageData := []byte("fake image data")
	if err := SetItemImage(ctx, database, item.ID, imageData, "image/jpeg"); err != nil {
		t.Fatalf("SetItemImage: %v", err)
	}

	data, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected image data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected mime 'image/jpeg', got %q", mime)
	}
}
