package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campuslend/campuslend/internal/db"
	"github.com/campuslend/campuslend/internal/lending"
	"github.com/campuslend/campuslend/internal/model"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

type signupResult struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// signupUser registers a user through the API and returns their identity and token.
func signupUser(t *testing.T, server *httptest.Server, username, school string) signupResult {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"email":    username + "@example.edu",
		"password": "password",
		"school":   school,
		"program":  "CS",
	})
	resp, err := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("signup request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup failed: %d", resp.StatusCode)
	}

	var result signupResult
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Token == "" {
		t.Fatal("empty token from signup")
	}
	return result
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doAuth(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestSignupAndLogin(t *testing.T) {
	server := setupTestServer(t)

	signupUser(t, server, "alice", "State University")

	// Duplicate username is rejected.
	body, _ := json.Marshal(map[string]string{
		"username": "alice",
		"email":    "alice2@example.edu",
		"password": "password",
	})
	resp, _ := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate username, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Wrong password is rejected.
	body, _ = json.Marshal(map[string]string{"username": "alice", "password": "wrong"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Correct password returns a token.
	body, _ = json.Marshal(map[string]string{"username": "alice", "password": "password"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for login, got %d", resp.StatusCode)
	}
	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	resp.Body.Close()
	if loginResp["token"] == "" {
		t.Error("expected token from login")
	}
}

func TestAuthRequired(t *testing.T) {
	server := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/items")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server := setupTestServer(t)
	alice := signupUser(t, server, "alice", "State University")

	resp := doAuth(t, "GET", server.URL+"/api/users/me", alice.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 before logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doAuth(t, "POST", server.URL+"/api/auth/logout", alice.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout failed: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doAuth(t, "GET", server.URL+"/api/users/me", alice.Token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLendingFlow(t *testing.T) {
	server := setupTestServer(t)

	owner := signupUser(t, server, "owner", "State University")
	borrower := signupUser(t, server, "borrower", "State University")
	rival := signupUser(t, server, "rival", "State University")

	// Owner lists an item.
	resp := doAuth(t, "POST", server.URL+"/api/items", owner.Token, map[string]string{
		"title":       "Graphing Calculator",
		"description": "TI-84, works fine",
		"category":    "electronics",
		"condition":   "excellent",
		"return_date": "2026-10-01T12:00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 creating item, got %d", resp.StatusCode)
	}
	var item model.Item
	json.NewDecoder(resp.Body).Decode(&item)
	resp.Body.Close()

	// Borrower sees it while browsing; owner does not see their own listing.
	resp = doAuth(t, "GET", server.URL+"/api/items", borrower.Token, nil)
	var browse []itemWithOwner
	json.NewDecoder(resp.Body).Decode(&browse)
	resp.Body.Close()
	if len(browse) != 1 || browse[0].Owner.Username != "owner" {
		t.Fatalf("expected 1 browsable item with owner snippet, got %+v", browse)
	}

	resp = doAuth(t, "GET", server.URL+"/api/items", owner.Token, nil)
	var ownBrowse []itemWithOwner
	json.NewDecoder(resp.Body).Decode(&ownBrowse)
	resp.Body.Close()
	if len(ownBrowse) != 0 {
		t.Errorf("owner should not see their own items while browsing, got %d", len(ownBrowse))
	}

	// Ranked search finds the item.
	resp = doAuth(t, "GET", server.URL+"/api/search?q=calculator", borrower.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 searching, got %d", resp.StatusCode)
	}
	var searchResp struct {
		Items []json.RawMessage `json:"items"`
	}
	json.NewDecoder(resp.Body).Decode(&searchResp)
	resp.Body.Close()
	if len(searchResp.Items) != 1 {
		t.Fatalf("expected 1 search result, got %d", len(searchResp.Items))
	}

	// Borrower requests the item; a rival's request then conflicts.
	resp = doAuth(t, "POST", server.URL+"/api/items/"+item.ID+"/request", borrower.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 requesting, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doAuth(t, "POST", server.URL+"/api/items/"+item.ID+"/request", rival.Token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for losing request, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The loan shows up in the borrower's activity and the owner's loaned list.
	resp = doAuth(t, "GET", server.URL+"/api/activity", borrower.Token, nil)
	var activity lending.Activity
	json.NewDecoder(resp.Body).Decode(&activity)
	resp.Body.Close()
	if len(activity.Active) != 1 {
		t.Errorf("expected 1 active loan, got %+v", activity)
	}

	resp = doAuth(t, "GET", server.URL+"/api/items/loaned", owner.Token, nil)
	var loaned []model.Item
	json.NewDecoder(resp.Body).Decode(&loaned)
	resp.Body.Close()
	if len(loaned) != 1 {
		t.Errorf("expected 1 loaned item, got %d", len(loaned))
	}

	// Only the borrower may rate; the rating closes the loan.
	resp = doAuth(t, "POST", server.URL+"/api/items/"+item.ID+"/rate", rival.Token, map[string]int{"rating": 1})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-borrower rating, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doAuth(t, "POST", server.URL+"/api/items/"+item.ID+"/rate", borrower.Token, map[string]int{"rating": 4})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 rating, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The owner's reputation now reflects the rating.
	resp = doAuth(t, "GET", server.URL+"/api/users/me", owner.Token, nil)
	var ratedOwner model.User
	json.NewDecoder(resp.Body).Decode(&ratedOwner)
	resp.Body.Close()
	if ratedOwner.RatingSum != 4 || ratedOwner.RatingCount != 1 {
		t.Errorf("expected sum=4 count=1, got sum=%d count=%d", ratedOwner.RatingSum, ratedOwner.RatingCount)
	}

	// A second rating must not double-increment.
	resp = doAuth(t, "POST", server.URL+"/api/items/"+item.ID+"/rate", borrower.Token, map[string]int{"rating": 5})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for double rating, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSearchValidation(t *testing.T) {
	server := setupTestServer(t)
	alice := signupUser(t, server, "alice", "State University")

	resp := doAuth(t, "GET", server.URL+"/api/search", alice.Token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without search term, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreateItemValidation(t *testing.T) {
	server := setupTestServer(t)
	alice := signupUser(t, server, "alice", "State University")

	resp := doAuth(t, "POST", server.URL+"/api/items", alice.Token, map[string]string{
		"title":       "Lamp",
		"description": "desk lamp",
		"category":    "furniture",
		"condition":   "fair",
		"return_date": "not a date",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad return date, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUpdateProfile(t *testing.T) {
	server := setupTestServer(t)
	alice := signupUser(t, server, "alice", "State University")

	resp := doAuth(t, "PUT", server.URL+"/api/users/me", alice.Token, map[string]string{
		"school":  "Other College",
		"program": "Physics",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 updating profile, got %d", resp.StatusCode)
	}
	var updated model.User
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()
	if updated.School != "Other College" || updated.Program != "Physics" {
		t.Errorf("expected updated profile, got %+v", updated)
	}
}
