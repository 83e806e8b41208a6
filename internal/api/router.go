package api

import (
	"database/sql"
	"net/http"

	"github.com/campuslend/campuslend/internal/lending"
	"github.com/campuslend/campuslend/internal/ranking"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	lendingSvc := &lending.Service{DB: db}
	rankingEngine := &ranking.Engine{DB: db}

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db, Lending: lendingSvc}
	requestsHandler := &RequestsHandler{DB: db, Lending: lendingSvc}
	searchHandler := &SearchHandler{Engine: rankingEngine}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: account creation and login.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Session management.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Profile.
	mux.Handle("GET /api/users/me", authMW(http.HandlerFunc(usersHandler.Me)))
	mux.Handle("PUT /api/users/me", authMW(http.HandlerFunc(usersHandler.UpdateProfile)))
	mux.Handle("GET /api/users/{id}/items", authMW(http.HandlerFunc(usersHandler.Items)))

	// Items.
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.Browse)))
	mux.Handle("GET /api/items/loaned", authMW(http.HandlerFunc(itemsHandler.Loaned)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))

	// Lending.
	mux.Handle("POST /api/items/{id}/request", authMW(http.HandlerFunc(requestsHandler.Request)))
	mux.Handle("POST /api/items/{id}/rate", authMW(http.HandlerFunc(requestsHandler.Rate)))
	mux.Handle("GET /api/activity", authMW(http.HandlerFunc(requestsHandler.Activity)))

	// Search.
	mux.Handle("GET /api/search", authMW(http.HandlerFunc(searchHandler.Search)))

	return mux
}
