package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/thehopecrystal/verify-properties/internal/handlers"
	"github.com/thehopecrystal/verify-properties/internal/identity"
	"github.com/thehopecrystal/verify-properties/internal/metrics"
	"github.com/thehopecrystal/verify-properties/internal/records"
)

func New(ids *identity.Store, store *records.Store, tokens *handlers.Tokens, m *metrics.Metrics) http.Handler {
	router := mux.NewRouter()
	router.Use(m.Middleware)

	user := func(h http.Handler) http.Handler {
		return handlers.AuthorizationMiddleware(h, false, ids, tokens)
	}
	admin := func(h http.Handler) http.Handler {
		return handlers.AuthorizationMiddleware(h, true, ids, tokens)
	}

	router.Handle(`/register`, handlers.RegisterHandler(ids, tokens)).Methods(`POST`)
	router.Handle(`/login`, handlers.LoginHandler(ids, tokens)).Methods(`POST`)
	router.Handle(`/logout`, user(handlers.LogoutHandler(ids))).Methods(`POST`)
	router.Handle(`/session`, user(handlers.SessionHandler())).Methods(`GET`)

	router.Handle(`/property/create`, user(handlers.PropertyCreateHandler(store))).Methods(`POST`)
	router.Handle(`/property/update`, admin(handlers.PropertyUpdateHandler(store))).Methods(`POST`)
	router.Handle(`/property/{id}`, user(handlers.PropertyHandler(store))).Methods(`GET`)
	router.Handle(`/properties`, user(handlers.PropertiesHandler(store))).Methods(`GET`)

	router.Handle(`/request/create`, user(handlers.RequestCreateHandler(store))).Methods(`POST`)
	router.Handle(`/request/update`, admin(handlers.RequestUpdateHandler(store))).Methods(`POST`)
	router.Handle(`/request/{id}`, user(handlers.RequestHandler(store))).Methods(`GET`)
	router.Handle(`/requests`, user(handlers.RequestsHandler(store))).Methods(`GET`)

	router.Handle(`/dashboard`, user(handlers.DashboardHandler(store))).Methods(`GET`)
	router.Handle(`/metrics`, m.Handler()).Methods(`GET`)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{`*`},
		AllowedMethods:   []string{`GET`, `POST`, `OPTIONS`},
		AllowedHeaders:   []string{`Content-Type`, `Authorization`},
		AllowCredentials: true,
	}).Handler(router)

	return handler
}
