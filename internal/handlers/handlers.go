package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/thehopecrystal/verify-properties/internal/access"
	"github.com/thehopecrystal/verify-properties/internal/models"
	"github.com/thehopecrystal/verify-properties/internal/records"
)

func PropertyCreateHandler(store *records.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var fields records.PropertyFields
		if err := decodeBody(w, r, &fields); err != nil {
			writeBodyError(w, err)
			return
		}

		property, err := store.AddProperty(r.Context(), ActorFromContext(r.Context()), fields)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, property)
	})
}

func PropertiesHandler(store *records.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := records.PropertyFilter{Search: query.Get(`search`)}

		if s := query.Get(`status`); s != `` {
			status, err := models.ParsePropertyStatus(s)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			filter.Status = status
		}
		if s := query.Get(`type`); s != `` {
			propertyType, err := models.ParsePropertyType(s)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			filter.Type = propertyType
		}

		properties, err := store.ScopedProperties(r.Context(), ActorFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, records.FilterProperties(properties, filter))
	})
}

// PropertyHandler answers 404 for records the actor may not see, so their
// existence does not leak.
func PropertyHandler(store *records.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromContext(r.Context())

		property, err := store.FindProperty(r.Context(), mux.Vars(r)[`id`])
		if err == nil && (actor == nil || !access.CanView(*actor, property)) {
			err = records.ErrNotFound
		}
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, property)
	})
}

func PropertyUpdateHandler(store *records.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var update models.StatusUpdate
		if err := decodeBody(w, r, &update); err != nil {
			writeBodyError(w, err)
			return
		}

		status, err := models.ParsePropertyStatus(update.Status)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		property, err := store.UpdatePropertyStatus(r.Context(), ActorFromContext(r.Context()), update.Id, status)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, property)
	})
}

func RequestCreateHandler(store *records.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var fields records.RequestFields
		if err := decodeBody(w, r, &fields); err != nil {
			writeBodyError(w, err)
			return
		}

		request, err := store.AddRequest(r.Context(), ActorFromContext(r.Context()), fields)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, request)
	})
}

func RequestsHandler(store *records.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := records.RequestFilter{Search: query.Get(`search`)}

		if s := query.Get(`status`); s != `` {
			status, err := models.ParseRequestStatus(s)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			filter.Status = status
		}
		if s := query.Get(`purpose`); s != `` {
			purpose, err := models.ParseRequestPurpose(s)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			filter.Purpose = purpose
		}

		requests, err := store.ScopedRequests(r.Context(), ActorFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, records.FilterRequests(requests, filter))
	})
}

func RequestHandler(store *records.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromContext(r.Context())

		request, err := store.FindRequest(r.Context(), mux.Vars(r)[`id`])
		if err == nil && (actor == nil || !access.CanView(*actor, request)) {
			err = records.ErrNotFound
		}
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, request)
	})
}

func RequestUpdateHandler(store *records.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var update models.StatusUpdate
		if err := decodeBody(w, r, &update); err != nil {
			writeBodyError(w, err)
			return
		}

		status, err := models.ParseRequestStatus(update.Status)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		request, err := store.UpdateRequestStatus(r.Context(), ActorFromContext(r.Context()), update.Id, status)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, request)
	})
}

func DashboardHandler(store *records.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := store.Dashboard(r.Context(), ActorFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, dashboard)
	})
}
