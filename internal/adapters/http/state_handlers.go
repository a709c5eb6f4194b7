package httpadapter

import (
	"net/http"

	"github.com/kirillkom/docestate/internal/core/domain"
)

func (rt *Router) getState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.state.State())
}

func (rt *Router) setCurrentDocument(w http.ResponseWriter, r *http.Request) {
	var doc *domain.Document
	if err := decodeJSON(w, r, &doc); err != nil {
		writeError(w, err)
		return
	}
	rt.state.SetCurrentDocument(doc)
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) setLoading(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Loading *bool `json:"loading"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Loading == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "loading is required"})
		return
	}
	rt.state.SetLoading(*req.Loading)
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) setUser(w http.ResponseWriter, r *http.Request) {
	var user *domain.User
	if err := decodeJSON(w, r, &user); err != nil {
		writeError(w, err)
		return
	}
	rt.state.SetUser(user)
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) logout(w http.ResponseWriter, _ *http.Request) {
	rt.state.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) dashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.state.Stats())
}
