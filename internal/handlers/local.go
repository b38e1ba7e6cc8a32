package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/xelth-com/ecktms/internal/models"
	"github.com/xelth-com/ecktms/internal/remote"
	"github.com/xelth-com/ecktms/internal/sync"
)

const maxBodyBytes = 1 << 20

// loadCollection refreshes a collection from the server, or serves the cache
func (r *Router) loadCollection(w http.ResponseWriter, req *http.Request) {
	collection := mux.Vars(req)["collection"]

	result := r.service.Load(req.Context(), collection)
	if req.URL.Query().Get("active") == "true" {
		result.Data = sync.ActiveOnly(result.Data)
	}

	resp := map[string]interface{}{
		"synced": result.Synced,
		"data":   result.Data,
		"state":  result.State,
	}
	if result.Err != nil {
		resp["error"] = result.Err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

// saveEntity creates or updates one record
func (r *Router) saveEntity(w http.ResponseWriter, req *http.Request) {
	collection := mux.Vars(req)["collection"]

	var entity models.Entity
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&entity); err != nil || entity == nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved, err := r.service.Save(req.Context(), collection, entity)
	if err == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"savedLocally": false,
			"data":         saved,
		})
		return
	}

	var saveErr *sync.SaveError
	if errors.As(err, &saveErr) && saveErr.SavedLocally {
		respondJSON(w, http.StatusAccepted, map[string]interface{}{
			"savedLocally": true,
			"data":         saveErr.Entity,
			"error":        saveErr.Cause.Error(),
		})
		return
	}

	r.log.Errorf("🔴 Save %s failed: %v", collection, err)
	respondError(w, http.StatusServiceUnavailable, err.Error())
}

// deleteEntity removes a record on the server and in the cache
func (r *Router) deleteEntity(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	collection := vars["collection"]

	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := r.service.Delete(req.Context(), collection, id); err != nil {
		respondError(w, remoteStatus(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "id": id})
}

// listPending returns the records still waiting for the server
func (r *Router) listPending(w http.ResponseWriter, req *http.Request) {
	collection := mux.Vars(req)["collection"]

	pending := make([]models.Entity, 0)
	for _, e := range r.service.Cached(req.Context(), collection) {
		if !e.Synced() {
			pending = append(pending, e)
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": pending})
}

// discardPending drops a queued record the user gave up on
func (r *Router) discardPending(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	removed, err := r.service.DiscardPending(req.Context(), vars["collection"], vars["localId"])
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "Pending record not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"discarded": true})
}

// runAutoSync pushes queued records. force=true clears the session flag first.
func (r *Router) runAutoSync(w http.ResponseWriter, req *http.Request) {
	if req.URL.Query().Get("force") == "true" {
		r.session.ClearAutoSync()
	}

	report := r.runner.Run(req.Context(), r.session)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"skipped":     report.Skipped,
		"pushed":      report.Pushed(),
		"failed":      report.Failed(),
		"collections": report.Collections,
		"durationMs":  report.Duration.Milliseconds(),
	})
}

// remoteStatus maps a remote failure onto the bridge's status code
func remoteStatus(err error) int {
	var rejected *remote.RejectedError
	if errors.As(err, &rejected) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}
