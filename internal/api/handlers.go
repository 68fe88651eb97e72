package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/vietddude/linkpay/internal/core/domain"
	"github.com/vietddude/linkpay/internal/metrics"
)

const maxBodyBytes = 1 << 20

// ReorderRequest is the body of POST /api/v1/reorder.
type ReorderRequest struct {
	Type  string                  `json:"type"`
	Items []domain.PositionUpdate `json:"items"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type listResponse struct {
	Items []domain.OrderedItem `json:"items"`
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerFromContext(r.Context())

	var req ReorderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.reorderResult(w, "invalid", http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	collection, err := domain.ParseCollectionType(req.Type)
	if err != nil {
		s.reorderResult(w, "invalid", http.StatusBadRequest, err)
		return
	}

	if err := s.manager.Reorder(r.Context(), ownerID, collection, req.Items); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.log.Error("Reorder failed", "owner", ownerID, "collection", collection, "error", err)
		}
		s.reorderResult(w, string(collection), status, err)
		return
	}

	s.reorderResult(w, string(collection), http.StatusOK, nil)
}

func (s *Server) reorderResult(w http.ResponseWriter, collection string, status int, err error) {
	metrics.ReorderRequests.WithLabelValues(collection, strconv.Itoa(status)).Inc()
	if err != nil {
		s.writeFailure(w, status, err)
		return
	}
	writeJSON(w, status, successResponse{Success: true})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerFromContext(r.Context())
	s.list(w, r, ownerID)
}

func (s *Server) handlePublicList(w http.ResponseWriter, r *http.Request) {
	s.list(w, r, r.PathValue("owner"))
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, ownerID string) {
	collection, err := domain.ParseCollectionType(r.PathValue("collection"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	items, err := s.manager.List(r.Context(), ownerID, collection)
	if err != nil {
		s.log.Error("List failed", "owner", ownerID, "collection", collection, "error", err)
		s.writeFailure(w, statusFor(err), err)
		return
	}
	if items == nil {
		items = []domain.OrderedItem{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerFromContext(r.Context())

	payload, err := decodePayload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	item, err := s.manager.Create(r.Context(), ownerID, payload)
	if err != nil {
		s.log.Error("Create failed", "owner", ownerID, "collection", payload.Collection(), "error", err)
		s.writeFailure(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerFromContext(r.Context())

	payload, err := decodePayload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.manager.Update(r.Context(), ownerID, r.PathValue("id"), payload); err != nil {
		s.writeFailure(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerFromContext(r.Context())

	collection, err := domain.ParseCollectionType(r.PathValue("collection"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.manager.Delete(r.Context(), ownerID, collection, r.PathValue("id")); err != nil {
		s.writeFailure(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// decodePayload reads the request body as the payload of the path's collection.
func decodePayload(w http.ResponseWriter, r *http.Request) (domain.Payload, error) {
	collection, err := domain.ParseCollectionType(r.PathValue("collection"))
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	return domain.DecodePayload(collection, body)
}

// writeFailure hides internal error details from clients.
func (s *Server) writeFailure(w http.ResponseWriter, status int, err error) {
	if status == http.StatusInternalServerError {
		err = errors.New("internal error")
	}
	writeError(w, status, err)
}
