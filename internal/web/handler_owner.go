package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vbonduro/menuboard/internal/owner"
)

const maxDraftSize = 64 * 1024

func (s *Server) handleOwnerState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, toOwnerJSON(s.service.OwnerState()))
}

func (s *Server) handleOwnerRefresh(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, toOwnerJSON(s.service.OwnerActivate(r.Context())))
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var body draftJSON
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDraftSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid draft")
		return
	}

	s.writeJSON(w, http.StatusOK, toOwnerJSON(s.service.UpdateDraft(body.toDraft())))
}

func (s *Server) handleNewDish(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, toOwnerJSON(s.service.NewDish(r.Context())))
}

func (s *Server) handleStartEdit(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid dish index")
		return
	}

	view, err := s.service.StartEdit(r.Context(), index)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "dish not found")
		return
	}
	s.writeJSON(w, http.StatusOK, toOwnerJSON(view))
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, toOwnerJSON(s.service.CancelEdit(r.Context())))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	dish, err := s.service.Submit(r.Context())
	if err != nil {
		var verr *owner.ValidationError
		switch {
		case errors.As(err, &verr):
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
		case errors.Is(err, owner.ErrStaleEdit):
			s.writeError(w, http.StatusConflict, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, "menu could not be saved")
		}
		return
	}
	s.writeJSON(w, http.StatusCreated, toDishJSON(dish))
}

func (s *Server) handleDeleteDish(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid dish index")
		return
	}

	removed, err := s.service.DeleteDish(r.Context(), index)
	if err != nil {
		if errors.Is(err, owner.ErrIndexOutOfRange) {
			s.writeError(w, http.StatusNotFound, "dish not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "menu could not be saved")
		return
	}
	s.writeJSON(w, http.StatusOK, toDishJSON(removed))
}
