package web

import (
	"net/http"
	"strings"

	"github.com/vbonduro/menuboard/internal/menu"
)

type menuResponse struct {
	Tab    string     `json:"tab"`
	Tabs   []menu.Tab `json:"tabs"`
	Dishes []dishJSON `json:"dishes"`
}

// handleMenu serves one browsing tab. The menu is reloaded on every request.
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	tab := strings.TrimSpace(r.URL.Query().Get("tab"))
	if tab == "" {
		tab = string(menu.TabStarters)
	}

	dishes := s.service.Browse(r.Context(), tab)
	s.writeJSON(w, http.StatusOK, menuResponse{
		Tab:    tab,
		Tabs:   menu.Tabs(),
		Dishes: toDishesJSON(dishes),
	})
}

func (s *Server) handleGetDish(w http.ResponseWriter, r *http.Request) {
	dish := s.service.Dish(r.Context(), r.PathValue("id"))
	if dish == nil {
		s.writeError(w, http.StatusNotFound, "dish not found")
		return
	}
	s.writeJSON(w, http.StatusOK, toDishJSON(*dish))
}

type receiptJSON struct {
	DishID  string `json:"dish_id"`
	Name    string `json:"name"`
	Amount  string `json:"amount"`
	Message string `json:"message"`
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	receipt, ok := s.service.Pay(r.Context(), r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "dish not found")
		return
	}
	s.writeJSON(w, http.StatusOK, receiptJSON{
		DishID:  receipt.DishID,
		Name:    receipt.Name,
		Amount:  receipt.Amount,
		Message: receipt.Message,
	})
}
