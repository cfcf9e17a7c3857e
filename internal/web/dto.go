package web

import (
	"github.com/vbonduro/menuboard/internal/domain"
	"github.com/vbonduro/menuboard/internal/owner"
	"github.com/vbonduro/menuboard/internal/service"
)

type dishJSON struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	Category    string  `json:"category"`
	Image       *string `json:"image"`
}

func toDishJSON(d domain.Dish) dishJSON {
	out := dishJSON{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    string(d.Category),
	}
	if d.Image != "" {
		img := d.Image
		out.Image = &img
	}
	return out
}

func toDishesJSON(dishes []domain.Dish) []dishJSON {
	out := make([]dishJSON, 0, len(dishes))
	for _, d := range dishes {
		out = append(out, toDishJSON(d))
	}
	return out
}

type draftJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Image       string `json:"image"`
}

func (d draftJSON) toDraft() owner.Draft {
	return owner.Draft{
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    domain.Category(d.Category),
		Image:       d.Image,
	}
}

func toDraftJSON(d owner.Draft) draftJSON {
	return draftJSON{
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    string(d.Category),
		Image:       d.Image,
	}
}

type ownerJSON struct {
	Items        []dishJSON `json:"items"`
	Draft        draftJSON  `json:"draft"`
	State        string     `json:"state"`
	EditingIndex *int       `json:"editing_index"`
}

func toOwnerJSON(v service.OwnerView) ownerJSON {
	return ownerJSON{
		Items:        toDishesJSON(v.Items),
		Draft:        toDraftJSON(v.Draft),
		State:        v.State.String(),
		EditingIndex: v.EditingIndex,
	}
}
