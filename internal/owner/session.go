// Package owner implements the owner's add/edit/delete workflow over the
// persisted menu.
package owner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vbonduro/menuboard/internal/domain"
)

var (
	ErrIndexOutOfRange = errors.New("dish index out of range")
	ErrStaleEdit       = errors.New("dish being edited no longer exists")
)

// State is the session's editing mode.
type State int

const (
	// Composing means the next submit appends a new dish.
	Composing State = iota
	// Editing means the next submit replaces the dish selected by StartEdit.
	Editing
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	default:
		return "composing"
	}
}

// menuRepository is the subset of store.MenuStore that Session requires.
type menuRepository interface {
	Load(ctx context.Context) (domain.MenuList, error)
	Save(ctx context.Context, list domain.MenuList) error
}

// Session coordinates the owner's draft against the persisted menu. Every
// successful mutation saves the full list before it becomes visible through
// Items; a failed save leaves the session exactly as it was.
//
// The dish being edited is tracked by ID, so the selection follows the dish
// when other dishes are removed. A Session is not safe for concurrent use.
type Session struct {
	store menuRepository
	newID func() string

	items     domain.MenuList
	draft     Draft
	editingID string
}

func NewSession(store menuRepository) *Session {
	return &Session{
		store: store,
		newID: uuid.NewString,
		items: domain.MenuList{},
		draft: blankDraft(),
	}
}

// Load replaces the in-memory list with the stored one and drops any edit in
// progress. When the store fails the list becomes empty and the error is
// returned for the caller to report.
func (s *Session) Load(ctx context.Context) error {
	list, err := s.store.Load(ctx)
	if list == nil {
		list = domain.MenuList{}
	}
	s.items = list
	if s.editingID != "" {
		s.reset()
	}
	return err
}

func (s *Session) Items() domain.MenuList {
	return s.items.Clone()
}

func (s *Session) Draft() Draft {
	return s.draft
}

// SetDraft replaces the form fields. The editing selection is unchanged.
func (s *Session) SetDraft(d Draft) {
	s.draft = d
}

func (s *Session) State() State {
	if s.editingID != "" {
		return Editing
	}
	return Composing
}

// EditingIndex returns the current position of the dish being edited.
func (s *Session) EditingIndex() (int, bool) {
	if s.editingID == "" {
		return 0, false
	}
	i := s.items.IndexOf(s.editingID)
	if i < 0 {
		return 0, false
	}
	return i, true
}

// StartCreate clears the form and returns to Composing.
func (s *Session) StartCreate() {
	s.reset()
}

// StartEdit copies the dish at index into the draft and selects it.
func (s *Session) StartEdit(index int) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	d := s.items[index]
	s.draft = Draft{
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		Image:       d.Image,
	}
	s.editingID = d.ID
	return nil
}

// CancelEdit clears the form and returns to Composing. It does nothing while
// composing.
func (s *Session) CancelEdit() {
	if s.editingID == "" {
		return
	}
	s.reset()
}

// Submit validates the draft and saves it, appending while composing or
// replacing the selected dish while editing. On success the form is cleared
// and the saved dish is returned.
func (s *Session) Submit(ctx context.Context) (domain.Dish, error) {
	dish, err := s.draft.Validate()
	if err != nil {
		return domain.Dish{}, err
	}

	next := s.items.Clone()
	if s.editingID != "" {
		i := next.IndexOf(s.editingID)
		if i < 0 {
			// Keep the typed fields so they can be resubmitted as a new dish.
			s.editingID = ""
			return domain.Dish{}, ErrStaleEdit
		}
		dish.ID = s.editingID
		next[i] = dish
	} else {
		dish.ID = s.newID()
		next = append(next, dish)
	}

	if err := s.store.Save(ctx, next); err != nil {
		return domain.Dish{}, fmt.Errorf("failed to save dish: %w", err)
	}

	s.items = next
	s.reset()
	return dish, nil
}

// Delete removes the dish at index and saves. Deleting the dish being edited
// returns the session to Composing with a blank form. The removed dish is
// returned.
func (s *Session) Delete(ctx context.Context, index int) (domain.Dish, error) {
	if index < 0 || index >= len(s.items) {
		return domain.Dish{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	removed := s.items[index]
	next := make(domain.MenuList, 0, len(s.items)-1)
	next = append(next, s.items[:index]...)
	next = append(next, s.items[index+1:]...)

	if err := s.store.Save(ctx, next); err != nil {
		return domain.Dish{}, fmt.Errorf("failed to delete dish: %w", err)
	}

	s.items = next
	if s.editingID == removed.ID {
		s.reset()
	}
	return removed, nil
}

func (s *Session) reset() {
	s.draft = blankDraft()
	s.editingID = ""
}
