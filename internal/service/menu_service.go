package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vbonduro/menuboard/internal/domain"
	"github.com/vbonduro/menuboard/internal/menu"
	"github.com/vbonduro/menuboard/internal/owner"
	"github.com/vbonduro/menuboard/internal/photostore"
)

// ErrWriteFailed wraps storage failures on owner mutations. The owner session
// is left as it was before the failed call, so the action can be retried.
var ErrWriteFailed = errors.New("menu could not be saved")

// menuRepository is the subset of store.MenuStore that MenuService requires.
type menuRepository interface {
	Load(ctx context.Context) (domain.MenuList, error)
	Save(ctx context.Context, list domain.MenuList) error
}

// MenuService is the entry point for the browsing and owner screens. It owns
// the single owner session and serialises access to it.
type MenuService struct {
	menuStore menuRepository
	photoStg  photostore.PhotoStore
	logger    *slog.Logger

	mu      sync.Mutex
	session *owner.Session
}

func NewMenuService(menuStore menuRepository, photoStg photostore.PhotoStore, logger *slog.Logger) *MenuService {
	return &MenuService{
		menuStore: menuStore,
		photoStg:  photoStg,
		logger:    logger,
		session:   owner.NewSession(menuStore),
	}
}

// OwnerView is a snapshot of the owner session for rendering.
type OwnerView struct {
	Items        domain.MenuList
	Draft        owner.Draft
	State        owner.State
	EditingIndex *int
}

// Activate reloads the menu for the browsing screen. Read failures are logged
// and yield an empty menu so the screen always renders.
func (s *MenuService) Activate(ctx context.Context) domain.MenuList {
	list, err := s.menuStore.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load menu, showing empty menu", "error", err)
	}
	if list == nil {
		list = domain.MenuList{}
	}
	return list
}

// Browse reloads the menu and returns the dishes under tab. Unknown tabs
// yield no dishes.
func (s *MenuService) Browse(ctx context.Context, tab string) []domain.Dish {
	return menu.FilterByCategory(s.Activate(ctx), tab)
}

// Dish returns the dish with the given id, or nil when there is none.
func (s *MenuService) Dish(ctx context.Context, id string) *domain.Dish {
	list := s.Activate(ctx)
	if i := list.IndexOf(id); i >= 0 {
		d := list[i]
		return &d
	}
	return nil
}

// Receipt confirms a payment for one dish. Payments are only acknowledged;
// nothing is charged.
type Receipt struct {
	DishID  string
	Name    string
	Amount  string
	Message string
}

// Pay confirms payment for the dish with the given id. It returns false when
// the dish is not on the menu.
func (s *MenuService) Pay(ctx context.Context, id string) (Receipt, bool) {
	d := s.Dish(ctx, id)
	if d == nil {
		return Receipt{}, false
	}
	s.logger.Info("payment confirmed", "dish_id", d.ID, "amount", d.Price)
	return Receipt{
		DishID:  d.ID,
		Name:    d.Name,
		Amount:  d.Price,
		Message: fmt.Sprintf("Payment of R%s processed!", d.Price),
	}, true
}

// OwnerActivate reloads the owner session from storage, dropping any edit in
// progress together with a photo uploaded for it.
func (s *MenuService) OwnerActivate(ctx context.Context) OwnerView {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.session.Draft().Image
	if err := s.session.Load(ctx); err != nil {
		// Without the stored list there is no telling which photos are in use.
		s.logger.Warn("failed to load menu for owner, starting from empty menu", "error", err)
		return s.view()
	}
	s.releasePhoto(ctx, prior)
	return s.view()
}

func (s *MenuService) OwnerState() OwnerView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view()
}

func (s *MenuService) UpdateDraft(d owner.Draft) OwnerView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.SetDraft(d)
	return s.view()
}

// NewDish clears the form. A photo uploaded for the discarded draft is
// removed, as are photos dropped by StartEdit and CancelEdit.
func (s *MenuService) NewDish(ctx context.Context) OwnerView {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.session.Draft().Image
	s.session.StartCreate()
	s.releasePhoto(ctx, prior)
	return s.view()
}

func (s *MenuService) StartEdit(ctx context.Context, index int) (OwnerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.session.Draft().Image
	if err := s.session.StartEdit(index); err != nil {
		return s.view(), err
	}
	s.releasePhoto(ctx, prior)
	return s.view(), nil
}

func (s *MenuService) CancelEdit(ctx context.Context) OwnerView {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.session.Draft().Image
	s.session.CancelEdit()
	s.releasePhoto(ctx, prior)
	return s.view()
}

// Submit saves the current draft. Validation and stale-edit errors are
// returned unchanged; storage failures are logged and wrapped in
// ErrWriteFailed. A photo replaced by the edit is removed from storage.
func (s *MenuService) Submit(ctx context.Context) (domain.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var previous domain.Dish
	if i, ok := s.session.EditingIndex(); ok {
		previous = s.session.Items()[i]
	}

	dish, err := s.session.Submit(ctx)
	if err != nil {
		if errors.Is(err, owner.ErrValidation) || errors.Is(err, owner.ErrStaleEdit) {
			s.logger.Debug("dish rejected", "error", err)
			return domain.Dish{}, err
		}
		s.logger.Error("failed to save dish", "name", s.session.Draft().Name, "error", err)
		return domain.Dish{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	if previous.Image != dish.Image {
		s.releasePhoto(ctx, previous.Image)
	}
	s.logger.Info("dish saved", "dish_id", dish.ID, "name", dish.Name, "category", dish.Category)
	return dish, nil
}

// DeleteDish removes the dish at index, and its stored photo when nothing else
// refers to it.
func (s *MenuService) DeleteDish(ctx context.Context, index int) (domain.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.session.Delete(ctx, index)
	if err != nil {
		if errors.Is(err, owner.ErrIndexOutOfRange) {
			return domain.Dish{}, err
		}
		s.logger.Error("failed to delete dish", "index", index, "error", err)
		return domain.Dish{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	s.releasePhoto(ctx, removed.Image)
	s.logger.Info("dish deleted", "dish_id", removed.ID, "name", removed.Name)
	return removed, nil
}

// AttachPhoto stores an uploaded photo and sets it as the draft's image. A
// photo previously attached to the draft but never saved on a dish is
// removed.
func (s *MenuService) AttachPhoto(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	storageKey, err := s.photoStg.Save(ctx, "dish", mimeType, bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to save photo: %w", err)
	}
	uri := photostore.URI(storageKey)
	s.logger.Debug("photo saved", "storage_key", storageKey, "bytes", len(imageData))

	d := s.session.Draft()
	prior := d.Image
	d.Image = uri
	s.session.SetDraft(d)

	s.releasePhoto(ctx, prior)
	return uri, nil
}

// releasePhoto removes image from storage unless a saved dish or the current
// draft still refers to it. Image URIs are set by clients, so several dishes
// may share one photo.
func (s *MenuService) releasePhoto(ctx context.Context, image string) {
	if image == "" || s.session.Draft().Image == image {
		return
	}
	for _, d := range s.session.Items() {
		if d.Image == image {
			return
		}
	}
	s.removePhoto(ctx, image)
}

// removePhoto deletes a locally stored photo. External references are left
// alone and failures are only logged.
func (s *MenuService) removePhoto(ctx context.Context, image string) {
	key, ok := photostore.KeyFromURI(image)
	if !ok {
		return
	}
	if err := s.photoStg.Delete(ctx, key); err != nil {
		s.logger.Error("failed to delete photo file", "storage_key", key, "error", err)
	}
}

func (s *MenuService) view() OwnerView {
	v := OwnerView{
		Items: s.session.Items(),
		Draft: s.session.Draft(),
		State: s.session.State(),
	}
	if i, ok := s.session.EditingIndex(); ok {
		v.EditingIndex = &i
	}
	return v
}
