package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/menuboard/internal/db"
	"github.com/vbonduro/menuboard/internal/domain"
	"github.com/vbonduro/menuboard/internal/owner"
	"github.com/vbonduro/menuboard/internal/photostore"
	"github.com/vbonduro/menuboard/internal/store"
)

// stubPhotoStore is a minimal in-memory photostore.PhotoStore for tests.
type stubPhotoStore struct {
	saved   map[string][]byte
	counter int
	saveErr error
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{saved: make(map[string][]byte)}
}

func (s *stubPhotoStore) Save(_ context.Context, prefix, _ string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, _ := io.ReadAll(r)
	s.counter++
	key := fmt.Sprintf("%s_%d.jpg", prefix, s.counter)
	s.saved[key] = data
	return key, nil
}

func (s *stubPhotoStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := s.saved[key]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubPhotoStore) Delete(_ context.Context, key string) error {
	if _, ok := s.saved[key]; !ok {
		return errors.New("not found")
	}
	delete(s.saved, key)
	return nil
}

// flakyRepo wraps a real menu store and fails on demand.
type flakyRepo struct {
	menuRepository
	loadErr error
	saveErr error
}

func (r *flakyRepo) Load(ctx context.Context) (domain.MenuList, error) {
	if r.loadErr != nil {
		return domain.MenuList{}, r.loadErr
	}
	return r.menuRepository.Load(ctx)
}

func (r *flakyRepo) Save(ctx context.Context, list domain.MenuList) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.menuRepository.Save(ctx, list)
}

func newTestService(t *testing.T) (*MenuService, *flakyRepo, *stubPhotoStore) {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	repo := &flakyRepo{menuRepository: store.NewMenuStore(store.NewKVStore(d), store.DefaultMenuKey)}
	photos := newStubPhotoStore()
	svc := NewMenuService(repo, photos, slog.Default())
	svc.OwnerActivate(context.Background())
	return svc, repo, photos
}

func addDish(t *testing.T, svc *MenuService, name string, category domain.Category) domain.Dish {
	t.Helper()
	svc.UpdateDraft(owner.Draft{Name: name, Description: name + " desc", Price: "10", Category: category})
	dish, err := svc.Submit(context.Background())
	require.NoError(t, err)
	return dish
}

func TestMenuServiceSubmitAndBrowse(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	addDish(t, svc, "Soup", domain.CategoryStarter)
	addDish(t, svc, "Steak", domain.CategoryMain)
	addDish(t, svc, "Bread", domain.CategoryStarter)

	starters := svc.Browse(ctx, "Starters")
	require.Len(t, starters, 2)
	assert.Equal(t, "Soup", starters[0].Name)
	assert.Equal(t, "Bread", starters[1].Name)

	assert.Len(t, svc.Browse(ctx, "Mains"), 1)
	assert.Empty(t, svc.Browse(ctx, "Desserts"))
	assert.Empty(t, svc.Browse(ctx, "Drinks"))
}

func TestMenuServiceActivate_ReadFailureDegrades(t *testing.T) {
	svc, repo, _ := newTestService(t)
	addDish(t, svc, "Soup", domain.CategoryStarter)
	repo.loadErr = errors.New("storage unavailable")

	list := svc.Activate(context.Background())
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestMenuServiceDish(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	added := addDish(t, svc, "Soup", domain.CategoryStarter)

	got := svc.Dish(ctx, added.ID)
	require.NotNil(t, got)
	assert.Equal(t, added, *got)

	assert.Nil(t, svc.Dish(ctx, "missing"))
}

func TestMenuServicePay(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	svc.UpdateDraft(owner.Draft{Name: "Steak", Description: "Grilled", Price: "180.5", Category: domain.CategoryMain})
	added, err := svc.Submit(ctx)
	require.NoError(t, err)

	receipt, ok := svc.Pay(ctx, added.ID)
	require.True(t, ok)
	assert.Equal(t, Receipt{
		DishID:  added.ID,
		Name:    "Steak",
		Amount:  "180.50",
		Message: "Payment of R180.50 processed!",
	}, receipt)

	_, ok = svc.Pay(ctx, "missing")
	assert.False(t, ok)
}

func TestMenuServiceSubmit_ValidationError(t *testing.T) {
	svc, _, _ := newTestService(t)

	svc.UpdateDraft(owner.Draft{Name: "Soup", Description: "Hot", Price: "free"})
	_, err := svc.Submit(context.Background())
	assert.ErrorIs(t, err, owner.ErrValidation)
	assert.NotErrorIs(t, err, ErrWriteFailed)
	assert.Empty(t, svc.OwnerState().Items)
}

func TestMenuServiceSubmit_WriteFailure(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.saveErr = errors.New("disk full")

	draft := owner.Draft{Name: "Soup", Description: "Hot", Price: "45"}
	svc.UpdateDraft(draft)
	_, err := svc.Submit(context.Background())
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.ErrorIs(t, err, repo.saveErr)

	view := svc.OwnerState()
	assert.Empty(t, view.Items)
	assert.Equal(t, draft, view.Draft)
}

func TestMenuServiceEditFlow(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	addDish(t, svc, "Soup", domain.CategoryStarter)

	view, err := svc.StartEdit(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, owner.Editing, view.State)
	require.NotNil(t, view.EditingIndex)
	assert.Equal(t, 0, *view.EditingIndex)

	d := view.Draft
	d.Price = "50"
	svc.UpdateDraft(d)
	_, err = svc.Submit(ctx)
	require.NoError(t, err)

	list := svc.Activate(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "50.00", list[0].Price)
	assert.Equal(t, owner.Composing, svc.OwnerState().State)
	assert.Nil(t, svc.OwnerState().EditingIndex)
}

func TestMenuServiceStartEdit_OutOfRange(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.StartEdit(context.Background(), 0)
	assert.ErrorIs(t, err, owner.ErrIndexOutOfRange)
}

func TestMenuServiceCancelAndNew(t *testing.T) {
	svc, _, _ := newTestService(t)
	addDish(t, svc, "Soup", domain.CategoryStarter)

	_, err := svc.StartEdit(context.Background(), 0)
	require.NoError(t, err)
	view := svc.CancelEdit(context.Background())
	assert.Equal(t, owner.Composing, view.State)
	assert.Empty(t, view.Draft.Name)

	svc.UpdateDraft(owner.Draft{Name: "half"})
	view = svc.NewDish(context.Background())
	assert.Empty(t, view.Draft.Name)
	assert.Equal(t, domain.CategoryStarter, view.Draft.Category)
}

func TestMenuServiceOwnerActivate_DropsEdit(t *testing.T) {
	svc, _, _ := newTestService(t)
	addDish(t, svc, "Soup", domain.CategoryStarter)
	_, err := svc.StartEdit(context.Background(), 0)
	require.NoError(t, err)

	view := svc.OwnerActivate(context.Background())
	assert.Equal(t, owner.Composing, view.State)
	assert.Len(t, view.Items, 1)
}

func TestMenuServiceDeleteDish_RemovesStoredPhoto(t *testing.T) {
	svc, _, photos := newTestService(t)
	ctx := context.Background()

	addDish(t, svc, "Soup", domain.CategoryStarter)

	uri, err := svc.AttachPhoto(ctx, []byte{0xFF, 0xD8}, "image/jpeg")
	require.NoError(t, err)
	d := svc.OwnerState().Draft
	d.Name, d.Description, d.Price = "Cake", "Chocolate", "20"
	svc.UpdateDraft(d)
	dish, err := svc.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, uri, dish.Image)

	key, ok := photostore.KeyFromURI(uri)
	require.True(t, ok)
	assert.Contains(t, photos.saved, key)

	removed, err := svc.DeleteDish(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Cake", removed.Name)
	assert.NotContains(t, photos.saved, key)
}

func TestMenuServiceAttachPhoto_ReplacesUnsavedPhoto(t *testing.T) {
	svc, _, photos := newTestService(t)
	ctx := context.Background()

	first, err := svc.AttachPhoto(ctx, []byte("one"), "image/jpeg")
	require.NoError(t, err)
	second, err := svc.AttachPhoto(ctx, []byte("two"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, second, svc.OwnerState().Draft.Image)
	firstKey, _ := photostore.KeyFromURI(first)
	assert.NotContains(t, photos.saved, firstKey)
	assert.Len(t, photos.saved, 1)
}

func TestMenuServiceAttachPhoto_KeepsPhotoOfSavedDish(t *testing.T) {
	svc, _, photos := newTestService(t)
	ctx := context.Background()

	uri, err := svc.AttachPhoto(ctx, []byte("one"), "image/jpeg")
	require.NoError(t, err)
	d := svc.OwnerState().Draft
	d.Name, d.Description, d.Price = "Cake", "Chocolate", "20"
	svc.UpdateDraft(d)
	_, err = svc.Submit(ctx)
	require.NoError(t, err)

	// Editing the dish and attaching a new photo must not delete the saved
	// photo until the edit is submitted.
	_, err = svc.StartEdit(ctx, 0)
	require.NoError(t, err)
	_, err = svc.AttachPhoto(ctx, []byte("two"), "image/jpeg")
	require.NoError(t, err)
	key, _ := photostore.KeyFromURI(uri)
	assert.Contains(t, photos.saved, key)

	_, err = svc.Submit(ctx)
	require.NoError(t, err)
	assert.NotContains(t, photos.saved, key)
	assert.Len(t, photos.saved, 1)
}

func TestMenuServiceAttachPhoto_SaveError(t *testing.T) {
	svc, _, photos := newTestService(t)
	photos.saveErr = errors.New("disk full")

	_, err := svc.AttachPhoto(context.Background(), []byte("x"), "image/jpeg")
	assert.Error(t, err)
	assert.Empty(t, svc.OwnerState().Draft.Image)
}

func TestMenuServiceDeleteDish_Errors(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.DeleteDish(ctx, 0)
	assert.ErrorIs(t, err, owner.ErrIndexOutOfRange)

	addDish(t, svc, "Soup", domain.CategoryStarter)
	repo.saveErr = errors.New("disk full")
	_, err = svc.DeleteDish(ctx, 0)
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.Len(t, svc.OwnerState().Items, 1)
}

func TestMenuServiceSharedPhotoSurvivesDeleteAndReimage(t *testing.T) {
	svc, _, photos := newTestService(t)
	ctx := context.Background()

	uri, err := svc.AttachPhoto(ctx, []byte("shared"), "image/png")
	require.NoError(t, err)
	svc.UpdateDraft(owner.Draft{Name: "Soup", Description: "Hot", Price: "10", Image: uri})
	_, err = svc.Submit(ctx)
	require.NoError(t, err)
	svc.UpdateDraft(owner.Draft{Name: "Bread", Description: "Warm", Price: "5", Image: uri})
	_, err = svc.Submit(ctx)
	require.NoError(t, err)
	svc.UpdateDraft(owner.Draft{Name: "Salad", Description: "Green", Price: "7", Image: uri})
	_, err = svc.Submit(ctx)
	require.NoError(t, err)
	key, _ := photostore.KeyFromURI(uri)

	_, err = svc.DeleteDish(ctx, 0)
	require.NoError(t, err)
	assert.Contains(t, photos.saved, key)

	// Re-imaging one of the remaining dishes keeps the photo for the other.
	_, err = svc.StartEdit(ctx, 0)
	require.NoError(t, err)
	d := svc.OwnerState().Draft
	d.Image = "https://example.com/bread.jpg"
	svc.UpdateDraft(d)
	_, err = svc.Submit(ctx)
	require.NoError(t, err)
	assert.Contains(t, photos.saved, key)

	_, err = svc.DeleteDish(ctx, 1)
	require.NoError(t, err)
	assert.NotContains(t, photos.saved, key)
}

func TestMenuServiceDiscardedDraftPhotoIsRemoved(t *testing.T) {
	tests := []struct {
		name    string
		discard func(ctx context.Context, svc *MenuService)
	}{
		{name: "cancel edit", discard: func(ctx context.Context, svc *MenuService) { svc.CancelEdit(ctx) }},
		{name: "new dish", discard: func(ctx context.Context, svc *MenuService) { svc.NewDish(ctx) }},
		{name: "owner refresh", discard: func(ctx context.Context, svc *MenuService) { svc.OwnerActivate(ctx) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, photos := newTestService(t)
			ctx := context.Background()

			saved, err := svc.AttachPhoto(ctx, []byte("saved"), "image/jpeg")
			require.NoError(t, err)
			svc.UpdateDraft(owner.Draft{Name: "Cake", Description: "Chocolate", Price: "20", Image: saved})
			_, err = svc.Submit(ctx)
			require.NoError(t, err)

			_, err = svc.StartEdit(ctx, 0)
			require.NoError(t, err)
			unsaved, err := svc.AttachPhoto(ctx, []byte("unsaved"), "image/jpeg")
			require.NoError(t, err)

			tt.discard(ctx, svc)

			savedKey, _ := photostore.KeyFromURI(saved)
			unsavedKey, _ := photostore.KeyFromURI(unsaved)
			assert.Contains(t, photos.saved, savedKey)
			assert.NotContains(t, photos.saved, unsavedKey)
			assert.Empty(t, svc.OwnerState().Draft.Image)
		})
	}
}

func TestMenuServiceOwnerActivate_LoadFailureKeepsPhotos(t *testing.T) {
	svc, repo, photos := newTestService(t)
	ctx := context.Background()

	uri, err := svc.AttachPhoto(ctx, []byte("saved"), "image/jpeg")
	require.NoError(t, err)
	svc.UpdateDraft(owner.Draft{Name: "Cake", Description: "Chocolate", Price: "20", Image: uri})
	_, err = svc.Submit(ctx)
	require.NoError(t, err)
	_, err = svc.StartEdit(ctx, 0)
	require.NoError(t, err)

	repo.loadErr = errors.New("storage unavailable")
	svc.OwnerActivate(ctx)

	key, _ := photostore.KeyFromURI(uri)
	assert.Contains(t, photos.saved, key)
}

func TestMenuServiceStartEdit_DropsUnsavedDraftPhoto(t *testing.T) {
	svc, _, photos := newTestService(t)
	ctx := context.Background()
	addDish(t, svc, "Soup", domain.CategoryStarter)

	uri, err := svc.AttachPhoto(ctx, []byte("draft"), "image/jpeg")
	require.NoError(t, err)
	_, err = svc.StartEdit(ctx, 0)
	require.NoError(t, err)

	key, _ := photostore.KeyFromURI(uri)
	assert.NotContains(t, photos.saved, key)
}
