package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/vbonduro/menuboard/internal/domain"
)

// DefaultMenuKey is the key the menu blob is stored under.
const DefaultMenuKey = "@menu_items_v1"

const menuSchemaVersion = 1

var (
	ErrCorruptMenu        = errors.New("stored menu is corrupt")
	ErrUnsupportedVersion = errors.New("stored menu has an unsupported schema version")
)

// blobStore is the subset of KVStore that MenuStore requires.
type blobStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MenuStore persists the whole menu as one JSON document under a single key.
// Every Save replaces the document; there are no partial updates.
type MenuStore struct {
	kv    blobStore
	key   string
	newID func() string

	// mu keeps at most one writer on the menu key.
	mu sync.Mutex
}

func NewMenuStore(kv blobStore, key string) *MenuStore {
	if key == "" {
		key = DefaultMenuKey
	}
	return &MenuStore{kv: kv, key: key, newID: uuid.NewString}
}

type menuEnvelope struct {
	Version int          `json:"version"`
	Items   []dishRecord `json:"items"`
}

type dishRecord struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       priceText `json:"price"`
	Category    string    `json:"category"`
	Image       *string   `json:"image"`
}

// priceText is written as a string. Older documents may carry a bare number,
// which is read back with two decimals.
type priceText string

func (p *priceText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*p = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = priceText(s)
		return nil
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("price must be a string or number: %w", err)
		}
		*p = priceText(strconv.FormatFloat(f, 'f', 2, 64))
		return nil
	}
}

// Load returns the stored menu. An absent key yields an empty list and no
// error. On failure the returned list is empty, never nil, so callers that
// choose to degrade can use it as is.
func (s *MenuStore) Load(ctx context.Context) (domain.MenuList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return domain.MenuList{}, fmt.Errorf("failed to read menu: %w", err)
	}
	if !ok || len(bytes.TrimSpace([]byte(raw))) == 0 {
		return domain.MenuList{}, nil
	}

	list, upgraded, err := s.decode([]byte(raw))
	if err != nil {
		return domain.MenuList{}, err
	}

	// Legacy documents get ids on first read; write them back so the ids
	// stay stable across loads.
	if upgraded {
		if err := s.write(ctx, list); err != nil {
			slog.Warn("failed to write back upgraded menu", "key", s.key, "error", err)
		}
	}

	return list, nil
}

// Save replaces the stored menu with list.
func (s *MenuStore) Save(ctx context.Context, list domain.MenuList) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx, list)
}

func (s *MenuStore) write(ctx context.Context, list domain.MenuList) error {
	records := make([]dishRecord, 0, len(list))
	for _, d := range list {
		rec := dishRecord{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Price:       priceText(d.Price),
			Category:    string(d.Category),
		}
		if d.Image != "" {
			img := d.Image
			rec.Image = &img
		}
		records = append(records, rec)
	}

	data, err := json.Marshal(menuEnvelope{Version: menuSchemaVersion, Items: records})
	if err != nil {
		return fmt.Errorf("failed to encode menu: %w", err)
	}

	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to save menu: %w", err)
	}
	return nil
}

// decode parses either the versioned envelope or the legacy bare array. Records
// without an id, or repeating an id already seen, are assigned a new one and
// upgraded reports that the document should be written back.
func (s *MenuStore) decode(raw []byte) (domain.MenuList, bool, error) {
	var records []dishRecord

	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrCorruptMenu, err)
		}
	case '{':
		var env menuEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrCorruptMenu, err)
		}
		if env.Version > menuSchemaVersion {
			return nil, false, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
		}
		if env.Version < 1 {
			return nil, false, fmt.Errorf("%w: missing schema version", ErrCorruptMenu)
		}
		records = env.Items
	default:
		if bytes.Equal(raw, []byte("null")) {
			return domain.MenuList{}, false, nil
		}
		return nil, false, fmt.Errorf("%w: unexpected document", ErrCorruptMenu)
	}

	upgraded := false
	seen := make(map[string]bool, len(records))
	list := make(domain.MenuList, 0, len(records))
	for _, rec := range records {
		d := domain.Dish{
			ID:          rec.ID,
			Name:        rec.Name,
			Description: rec.Description,
			Price:       string(rec.Price),
			Category:    domain.Category(rec.Category),
		}
		if rec.Image != nil {
			d.Image = *rec.Image
		}
		if d.ID == "" || seen[d.ID] {
			d.ID = s.newID()
			upgraded = true
		}
		seen[d.ID] = true
		list = append(list, d)
	}

	return list, upgraded, nil
}
