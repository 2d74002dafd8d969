package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/fxboard/pkg/log"
	"github.com/cuemby/fxboard/pkg/metrics"
	"github.com/cuemby/fxboard/pkg/types"
	"github.com/cuemby/fxboard/pkg/validation"
)

// StorageItemsKey is the medium key holding the saved board collection
const StorageItemsKey = "pedalboards"

const (
	defaultOpTimeout = 5 * time.Second
	errPrefix        = "an error occurred in board store"
)

var errInvalidRecord = errors.New("board record failed validation")

// BoardStore owns the saved board collection. No error crosses its boundary:
// every failure is logged and turned into an empty list or false. Callers
// cannot tell "no boards" from "unreadable boards" and should not try.
//
// BoardStore assumes a single logical writer.
type BoardStore struct {
	medium    Medium
	opTimeout time.Duration
	logger    zerolog.Logger
}

// NewBoardStore returns a store over medium
func NewBoardStore(medium Medium) *BoardStore {
	return &BoardStore{
		medium:    medium,
		opTimeout: defaultOpTimeout,
		logger:    log.WithComponent("store"),
	}
}

// GetItems returns every saved board, or an empty slice when the collection is
// missing or fails validation.
func (s *BoardStore) GetItems() []types.SavedBoard {
	items, err := s.load()
	if err != nil {
		s.fail("get", err)
		return []types.SavedBoard{}
	}
	s.ok("get")
	metrics.StoredBoards.Set(float64(len(items)))
	return items
}

// GetItem returns the saved board with the given name
func (s *BoardStore) GetItem(name string) (types.SavedBoard, bool) {
	for _, item := range s.GetItems() {
		if item.Name == name {
			return item, true
		}
	}
	return types.SavedBoard{}, false
}

// SetItem upserts item by name. An existing board with the same name is
// replaced at its position, otherwise item is appended. It reports whether the
// collection was written.
func (s *BoardStore) SetItem(item types.SavedBoard) bool {
	doc, err := json.Marshal(item)
	if err != nil {
		s.fail("set", fmt.Errorf("failed to encode board %q: %w", item.Name, err))
		return false
	}
	if err := validation.CheckItem(doc); err != nil {
		s.fail("set", fmt.Errorf("%w: board %q: %v", errInvalidRecord, item.Name, err))
		return false
	}

	items, err := s.load()
	if err != nil {
		s.fail("set", err)
		return false
	}

	replaced := false
	for i := range items {
		if items[i].Name == item.Name {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}

	data, err := json.Marshal(items)
	if err != nil {
		s.fail("set", fmt.Errorf("failed to encode collection: %w", err))
		return false
	}

	ctx, cancel := s.context()
	defer cancel()
	if err := s.medium.Set(ctx, StorageItemsKey, data); err != nil {
		s.fail("set", err)
		return false
	}

	s.ok("set")
	metrics.StoredBoards.Set(float64(len(items)))
	s.logger.Debug().
		Str("name", item.Name).
		Bool("replaced", replaced).
		Int("count", len(items)).
		Msg("Saved board")
	return true
}

// ClearItems removes the whole collection and reports whether it succeeded
func (s *BoardStore) ClearItems() bool {
	ctx, cancel := s.context()
	defer cancel()
	if err := s.medium.Delete(ctx, StorageItemsKey); err != nil {
		s.fail("clear", err)
		return false
	}
	s.ok("clear")
	metrics.StoredBoards.Set(0)
	return true
}

// load reads and validates the collection. A missing key is an empty
// collection, not an error.
func (s *BoardStore) load() ([]types.SavedBoard, error) {
	ctx, cancel := s.context()
	defer cancel()

	raw, err := s.medium.Get(ctx, StorageItemsKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []types.SavedBoard{}, nil
	}

	if err := validation.CheckItems(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRecord, err)
	}

	items := []types.SavedBoard{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	return items, nil
}

func (s *BoardStore) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.opTimeout)
}

func (s *BoardStore) ok(op string) {
	metrics.StoreOperationsTotal.WithLabelValues(op, "ok").Inc()
	metrics.UpdateComponent(metrics.ComponentStore, true, "")
}

func (s *BoardStore) fail(op string, err error) {
	metrics.StoreOperationsTotal.WithLabelValues(op, "error").Inc()
	// a bad record is not a sick medium
	if !errors.Is(err, errInvalidRecord) {
		metrics.UpdateComponent(metrics.ComponentStore, false, err.Error())
	}
	s.logger.Error().Err(err).Str("operation", op).Msg(errPrefix)
}
