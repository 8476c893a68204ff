package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/rl1809/flash-item/internal/core/domain"
)

var errStoreDown = errors.New("store unavailable")

// Mock store serving both ItemRepository and InventoryRepository, like a single database.
type mockStore struct {
	mu        sync.Mutex
	items     map[string]domain.FlashItem
	saves     int
	findErr   error
	saveErr   error
	lastQuery domain.ItemQuery
}

func newMockStore(items ...domain.FlashItem) *mockStore {
	m := &mockStore{items: make(map[string]domain.FlashItem)}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

func (m *mockStore) FindByID(ctx context.Context, itemID string) (*domain.FlashItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}
	item, ok := m.items[itemID]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *mockStore) Save(ctx context.Context, item *domain.FlashItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	saved := *item
	if existing, ok := m.items[item.ID]; ok {
		saved.AvailableStock = existing.AvailableStock
	}
	m.items[item.ID] = saved
	return nil
}

func (m *mockStore) FindByCondition(ctx context.Context, query domain.ItemQuery) ([]domain.FlashItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}
	m.lastQuery = query
	out := m.matching(query)
	start := query.Offset()
	if start >= len(out) {
		return nil, nil
	}
	end := start + query.Limit()
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (m *mockStore) CountByCondition(ctx context.Context, query domain.ItemQuery) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return 0, m.findErr
	}
	return len(m.matching(query)), nil
}

func (m *mockStore) matching(query domain.ItemQuery) []domain.FlashItem {
	var out []domain.FlashItem
	for _, it := range m.items {
		if query.Status != "" && it.Status != query.Status {
			continue
		}
		if query.Keyword != "" && !strings.Contains(it.Title, query.Keyword) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockStore) DecreaseIfAvailable(ctx context.Context, itemID string, quantity int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[itemID]
	if !ok || item.AvailableStock < quantity {
		return false, nil
	}
	item.AvailableStock -= quantity
	m.items[itemID] = item
	return true, nil
}

func (m *mockStore) Increase(ctx context.Context, itemID string, quantity int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[itemID]
	if !ok {
		return false, nil
	}
	item.AvailableStock += quantity
	m.items[itemID] = item
	return true, nil
}

func (m *mockStore) stock(itemID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[itemID].AvailableStock
}

func (m *mockStore) status(itemID string) domain.ItemStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[itemID].Status
}

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.FlashItemEvent
	err    error
	// onPublish runs before the event is recorded
	onPublish func(domain.FlashItemEvent)
}

func (p *mockPublisher) Publish(ctx context.Context, event domain.FlashItemEvent) error {
	if p.onPublish != nil {
		p.onPublish(event)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *mockPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type mockWarmer struct {
	mu     sync.Mutex
	warmed map[string]int64
	err    error
}

func (w *mockWarmer) WarmStock(ctx context.Context, itemID string, quantity int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}
	if w.warmed == nil {
		w.warmed = make(map[string]int64)
	}
	if _, ok := w.warmed[itemID]; !ok {
		w.warmed[itemID] = quantity
	}
	return nil
}
