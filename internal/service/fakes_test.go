package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/airwave/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memKV is an in-memory domain.KeyValueStore
type memKV struct {
	mu     sync.Mutex
	data   map[string]string
	setErr error
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) Close() error { return nil }

// fakeDirectory serves canned stations
type fakeDirectory struct {
	mu        sync.Mutex
	byID      map[string]domain.Station
	pages     map[int][]domain.Station
	countries []string
	languages []string
	count     int

	searches []searchCall
	lookups  []string
	clicks   []string
	listHits int

	// block, when set, makes SearchStations wait until ctx ends
	block bool
}

type searchCall struct {
	filter   string
	kind     domain.FilterKind
	page     int
	pageSize int
}

func (f *fakeDirectory) SearchStations(ctx context.Context, filter string, kind domain.FilterKind, page, pageSize int) []domain.Station {
	f.mu.Lock()
	f.searches = append(f.searches, searchCall{filter, kind, page, pageSize})
	block := f.block
	res := f.pages[page]
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil
	}
	return res
}

func (f *fakeDirectory) StationByID(ctx context.Context, id string) (domain.Station, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, id)
	st, ok := f.byID[id]
	return st, ok
}

func (f *fakeDirectory) Countries(ctx context.Context) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listHits++
	return f.countries
}

func (f *fakeDirectory) Languages(ctx context.Context) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listHits++
	return f.languages
}

func (f *fakeDirectory) CountMatching(ctx context.Context, filter string, kind domain.FilterKind, limit int) int {
	return min(f.count, limit)
}

func (f *fakeDirectory) ReportClick(ctx context.Context, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks = append(f.clicks, id)
}

// fakeOutput records audio output calls
type fakeOutput struct {
	url     string
	playing bool
	level   float64
	calls   []string
}

func (o *fakeOutput) Load(url string) error {
	o.calls = append(o.calls, "load")
	o.url = url
	o.playing = false
	return nil
}

func (o *fakeOutput) Play() error {
	o.calls = append(o.calls, "play")
	o.playing = o.url != ""
	return nil
}

func (o *fakeOutput) Pause() error {
	o.calls = append(o.calls, "pause")
	o.playing = false
	return nil
}

func (o *fakeOutput) Reset() error {
	o.calls = append(o.calls, "reset")
	o.url = ""
	o.playing = false
	return nil
}

func (o *fakeOutput) SetVolume(level float64) error {
	o.level = level
	return nil
}

func (o *fakeOutput) Playing() bool { return o.playing }
func (o *fakeOutput) Loaded() bool  { return o.url != "" }
func (o *fakeOutput) Close() error  { return nil }

// fakeCache is an in-memory list cache
type fakeCache struct {
	items map[string][]string
	saves int
}

func (c *fakeCache) Get(name string, maxAge time.Duration) ([]string, bool) {
	v, ok := c.items[name]
	return v, ok
}

func (c *fakeCache) Save(name string, items []string) error {
	if c.items == nil {
		c.items = map[string][]string{}
	}
	c.items[name] = items
	c.saves++
	return nil
}
