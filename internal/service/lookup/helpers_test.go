package lookup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/pokedex-go/internal/pokeapi"
	"github.com/kapu/pokedex-go/internal/store"
)

type moveSpec struct {
	name   string
	level  int
	method string
	group  string
}

// fakeAPI is an in-process PokeAPI serving /pokemon/{name} and /move/{name}.
type fakeAPI struct {
	srv *httptest.Server

	mu        sync.Mutex
	creatures map[string]pokeapi.CreatureRaw
	moves     map[string]pokeapi.MoveRaw
	status    map[string]int
	hits      map[string]int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{
		creatures: make(map[string]pokeapi.CreatureRaw),
		moves:     make(map[string]pokeapi.MoveRaw),
		status:    make(map[string]int),
		hits:      make(map[string]int),
	}
	api.srv = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.srv.Close)
	return api
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	status, forced := f.status[r.URL.Path]
	var body any
	found := false
	switch {
	case strings.HasPrefix(r.URL.Path, "/pokemon/"):
		body, found = f.creatures[strings.TrimPrefix(r.URL.Path, "/pokemon/")]
	case strings.HasPrefix(r.URL.Path, "/move/"):
		body, found = f.moves[strings.TrimPrefix(r.URL.Path, "/move/")]
	}
	f.mu.Unlock()

	if forced {
		w.WriteHeader(status)
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeAPI) addCreature(name, typ, sprite string, moves ...moveSpec) {
	raw := pokeapi.CreatureRaw{
		Name:  name,
		Types: []pokeapi.TypeSlotRaw{{Slot: 1, Type: pokeapi.NamedResource{Name: typ}}},
	}
	if sprite != "" {
		s := sprite
		raw.Sprites.FrontDefault = &s
	}
	for _, m := range moves {
		raw.Moves = append(raw.Moves, pokeapi.MoveRefRaw{
			Move: pokeapi.NamedResource{Name: m.name, URL: f.srv.URL + "/move/" + m.name},
			VersionGroupDetails: []pokeapi.VersionGroupDetailRaw{{
				LevelLearnedAt:  m.level,
				MoveLearnMethod: pokeapi.NamedResource{Name: m.method},
				VersionGroup:    pokeapi.NamedResource{Name: m.group},
			}},
		})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.creatures[name] = raw
}

func (f *fakeAPI) addMove(name, typ, generation string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves[name] = pokeapi.MoveRaw{
		Name:       name,
		Type:       pokeapi.NamedResource{Name: typ},
		Generation: pokeapi.NamedResource{Name: generation},
	}
}

func (f *fakeAPI) failPath(path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[path] = status
}

func (f *fakeAPI) hitsFor(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeAPI) totalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.hits {
		total += n
	}
	return total
}

func (f *fakeAPI) client() *pokeapi.Client {
	return pokeapi.NewClient(pokeapi.ClientConfig{
		BaseURL:        f.srv.URL,
		Timeout:        2 * time.Second,
		MaxRetries:     0,
		RetryBaseDelay: time.Millisecond,
	}, zap.NewNop())
}

// seedPikachu registers the pikachu example and its moves.
func (f *fakeAPI) seedPikachu() {
	f.addCreature("pikachu", "electric", "url1",
		moveSpec{name: "thunder-shock", level: 1, method: "level-up", group: "red-blue"},
		moveSpec{name: "quick-attack", level: 6, method: "level-up", group: "red-blue"},
	)
	f.addMove("thunder-shock", "electric", "generation-i")
	f.addMove("quick-attack", "normal", "generation-i")
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, st store.Store, fetcher pokeapi.Fetcher, cfg Config) *Service {
	t.Helper()
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return fixedNow }
	}
	svc, err := NewService(st, fetcher, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

// failingStore rejects every write.
type failingStore struct {
	*store.MemoryStore
}

func (failingStore) Set(context.Context, string, string) error {
	return context.DeadlineExceeded
}
