package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/pokedex-go/internal/config"
	"github.com/kapu/pokedex-go/internal/domain"
	"github.com/kapu/pokedex-go/internal/store"
)

func newPokeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pokemon/pikachu":
			w.Write([]byte(`{"name": "pikachu",
				"types": [{"slot": 1, "type": {"name": "electric"}}],
				"sprites": {"front_default": "url1"},
				"moves": [{"move": {"name": "thunder-shock", "url": "` + srv.URL + `/move/thunder-shock"},
					"version_group_details": [{"level_learned_at": 1, "move_learn_method": {"name": "level-up"}, "version_group": {"name": "red-blue"}}]}]}`))
		case "/move/thunder-shock":
			w.Write([]byte(`{"name": "thunder-shock", "type": {"name": "electric"}, "generation": {"name": "generation-i"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL, sqlitePath string) *config.Config {
	cfg := &config.Config{}
	cfg.PokeAPI.BaseURL = baseURL
	cfg.PokeAPI.Timeout = 2 * time.Second
	cfg.Lookup.Concurrency = 2
	cfg.Store.Engine = store.EngineSQLite
	cfg.Store.SQLitePath = sqlitePath
	return cfg
}

func TestContainerHandlesLookupAndHelp(t *testing.T) {
	api := newPokeAPI(t)
	var stdout, stderr bytes.Buffer

	container, err := Build(context.Background(), testConfig(api.URL, filepath.Join(t.TempDir(), "p.db")), zap.NewNop(), Output{Stdout: &stdout, Stderr: &stderr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	ctx := context.Background()
	require.NoError(t, container.Handle(ctx, "test", "pikachu"))

	var creature domain.Creature
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &creature))
	assert.Equal(t, "pikachu", creature.Name)
	assert.Equal(t, domain.TypeElectric, creature.PrimaryType)
	require.Len(t, creature.Moves, 1)
	assert.Equal(t, "level-up", creature.Moves[0].LearnMethod)

	stdout.Reset()
	require.NoError(t, container.Handle(ctx, "test", "lookup missingno"))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), `"missingno" was not found`)

	require.NoError(t, container.Handle(ctx, "test", "help"))
	assert.True(t, strings.HasPrefix(stdout.String(), "Usage:"))

	stdout.Reset()
	require.NoError(t, container.Handle(ctx, "test", "   "))
	assert.Empty(t, stdout.String())
}

func TestContainerBareLookupReportsMissingName(t *testing.T) {
	api := newPokeAPI(t)
	var stdout, stderr bytes.Buffer

	container, err := Build(context.Background(), testConfig(api.URL, filepath.Join(t.TempDir(), "p.db")), zap.NewNop(), Output{Stdout: &stdout, Stderr: &stderr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	require.NoError(t, container.Handle(context.Background(), "test", "lookup"))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "enter a creature name")
}

func TestContainerHandlesBatchInOrder(t *testing.T) {
	api := newPokeAPI(t)
	var stdout, stderr bytes.Buffer

	container, err := Build(context.Background(), testConfig(api.URL, filepath.Join(t.TempDir(), "p.db")), zap.NewNop(), Output{Stdout: &stdout, Stderr: &stderr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	require.NoError(t, container.Handle(context.Background(), "args", "lookup missingno", "", "lookup pikachu"))
	assert.Contains(t, stderr.String(), `"missingno" was not found`)
	assert.Contains(t, stdout.String(), `"name": "pikachu"`)
}

func TestContainerPersistsAcrossBuilds(t *testing.T) {
	api := newPokeAPI(t)
	path := filepath.Join(t.TempDir(), "p.db")

	first, err := Build(context.Background(), testConfig(api.URL, path), zap.NewNop(), Output{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)
	require.NoError(t, first.Handle(context.Background(), "test", "pikachu"))
	require.NoError(t, first.Close())

	// PokeAPI is gone; the second run answers from the file.
	api.Close()

	var stdout, stderr bytes.Buffer
	second, err := Build(context.Background(), testConfig(api.URL, path), zap.NewNop(), Output{Stdout: &stdout, Stderr: &stderr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	require.NoError(t, second.Handle(context.Background(), "test", "Pikachu"))
	assert.Empty(t, stderr.String())
	assert.Contains(t, stdout.String(), `"name": "pikachu"`)
}

func TestBuildRejectsUnknownEngine(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1", "")
	cfg.Store.Engine = "cassandra"

	_, err := Build(context.Background(), cfg, zap.NewNop(), Output{})
	require.Error(t, err)

	_, err = Build(context.Background(), nil, zap.NewNop(), Output{})
	require.Error(t, err)
}
