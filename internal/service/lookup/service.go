package lookup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/pokedex-go/internal/constants"
	"github.com/kapu/pokedex-go/internal/domain"
	"github.com/kapu/pokedex-go/internal/pokeapi"
	"github.com/kapu/pokedex-go/internal/store"
	"github.com/kapu/pokedex-go/internal/util"
	"github.com/kapu/pokedex-go/pkg/errors"
)

// CreatureKey is the store key of a cached Creature record.
func CreatureKey(name string) string {
	return constants.CacheKeys.CreaturePrefix + name
}

type Config struct {
	Concurrency int
	// CacheTTL of zero keeps records forever.
	CacheTTL time.Duration
	Now      func() time.Time
}

// Service resolves creatures from the persistent cache first and PokeAPI second.
type Service struct {
	store    store.Store
	fetcher  pokeapi.Fetcher
	catalog  *Catalog
	cacheTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(st store.Store, fetcher pokeapi.Fetcher, cfg Config, logger *zap.Logger) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store must not be nil")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		store:    st,
		fetcher:  fetcher,
		catalog:  NewCatalog(st, fetcher, cfg.Concurrency, logger),
		cacheTTL: cfg.CacheTTL,
		now:      cfg.Now,
		logger:   logger,
	}, nil
}

// Lookup returns the creature called name. A cached record is returned without
// any network call; otherwise the creature and its unseen moves are fetched,
// assembled and persisted. A failed lookup writes nothing.
func (s *Service) Lookup(ctx context.Context, name string) (*domain.Creature, error) {
	key := util.Normalize(name)
	if key == "" {
		return nil, errors.NewValidationError("creature name is required", "name", name)
	}

	if cached := s.loadCached(ctx, key); cached != nil {
		s.logger.Debug("Creature cache hit", zap.String("name", key))
		return cached, nil
	}

	raw, err := s.fetcher.FetchCreature(ctx, key)
	if err != nil {
		s.logger.Warn("Creature fetch failed", zap.String("name", key), zap.Error(err))
		return nil, err
	}

	refs := moveRefs(raw)
	details, fetched, err := s.catalog.Resolve(ctx, refs)
	if err != nil {
		s.logger.Warn("Move resolution failed",
			zap.String("name", key),
			zap.Int("moves", len(refs)),
			zap.Error(err),
		)
		return nil, err
	}

	creature := assemble(raw, details, s.now())
	if !creature.PrimaryType.IsKnown() {
		s.logger.Warn("Unknown creature type", zap.String("name", creature.Name), zap.String("type", creature.PrimaryType.String()))
	}

	s.persist(ctx, key, creature, fetched)

	s.logger.Info("Creature resolved from PokeAPI",
		zap.String("name", creature.Name),
		zap.Int("moves", len(creature.Moves)),
		zap.Int("moves_fetched", len(fetched)),
	)

	return creature, nil
}

func (s *Service) loadCached(ctx context.Context, key string) *domain.Creature {
	var creature domain.Creature
	ok, err := store.GetJSON(ctx, s.store, CreatureKey(key), &creature)
	if err != nil {
		s.logger.Warn("Creature cache read failed, treating as miss", zap.String("name", key), zap.Error(err))
		return nil
	}
	if !ok || creature.Name == "" {
		return nil
	}
	if creature.IsExpired(s.cacheTTL, s.now()) {
		s.logger.Debug("Creature cache entry expired", zap.String("name", key), zap.Time("cached_at", creature.CachedAt))
		return nil
	}

	creature.Moves = creature.OwnMoves()
	return &creature
}

// persist writes catalog entries, then the creature. Write failures are logged;
// the assembled creature is still valid for the caller.
func (s *Service) persist(ctx context.Context, key string, creature *domain.Creature, fetched []domain.MoveDetail) {
	if err := s.catalog.Save(ctx, fetched); err != nil {
		s.logger.Error("Failed to save move catalog entries", zap.String("name", key), zap.Error(err))
	}

	keys := util.Dedupe([]string{key, creature.Name})
	for _, k := range keys {
		if err := store.SetJSON(ctx, s.store, CreatureKey(k), creature); err != nil {
			s.logger.Error("Failed to cache creature", zap.String("key", CreatureKey(k)), zap.Error(err))
		}
	}
}

func moveRefs(raw *pokeapi.CreatureRaw) []MoveRef {
	seen := make(map[string]struct{}, len(raw.Moves))
	refs := make([]MoveRef, 0, len(raw.Moves))
	for _, ref := range raw.Moves {
		if _, ok := seen[ref.Move.Name]; ok {
			continue
		}
		seen[ref.Move.Name] = struct{}{}
		refs = append(refs, MoveRef{Name: ref.Move.Name, URL: ref.Move.URL})
	}
	return refs
}

// assemble keeps the API's move order and takes learn data from the first
// version-group detail of each move. A move listed twice keeps its first entry.
func assemble(raw *pokeapi.CreatureRaw, details map[string]domain.MoveDetail, now time.Time) *domain.Creature {
	name := util.Normalize(raw.Name)

	moves := make([]domain.Move, 0, len(raw.Moves))
	emitted := make(map[string]struct{}, len(raw.Moves))
	for _, ref := range raw.Moves {
		if _, dup := emitted[ref.Move.Name]; dup {
			continue
		}
		detail, ok := details[ref.Move.Name]
		if !ok {
			continue
		}
		emitted[ref.Move.Name] = struct{}{}
		first := ref.FirstDetail()
		moves = append(moves, domain.Move{
			Name:           detail.Name,
			Type:           detail.Type,
			Generation:     detail.Generation,
			LevelLearnedAt: first.LevelLearnedAt,
			LearnMethod:    first.MoveLearnMethod.Name,
			VersionGroup:   first.VersionGroup.Name,
			LearnedBy:      name,
		})
	}

	return &domain.Creature{
		Name:        name,
		PrimaryType: domain.CreatureType(raw.PrimaryType()),
		ImageRef:    raw.ImageRef(),
		Moves:       moves,
		CachedAt:    now.UTC(),
	}
}
