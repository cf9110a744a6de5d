package lookup

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kapu/pokedex-go/internal/constants"
	"github.com/kapu/pokedex-go/internal/domain"
	"github.com/kapu/pokedex-go/internal/pokeapi"
	"github.com/kapu/pokedex-go/internal/store"
	"github.com/kapu/pokedex-go/internal/util"
)

// MoveRef names a move and where to fetch its detail.
type MoveRef struct {
	Name string
	URL  string
}

// MoveKey is the store key of a MoveCatalog entry.
func MoveKey(name string) string {
	return constants.CacheKeys.MovePrefix + name
}

// Catalog is the MoveCatalog: move details shared by every creature, stored
// one key per move.
type Catalog struct {
	store       store.Store
	fetcher     pokeapi.Fetcher
	concurrency int
	inflight    singleflight.Group
	logger      *zap.Logger
}

func NewCatalog(st store.Store, fetcher pokeapi.Fetcher, concurrency int, logger *zap.Logger) *Catalog {
	if concurrency < constants.LookupConfig.MinConcurrency {
		concurrency = constants.LookupConfig.DefaultConcurrency
	}
	concurrency = util.Clamp(concurrency, constants.LookupConfig.MinConcurrency, constants.LookupConfig.MaxConcurrency)
	return &Catalog{
		store:       st,
		fetcher:     fetcher,
		concurrency: concurrency,
		logger:      logger,
	}
}

// sharedFetchTimeout bounds a detached move fetch: every attempt of the
// retry budget at the per-request timeout.
var sharedFetchTimeout = constants.APIConfig.RequestTimeout * time.Duration(constants.RetryConfig.MaxAttempts+1)

type resolvedMove struct {
	detail  domain.MoveDetail
	fetched bool
}

// Resolve returns the detail of every ref, keyed by move name. Misses are
// fetched through a bounded pool; the first failure cancels the rest and
// fails the whole call. Fetched entries are returned separately and are not
// written until the caller calls Save.
func (c *Catalog) Resolve(ctx context.Context, refs []MoveRef) (map[string]domain.MoveDetail, []domain.MoveDetail, error) {
	results := make([]resolvedMove, len(refs))

	p := pool.New().
		WithMaxGoroutines(c.concurrency).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for idx, ref := range refs {
		idx, ref := idx, ref
		p.Go(func(ctx context.Context) error {
			result, err := c.resolveOne(ctx, ref)
			if err != nil {
				return err
			}
			results[idx] = result
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, nil, err
	}

	details := make(map[string]domain.MoveDetail, len(refs))
	fetched := make([]domain.MoveDetail, 0)
	for _, result := range results {
		details[result.detail.Name] = result.detail
		if result.fetched {
			fetched = append(fetched, result.detail)
		}
	}

	return details, fetched, nil
}

func (c *Catalog) resolveOne(ctx context.Context, ref MoveRef) (resolvedMove, error) {
	if err := ctx.Err(); err != nil {
		return resolvedMove{}, err
	}

	var cached domain.MoveDetail
	ok, err := store.GetJSON(ctx, c.store, MoveKey(ref.Name), &cached)
	if err != nil {
		c.logger.Warn("Move catalog read failed, refetching",
			zap.String("move", ref.Name),
			zap.Error(err),
		)
	}
	if ok && cached.Name == ref.Name {
		return resolvedMove{detail: cached}, nil
	}

	// One request per move across concurrent lookups. The request is detached
	// from any single caller, so a caller that gives up only stops waiting.
	ch := c.inflight.DoChan(ref.Name, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		raw, err := c.fetcher.FetchMove(fetchCtx, ref.Name, ref.URL)
		if err != nil {
			return domain.MoveDetail{}, err
		}
		return domain.MoveDetail{
			Name:       ref.Name,
			Type:       domain.CreatureType(raw.Type.Name),
			Generation: raw.Generation.Name,
		}, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return resolvedMove{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return resolvedMove{}, res.Err
	}
	if res.Shared {
		c.logger.Debug("Move fetch shared with concurrent lookup", zap.String("move", ref.Name))
	}

	return resolvedMove{detail: res.Val.(domain.MoveDetail), fetched: true}, nil
}

// Save writes catalog entries. Entries are immutable so overwrites are harmless.
func (c *Catalog) Save(ctx context.Context, details []domain.MoveDetail) error {
	var errs []error
	for _, detail := range details {
		if err := store.SetJSON(ctx, c.store, MoveKey(detail.Name), detail); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
