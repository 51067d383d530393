package memory

import (
	"time"

	"ai-botbuilder-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type RunStateRepository struct {
	cache *cache.Cache
}

func NewRunStateRepository() *RunStateRepository {
	// Runs are short-lived; an hour covers even a many-round repair loop,
	// and the sweeper clears anything a crash left behind.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &RunStateRepository{
		cache: c,
	}
}

func (r *RunStateRepository) Save(state *store.RunState) {
	r.cache.Set(state.ID, state, cache.DefaultExpiration)
}

func (r *RunStateRepository) Get(runID string) (*store.RunState, bool) {
	if x, found := r.cache.Get(runID); found {
		return x.(*store.RunState), true
	}
	return nil, false
}

func (r *RunStateRepository) Delete(runID string) {
	r.cache.Delete(runID)
}
