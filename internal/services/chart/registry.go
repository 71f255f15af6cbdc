package chart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/interfaces"
	"github.com/bobmcallan/finote/internal/models"
)

// ErrSuperseded is returned by Replace when a newer build for the same chart id
// was started, or the chart was destroyed, before this build finished.
var ErrSuperseded = errors.New("chart build superseded")

// Registry implements ChartRegistry. Each chart id holds at most one handle,
// and the most recently started build for an id is the one that ends up installed.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*models.ChartHandle
	pending map[string]uint64 // sequence of the latest build started per id
	seq     uint64
	logger  *common.Logger
	now     func() time.Time
}

// NewRegistry creates an empty chart registry
func NewRegistry(logger *common.Logger) *Registry {
	return &Registry{
		handles: make(map[string]*models.ChartHandle),
		pending: make(map[string]uint64),
		logger:  logger,
		now:     time.Now,
	}
}

// Replace implements ChartRegistry.
func (r *Registry) Replace(ctx context.Context, id string, build interfaces.ChartBuildFunc) (*models.ChartHandle, error) {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.pending[id] = seq
	r.mu.Unlock()

	h, err := build(ctx)
	if err != nil {
		r.mu.Lock()
		if r.pending[id] == seq {
			delete(r.pending, id)
		}
		r.mu.Unlock()
		return nil, fmt.Errorf("build chart %s: %w", id, err)
	}

	h.ID = uuid.NewString()
	h.ChartID = id
	h.Sequence = seq
	if h.CreatedAt.IsZero() {
		h.CreatedAt = r.now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending[id] != seq {
		r.logger.Debug().Str("chart_id", id).Uint64("sequence", seq).Msg("Discarding superseded chart build")
		return nil, ErrSuperseded
	}
	delete(r.pending, id)

	if old, ok := r.handles[id]; ok {
		r.logger.Trace().Str("chart_id", id).Str("handle", old.ID).Msg("Destroying previous chart")
	}
	r.handles[id] = h
	return h, nil
}

// Get implements ChartRegistry.
func (r *Registry) Get(id string) (*models.ChartHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[id]
	return h, ok
}

// Destroy implements ChartRegistry. Builds still in flight for id are discarded.
func (r *Registry) Destroy(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
	_, ok := r.handles[id]
	delete(r.handles, id)
	return ok
}

// List implements ChartRegistry.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SeriesBuild returns a build that resolves req through svc and renders it.
func SeriesBuild(svc interfaces.SeriesService, req models.SeriesRequest, title string) interfaces.ChartBuildFunc {
	return func(ctx context.Context) (*models.ChartHandle, error) {
		resp, err := svc.Resolve(ctx, req)
		if err != nil {
			return nil, err
		}
		resolved := models.ResolvedSeries{Labels: resp.Labels, Values: resp.Values}
		png, err := RenderLineChart(title, resolved)
		if err != nil {
			return nil, err
		}
		req.Period = resp.Period
		req.RangeDays = resp.RangeDays
		req.Metric = resp.Metric
		return &models.ChartHandle{
			Request: req,
			Series:  resolved,
			PNG:     png,
		}, nil
	}
}
