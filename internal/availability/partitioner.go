package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/swiftcart-dev/swiftcart-backend/internal/catalog"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/logger"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/metrics"
)

const (
	defaultWorkers       = 4
	defaultLookupTimeout = 3 * time.Second
)

// ResolvedLine pairs a cart line with its catalog resolution and the stock
// figure the partition decision was made on. Degraded marks figures served
// from the cart line's cached hint instead of a live read.
type ResolvedLine struct {
	Line         *models.CartLine
	Resolution   catalog.Resolution
	AvailableQty int
	Degraded     bool
}

// InStock reports whether the observed quantity covers the requested one.
func (l ResolvedLine) InStock() bool {
	return l.AvailableQty >= l.Line.Quantity
}

// Partitioner splits cart lines into fulfillable and backorderable sets.
type Partitioner struct {
	resolver      *catalog.Resolver
	catalog       catalog.Catalog
	workers       int
	lookupTimeout time.Duration
	logg          *logger.Logger
	met           *metrics.CheckoutMetrics
}

// Options tunes the partition worker pool. Zero values fall back to defaults.
type Options struct {
	Workers       int
	LookupTimeout time.Duration
}

// NewPartitioner constructs a partitioner over the catalog port.
func NewPartitioner(resolver *catalog.Resolver, cat catalog.Catalog, opts Options, logg *logger.Logger, met *metrics.CheckoutMetrics) (*Partitioner, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	timeout := opts.LookupTimeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}

	return &Partitioner{
		resolver:      resolver,
		catalog:       cat,
		workers:       workers,
		lookupTimeout: timeout,
		logg:          logg,
		met:           met,
	}, nil
}

// Partition evaluates every line concurrently and returns a disjoint cover of
// the input in input order. It never drops a line and never returns an error:
// lookup failures degrade to the cached stock hint, and a missing hint sends
// the line to the out-of-stock side.
func (p *Partitioner) Partition(ctx context.Context, lines []models.CartLine) (inStock, outOfStock []ResolvedLine) {
	started := time.Now()
	defer func() {
		p.met.ObservePartition(time.Since(started))
	}()

	if len(lines) == 0 {
		return nil, nil
	}

	results := make([]ResolvedLine, len(lines))
	jobs := make(chan int)

	workers := p.workers
	if workers > len(lines) {
		workers = len(lines)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = p.evaluate(ctx, &lines[idx])
			}
		}()
	}

	for idx := range lines {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	for _, result := range results {
		if result.InStock() {
			inStock = append(inStock, result)
		} else {
			outOfStock = append(outOfStock, result)
		}
	}
	return inStock, outOfStock
}

func (p *Partitioner) evaluate(ctx context.Context, line *models.CartLine) ResolvedLine {
	lookupCtx, cancel := context.WithTimeout(ctx, p.lookupTimeout)
	defer cancel()

	resolution := p.resolver.Resolve(lookupCtx, line)
	if !resolution.Resolved() {
		return p.degrade(ctx, line, resolution, "catalog resolution exhausted")
	}

	qty, err := p.liveStock(lookupCtx, resolution)
	if err != nil {
		return p.degrade(ctx, line, resolution, err.Error())
	}

	return ResolvedLine{Line: line, Resolution: resolution, AvailableQty: qty}
}

// liveStock prefers the variant-level count when a variant resolved.
func (p *Partitioner) liveStock(ctx context.Context, resolution catalog.Resolution) (int, error) {
	if resolution.Variant != nil {
		return p.catalog.VariantStock(ctx, resolution.Variant.ID)
	}
	return p.catalog.ProductStock(ctx, resolution.Product.ID)
}

// degrade falls back to the stock figure the client saw when the line was
// added. No hint means the line cannot be proven fulfillable.
func (p *Partitioner) degrade(ctx context.Context, line *models.CartLine, resolution catalog.Resolution, cause string) ResolvedLine {
	logCtx := p.logg.WithFields(ctx, map[string]any{
		"cart_line_id": line.ID.String(),
		"ref":          line.RawProductRef,
		"cause":        cause,
	})

	if line.CachedStockQty != nil {
		p.logg.Warn(logCtx, "availability degraded to cached stock hint")
		return ResolvedLine{Line: line, Resolution: resolution, AvailableQty: *line.CachedStockQty, Degraded: true}
	}

	p.logg.Warn(logCtx, "availability unknown and no cached hint, treating as out of stock")
	return ResolvedLine{Line: line, Resolution: resolution, AvailableQty: 0, Degraded: true}
}
