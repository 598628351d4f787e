package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/logger"
)

// ResolutionMethod names the strategy that produced a resolution.
type ResolutionMethod string

const (
	MethodID         ResolutionMethod = "id"
	MethodEmbeddedID ResolutionMethod = "embedded_id"
	MethodSKU        ResolutionMethod = "sku"
	MethodName       ResolutionMethod = "name"
	MethodNone       ResolutionMethod = "none"
)

// Resolution is the outcome of mapping one cart line back to the catalog.
// Product is nil when every strategy was exhausted; Variant is nil when the
// product has no variants or no variant matched the hints.
type Resolution struct {
	Product *models.Product
	Variant *models.ProductVariant
	Method  ResolutionMethod
}

// Resolved reports whether a catalog product was found.
func (r Resolution) Resolved() bool {
	return r.Product != nil
}

var embeddedUUIDRe = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// Resolver maps raw cart line references back to catalog products. It never
// returns an error: lookup failures advance the strategy chain and exhaustion
// yields an unresolved Resolution.
type Resolver struct {
	catalog Catalog
	logg    *logger.Logger
}

// NewResolver constructs a resolver over the catalog port.
func NewResolver(catalog Catalog, logg *logger.Logger) (*Resolver, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Resolver{catalog: catalog, logg: logg}, nil
}

// Resolve runs the ordered strategy chain for one cart line:
// full-ref UUID, embedded UUID, exact SKU, then name substring.
func (r *Resolver) Resolve(ctx context.Context, line *models.CartLine) Resolution {
	ref := strings.TrimSpace(line.RawProductRef)
	if ref == "" {
		return Resolution{Method: MethodNone}
	}

	if id, err := uuid.Parse(ref); err == nil {
		if product, err := r.catalog.FindByID(ctx, id); err == nil {
			return r.found(product, line, MethodID)
		} else {
			r.debugMiss(ctx, ref, MethodID, err)
		}
	}

	if match := embeddedUUIDRe.FindString(ref); match != "" && !strings.EqualFold(match, ref) {
		if id, err := uuid.Parse(match); err == nil {
			if product, err := r.catalog.FindByID(ctx, id); err == nil {
				return r.found(product, line, MethodEmbeddedID)
			} else {
				r.debugMiss(ctx, ref, MethodEmbeddedID, err)
			}
		}
	}

	if product, err := r.catalog.FindBySKU(ctx, ref); err == nil {
		return r.found(product, line, MethodSKU)
	} else {
		r.debugMiss(ctx, ref, MethodSKU, err)
	}

	if product, err := r.catalog.SearchByName(ctx, ref); err == nil {
		return r.found(product, line, MethodName)
	} else {
		r.debugMiss(ctx, ref, MethodName, err)
	}

	return Resolution{Method: MethodNone}
}

func (r *Resolver) found(product *models.Product, line *models.CartLine, method ResolutionMethod) Resolution {
	return Resolution{
		Product: product,
		Variant: matchVariant(product, line.SizeHint, line.ColorHint),
		Method:  method,
	}
}

func (r *Resolver) debugMiss(ctx context.Context, ref string, method ResolutionMethod, err error) {
	ctx = r.logg.WithFields(ctx, map[string]any{
		"ref":    ref,
		"method": string(method),
		"cause":  err.Error(),
	})
	r.logg.Debug(ctx, "catalog resolution strategy missed")
}

// matchVariant picks the variant matching the normalized size/color hints.
// A nil or empty hint matches any label. When hints are set but nothing
// matches, the first variant wins; the raw hints still travel with the line.
func matchVariant(product *models.Product, sizeHint, colorHint *string) *models.ProductVariant {
	if product == nil || len(product.Variants) == 0 {
		return nil
	}

	size := normalizeHint(sizeHint)
	color := normalizeHint(colorHint)

	for i := range product.Variants {
		v := &product.Variants[i]
		if size != "" && normalizeLabel(v.SizeLabel) != size {
			continue
		}
		if color != "" && normalizeLabel(v.ColorLabel) != color {
			continue
		}
		return v
	}

	for i := range product.Variants {
		if product.Variants[i].ID != uuid.Nil {
			return &product.Variants[i]
		}
	}
	return nil
}

func normalizeHint(hint *string) string {
	if hint == nil {
		return ""
	}
	return normalizeLabel(*hint)
}

// Labels and hints compare under the same normalization so stored
// whitespace never blocks a match.
func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
