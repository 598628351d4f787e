package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/logger"
)

type stubCatalog struct {
	byID   map[uuid.UUID]*models.Product
	bySKU  map[string]*models.Product
	byName map[string]*models.Product
	idErr  error
}

var errStubNotFound = errors.New("not found")

func (s *stubCatalog) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if s.idErr != nil {
		return nil, s.idErr
	}
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, errStubNotFound
}

func (s *stubCatalog) FindBySKU(_ context.Context, sku string) (*models.Product, error) {
	if p, ok := s.bySKU[sku]; ok {
		return p, nil
	}
	return nil, errStubNotFound
}

func (s *stubCatalog) SearchByName(_ context.Context, fragment string) (*models.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	for name, p := range s.byName {
		if strings.Contains(strings.ToLower(name), needle) {
			return p, nil
		}
	}
	return nil, errStubNotFound
}

func (s *stubCatalog) ProductStock(context.Context, uuid.UUID) (int, error)  { return 0, nil }
func (s *stubCatalog) VariantStock(context.Context, uuid.UUID) (int, error) { return 0, nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestResolver(t *testing.T, cat Catalog) *Resolver {
	t.Helper()
	resolver, err := NewResolver(cat, testLogger())
	require.NoError(t, err)
	return resolver
}

func strPtr(s string) *string { return &s }

func TestResolveFullRefUUID(t *testing.T) {
	product := &models.Product{ID: uuid.New(), SKU: "SKU-1", Name: "Runner"}
	cat := &stubCatalog{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	resolver := newTestResolver(t, cat)

	res := resolver.Resolve(context.Background(), &models.CartLine{RawProductRef: product.ID.String()})

	require.True(t, res.Resolved())
	assert.Equal(t, MethodID, res.Method)
	assert.Equal(t, product.ID, res.Product.ID)
}

func TestResolveEmbeddedUUIDInCompositeRef(t *testing.T) {
	product := &models.Product{ID: uuid.New(), SKU: "SKU-2", Name: "Slide"}
	cat := &stubCatalog{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	resolver := newTestResolver(t, cat)

	ref := "v2:" + product.ID.String() + ":size-M"
	res := resolver.Resolve(context.Background(), &models.CartLine{RawProductRef: ref})

	require.True(t, res.Resolved())
	assert.Equal(t, MethodEmbeddedID, res.Method)
	assert.Equal(t, product.ID, res.Product.ID)
}

func TestResolveFallsThroughToSKU(t *testing.T) {
	product := &models.Product{ID: uuid.New(), SKU: "HDY-BLK-M", Name: "Hoodie"}
	cat := &stubCatalog{bySKU: map[string]*models.Product{"HDY-BLK-M": product}}
	resolver := newTestResolver(t, cat)

	res := resolver.Resolve(context.Background(), &models.CartLine{RawProductRef: "HDY-BLK-M"})

	require.True(t, res.Resolved())
	assert.Equal(t, MethodSKU, res.Method)
}

func TestResolveFallsThroughToNameSearch(t *testing.T) {
	product := &models.Product{ID: uuid.New(), SKU: "SKU-3", Name: "Oversized Hoodie"}
	cat := &stubCatalog{byName: map[string]*models.Product{"Oversized Hoodie": product}}
	resolver := newTestResolver(t, cat)

	res := resolver.Resolve(context.Background(), &models.CartLine{RawProductRef: "hoodie"})

	require.True(t, res.Resolved())
	assert.Equal(t, MethodName, res.Method)
}

func TestResolveLookupErrorAdvancesChain(t *testing.T) {
	// id lookups fail hard, SKU strategy still gets its turn
	id := uuid.New()
	product := &models.Product{ID: uuid.New(), SKU: id.String(), Name: "Odd SKU"}
	cat := &stubCatalog{
		idErr: errors.New("catalog timeout"),
		bySKU: map[string]*models.Product{id.String(): product},
	}
	resolver := newTestResolver(t, cat)

	res := resolver.Resolve(context.Background(), &models.CartLine{RawProductRef: id.String()})

	require.True(t, res.Resolved())
	assert.Equal(t, MethodSKU, res.Method)
}

func TestResolveExhaustedReturnsUnresolved(t *testing.T) {
	resolver := newTestResolver(t, &stubCatalog{})

	res := resolver.Resolve(context.Background(), &models.CartLine{RawProductRef: "nothing matches"})

	assert.False(t, res.Resolved())
	assert.Nil(t, res.Variant)
	assert.Equal(t, MethodNone, res.Method)
}

func TestResolveEmptyRefShortCircuits(t *testing.T) {
	resolver := newTestResolver(t, &stubCatalog{})

	res := resolver.Resolve(context.Background(), &models.CartLine{RawProductRef: "   "})

	assert.False(t, res.Resolved())
	assert.Equal(t, MethodNone, res.Method)
}

func TestVariantMatchesNormalizedHints(t *testing.T) {
	product := &models.Product{
		ID:   uuid.New(),
		SKU:  "SKU-4",
		Name: "Varsity Jacket",
		Variants: []models.ProductVariant{
			{ID: uuid.New(), SizeLabel: "M", ColorLabel: "navy"},
			{ID: uuid.New(), SizeLabel: "L", ColorLabel: "navy"},
		},
	}
	cat := &stubCatalog{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	resolver := newTestResolver(t, cat)

	res := resolver.Resolve(context.Background(), &models.CartLine{
		RawProductRef: product.ID.String(),
		SizeHint:      strPtr(" l "),
		ColorHint:     strPtr("NAVY"),
	})

	require.True(t, res.Resolved())
	require.NotNil(t, res.Variant)
	assert.Equal(t, "L", res.Variant.SizeLabel)
}

func TestVariantLabelWhitespaceStillMatchesHint(t *testing.T) {
	product := &models.Product{
		ID:   uuid.New(),
		SKU:  "SKU-6",
		Name: "Varsity Jacket",
		Variants: []models.ProductVariant{
			{ID: uuid.New(), SizeLabel: "M ", ColorLabel: " Navy"},
			{ID: uuid.New(), SizeLabel: " L ", ColorLabel: " Navy"},
		},
	}
	cat := &stubCatalog{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	resolver := newTestResolver(t, cat)

	res := resolver.Resolve(context.Background(), &models.CartLine{
		RawProductRef: product.ID.String(),
		SizeHint:      strPtr("l"),
		ColorHint:     strPtr("navy"),
	})

	require.True(t, res.Resolved())
	require.NotNil(t, res.Variant)
	assert.Equal(t, " L ", res.Variant.SizeLabel)
}

func TestVariantHintMissFallsBackToFirstVariant(t *testing.T) {
	product := &models.Product{
		ID:   uuid.New(),
		SKU:  "SKU-5",
		Name: "Varsity Jacket",
		Variants: []models.ProductVariant{
			{ID: uuid.New(), SizeLabel: "M", ColorLabel: "navy"},
			{ID: uuid.New(), SizeLabel: "L", ColorLabel: "navy"},
		},
	}
	cat := &stubCatalog{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	resolver := newTestResolver(t, cat)

	res := resolver.Resolve(context.Background(), &models.CartLine{
		RawProductRef: product.ID.String(),
		SizeHint:      strPtr("XXL"),
	})

	require.True(t, res.Resolved())
	require.NotNil(t, res.Variant)
	assert.Equal(t, "M", res.Variant.SizeLabel)
}

func TestVariantNilWhenProductHasNone(t *testing.T) {
	product := &models.Product{ID: uuid.New(), SKU: "SKU-6", Name: "Plain Tee"}
	cat := &stubCatalog{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	resolver := newTestResolver(t, cat)

	res := resolver.Resolve(context.Background(), &models.CartLine{
		RawProductRef: product.ID.String(),
		SizeHint:      strPtr("M"),
	})

	require.True(t, res.Resolved())
	assert.Nil(t, res.Variant)
}
