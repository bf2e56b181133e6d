package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/azizikri/yeoubi-storefront/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	productsKeyPrefix = "catalog:products:"
	sectionsKey       = "catalog:sections"
)

type CatalogService struct {
	store repository.CatalogStore
	cache Cache
	ttl   time.Duration
	sfg   singleflight.Group
}

func NewCatalogService(store repository.CatalogStore, cache Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{store: store, cache: cache, ttl: ttl}
}

// ListProducts returns active products newest first, optionally limited to
// one section.
func (s *CatalogService) ListProducts(ctx context.Context, sectionID string) ([]domain.Product, error) {
	key := productsKeyPrefix + "all"
	params := repository.ListProductsParams{ActiveOnly: true}
	if sectionID != "" {
		key = productsKeyPrefix + "section:" + sectionID
		params.SectionID = &sectionID
	}

	var products []domain.Product
	err := s.cached(ctx, key, &products, func() (any, error) {
		return s.store.ListProducts(ctx, params)
	})
	return products, err
}

func (s *CatalogService) ListAllProducts(ctx context.Context) ([]domain.Product, error) {
	return s.store.ListProducts(ctx, repository.ListProductsParams{})
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *CatalogService) ListSections(ctx context.Context) ([]domain.Section, error) {
	var sections []domain.Section
	err := s.cached(ctx, sectionsKey, &sections, func() (any, error) {
		return s.store.ListSections(ctx)
	})
	return sections, err
}

type ProductInput struct {
	Name          string              `json:"name"`
	Description   *string             `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"original_price"`
	ImageURL      *string             `json:"image_url"`
	Images        []string            `json:"images"`
	Sizes         []string            `json:"sizes"`
	Category      *string             `json:"category"`
	SectionID     *string             `json:"section_id"`
	InstagramURL  *string             `json:"instagram_url"`
	Badge         *string             `json:"badge"`
	IsActive      *bool               `json:"is_active"`
}

func (in ProductInput) params() (repository.ProductParams, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || !in.Price.IsPositive() {
		return repository.ProductParams{}, domain.ErrValidation
	}

	sizes := in.Sizes
	if len(sizes) == 0 {
		sizes = domain.DefaultSizes
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	return repository.ProductParams{
		Name:          name,
		Description:   blankToNil(in.Description),
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		ImageURL:      blankToNil(in.ImageURL),
		Images:        in.Images,
		Sizes:         sizes,
		Category:      blankToNil(in.Category),
		SectionID:     blankToNil(in.SectionID),
		InstagramURL:  blankToNil(in.InstagramURL),
		Badge:         blankToNil(in.Badge),
		IsActive:      active,
	}, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	params, err := in.params()
	if err != nil {
		return nil, err
	}
	p, err := s.store.CreateProduct(ctx, params)
	if err != nil {
		return nil, err
	}
	s.invalidateProducts(ctx)
	return &p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	params, err := in.params()
	if err != nil {
		return nil, err
	}
	p, err := s.store.UpdateProduct(ctx, id, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.invalidateProducts(ctx)
	return &p, nil
}

func (s *CatalogService) SetProductActive(ctx context.Context, id string, active bool) error {
	if err := expectAffected(s.store.SetProductActive(ctx, id, active)); err != nil {
		return err
	}
	s.invalidateProducts(ctx)
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := expectAffected(s.store.DeleteProduct(ctx, id)); err != nil {
		return err
	}
	s.invalidateProducts(ctx)
	return nil
}

// cached fills dest from the cache or, on a miss, from load. Concurrent misses
// for the same key share one load.
func (s *CatalogService) cached(ctx context.Context, key string, dest any, load func() (any, error)) error {
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, dest)
		if err != nil {
			log.Printf("Cache read failed for %s: %v", key, err)
		}
		if hit {
			return nil
		}
	}

	v, err, _ := s.sfg.Do(key, func() (any, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, v, s.ttl); err != nil {
				log.Printf("Cache write failed for %s: %v", key, err)
			}
		}
		return v, nil
	})
	if err != nil {
		return err
	}

	switch d := dest.(type) {
	case *[]domain.Product:
		*d = v.([]domain.Product)
	case *[]domain.Section:
		*d = v.([]domain.Section)
	}
	return nil
}

func (s *CatalogService) invalidateProducts(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, productsKeyPrefix); err != nil {
		log.Printf("Cache invalidation failed: %v", err)
	}
}

func blankToNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
