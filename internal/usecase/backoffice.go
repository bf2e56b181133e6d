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
)

const settingsKey = "site:settings"

// BackOfficeService covers contact messages, offers and site settings.
type BackOfficeService struct {
	store repository.BackOfficeStore
	cache Cache
	ttl   time.Duration
}

func NewBackOfficeService(store repository.BackOfficeStore, cache Cache, ttl time.Duration) *BackOfficeService {
	return &BackOfficeService{store: store, cache: cache, ttl: ttl}
}

type MessageInput struct {
	Name    string  `json:"name"`
	Phone   *string `json:"phone"`
	Email   string  `json:"email"`
	Message string  `json:"message"`
}

func (s *BackOfficeService) SendMessage(ctx context.Context, in MessageInput) (*domain.Message, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	body := strings.TrimSpace(in.Message)
	if name == "" || email == "" || body == "" {
		return nil, domain.ErrValidation
	}

	m, err := s.store.CreateMessage(ctx, repository.CreateMessageParams{
		Name:    name,
		Phone:   blankToNil(in.Phone),
		Email:   email,
		Message: body,
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *BackOfficeService) ListMessages(ctx context.Context) ([]domain.Message, error) {
	return s.store.ListMessages(ctx)
}

func (s *BackOfficeService) SetMessageRead(ctx context.Context, id string, read bool) error {
	return expectAffected(s.store.SetMessageRead(ctx, id, read))
}

func (s *BackOfficeService) UnreadCount(ctx context.Context) (int, error) {
	return s.store.CountUnreadMessages(ctx)
}

type OfferInput struct {
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	DiscountPercent *int    `json:"discount_percent"`
}

func (s *BackOfficeService) ListOffers(ctx context.Context, activeOnly bool) ([]domain.Offer, error) {
	return s.store.ListOffers(ctx, activeOnly)
}

func (s *BackOfficeService) CreateOffer(ctx context.Context, in OfferInput) (*domain.Offer, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrValidation
	}
	if in.DiscountPercent != nil && (*in.DiscountPercent < 0 || *in.DiscountPercent > 100) {
		return nil, domain.ErrValidation
	}

	o, err := s.store.CreateOffer(ctx, repository.CreateOfferParams{
		Title:           title,
		Description:     blankToNil(in.Description),
		DiscountPercent: in.DiscountPercent,
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *BackOfficeService) SetOfferActive(ctx context.Context, id string, active bool) error {
	return expectAffected(s.store.SetOfferActive(ctx, id, active))
}

func (s *BackOfficeService) DeleteOffer(ctx context.Context, id string) error {
	return expectAffected(s.store.DeleteOffer(ctx, id))
}

// Settings returns the site settings, or an empty value before any were saved.
func (s *BackOfficeService) Settings(ctx context.Context) (*domain.SiteSettings, error) {
	var settings domain.SiteSettings
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, settingsKey, &settings)
		if err != nil {
			log.Printf("Cache read failed for %s: %v", settingsKey, err)
		}
		if hit {
			return &settings, nil
		}
	}

	settings, err := s.store.GetSiteSettings(ctx)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		settings = domain.SiteSettings{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, settingsKey, settings, s.ttl); err != nil {
			log.Printf("Cache write failed for %s: %v", settingsKey, err)
		}
	}
	return &settings, nil
}

type SettingsInput struct {
	LogoURL          *string    `json:"logo_url"`
	CountdownTarget  *time.Time `json:"countdown_target"`
	AnnouncementText *string    `json:"announcement_text"`
}

func (s *BackOfficeService) UpdateSettings(ctx context.Context, in SettingsInput) (*domain.SiteSettings, error) {
	settings, err := s.store.UpsertSiteSettings(ctx, repository.SiteSettingsParams{
		LogoURL:          blankToNil(in.LogoURL),
		CountdownTarget:  in.CountdownTarget,
		AnnouncementText: blankToNil(in.AnnouncementText),
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, settingsKey); err != nil {
			log.Printf("Cache invalidation failed for %s: %v", settingsKey, err)
		}
	}
	return &settings, nil
}
