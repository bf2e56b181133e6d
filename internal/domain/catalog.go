package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var DefaultSizes = []string{"S", "M", "L", "XL", "XXL"}

type Product struct {
	ID            string              `json:"id"`
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
	IsActive      bool                `json:"is_active"`
	CreatedAt     time.Time           `json:"created_at"`
}

func (p Product) Snapshot() ProductSnapshot {
	snap := ProductSnapshot{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Sizes:         append([]string(nil), p.Sizes...),
	}
	if p.ImageURL != nil {
		snap.ImageURL = *p.ImageURL
	}
	return snap
}

type Section struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description"`
	IsComingSoon bool      `json:"is_coming_soon"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type Offer struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	DiscountPercent *int      `json:"discount_percent"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

type SiteSettings struct {
	ID               string     `json:"id"`
	LogoURL          *string    `json:"logo_url"`
	CountdownTarget  *time.Time `json:"countdown_target"`
	AnnouncementText *string    `json:"announcement_text"`
}
