package repository

import (
	"context"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
)

type BackOfficeStore interface {
	CreateMessage(ctx context.Context, arg CreateMessageParams) (domain.Message, error)
	ListMessages(ctx context.Context) ([]domain.Message, error)
	SetMessageRead(ctx context.Context, id string, read bool) (int64, error)
	CountUnreadMessages(ctx context.Context) (int, error)

	ListOffers(ctx context.Context, activeOnly bool) ([]domain.Offer, error)
	CreateOffer(ctx context.Context, arg CreateOfferParams) (domain.Offer, error)
	SetOfferActive(ctx context.Context, id string, active bool) (int64, error)
	DeleteOffer(ctx context.Context, id string) (int64, error)

	GetSiteSettings(ctx context.Context) (domain.SiteSettings, error)
	UpsertSiteSettings(ctx context.Context, arg SiteSettingsParams) (domain.SiteSettings, error)
}

type CreateMessageParams struct {
	Name    string
	Phone   *string
	Email   string
	Message string
}

type CreateOfferParams struct {
	Title           string
	Description     *string
	DiscountPercent *int
}

type SiteSettingsParams struct {
	LogoURL          *string
	CountdownTarget  *time.Time
	AnnouncementText *string
}

const messageColumns = `id, name, phone, email, message, is_read, created_at`

func scanMessage(row pgx.Row) (domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.ID, &m.Name, &m.Phone, &m.Email, &m.Message, &m.IsRead, &m.CreatedAt)
	return m, err
}

const createMessage = `INSERT INTO messages (name, phone, email, message)
VALUES ($1, $2, $3, $4)
RETURNING ` + messageColumns

func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (domain.Message, error) {
	return scanMessage(q.db.QueryRow(ctx, createMessage, arg.Name, arg.Phone, arg.Email, arg.Message))
}

const listMessages = `SELECT ` + messageColumns + ` FROM messages ORDER BY created_at DESC`

func (q *Queries) ListMessages(ctx context.Context) ([]domain.Message, error) {
	rows, err := q.db.Query(ctx, listMessages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const setMessageRead = `UPDATE messages SET is_read = $2 WHERE id = $1`

func (q *Queries) SetMessageRead(ctx context.Context, id string, read bool) (int64, error) {
	tag, err := q.db.Exec(ctx, setMessageRead, id, read)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const countUnreadMessages = `SELECT COUNT(*)::int FROM messages WHERE is_read = FALSE`

func (q *Queries) CountUnreadMessages(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRow(ctx, countUnreadMessages).Scan(&n)
	return n, err
}

const offerColumns = `id, title, description, discount_percent, is_active, created_at`

func scanOffer(row pgx.Row) (domain.Offer, error) {
	var o domain.Offer
	err := row.Scan(&o.ID, &o.Title, &o.Description, &o.DiscountPercent, &o.IsActive, &o.CreatedAt)
	return o, err
}

const listOffers = `SELECT ` + offerColumns + `
FROM offers
WHERE (NOT $1 OR is_active = TRUE)
ORDER BY created_at DESC`

func (q *Queries) ListOffers(ctx context.Context, activeOnly bool) ([]domain.Offer, error) {
	rows, err := q.db.Query(ctx, listOffers, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const createOffer = `INSERT INTO offers (title, description, discount_percent)
VALUES ($1, $2, $3)
RETURNING ` + offerColumns

func (q *Queries) CreateOffer(ctx context.Context, arg CreateOfferParams) (domain.Offer, error) {
	return scanOffer(q.db.QueryRow(ctx, createOffer, arg.Title, arg.Description, arg.DiscountPercent))
}

const setOfferActive = `UPDATE offers SET is_active = $2 WHERE id = $1`

func (q *Queries) SetOfferActive(ctx context.Context, id string, active bool) (int64, error) {
	tag, err := q.db.Exec(ctx, setOfferActive, id, active)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteOffer = `DELETE FROM offers WHERE id = $1`

func (q *Queries) DeleteOffer(ctx context.Context, id string) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteOffer, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const settingsColumns = `id, logo_url, countdown_target, announcement_text`

const getSiteSettings = `SELECT ` + settingsColumns + ` FROM site_settings ORDER BY updated_at DESC LIMIT 1`

func (q *Queries) GetSiteSettings(ctx context.Context) (domain.SiteSettings, error) {
	var s domain.SiteSettings
	err := q.db.QueryRow(ctx, getSiteSettings).Scan(&s.ID, &s.LogoURL, &s.CountdownTarget, &s.AnnouncementText)
	return s, err
}

// Site settings are a single row: update it when present, insert otherwise.
const upsertSiteSettings = `WITH updated AS (
    UPDATE site_settings
    SET logo_url = $1, countdown_target = $2, announcement_text = $3, updated_at = NOW()
    WHERE id = (SELECT id FROM site_settings ORDER BY updated_at DESC LIMIT 1)
    RETURNING ` + settingsColumns + `
), inserted AS (
    INSERT INTO site_settings (logo_url, countdown_target, announcement_text)
    SELECT $1, $2, $3
    WHERE NOT EXISTS (SELECT 1 FROM updated)
    RETURNING ` + settingsColumns + `
)
SELECT ` + settingsColumns + ` FROM updated
UNION ALL
SELECT ` + settingsColumns + ` FROM inserted`

func (q *Queries) UpsertSiteSettings(ctx context.Context, arg SiteSettingsParams) (domain.SiteSettings, error) {
	var s domain.SiteSettings
	err := q.db.QueryRow(ctx, upsertSiteSettings, arg.LogoURL, arg.CountdownTarget, arg.AnnouncementText).
		Scan(&s.ID, &s.LogoURL, &s.CountdownTarget, &s.AnnouncementText)
	return s, err
}
