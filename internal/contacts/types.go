package contacts

import (
	"context"
	"time"
)

// Contact is a stored phone record with optional human metadata.
// NormalizedPhone is the canonical +-prefixed form and the dedup key;
// Phone keeps the number exactly as first seen.
type Contact struct {
	ID              int64     `json:"id"`
	Phone           string    `json:"phone"`
	NormalizedPhone string    `json:"normalized_phone"`
	Name            string    `json:"name,omitempty"`
	Company         string    `json:"company,omitempty"`
	Context         string    `json:"context,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SaveRequest carries a new contact. Name, Company, and Context are
// optional; empty strings are stored as NULL.
type SaveRequest struct {
	Phone           string
	NormalizedPhone string
	Name            string
	Company         string
	Context         string
}

// UpdateRequest holds the mutable contact fields. A nil pointer means the
// field was not supplied and keeps its stored value; a pointer to the empty
// string clears the field. Phone and NormalizedPhone cannot be changed.
type UpdateRequest struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
	Context *string `json:"context"`
}

// Stats are aggregate contact counts. WithNames and WithCompanies count
// rows where that field is non-null and non-empty.
type Stats struct {
	Total         int64 `json:"total"`
	WithNames     int64 `json:"with_names"`
	WithCompanies int64 `json:"with_companies"`
}

// Store is the contact persistence contract consumed by the bot and the
// HTTP handlers. *Service implements it.
type Store interface {
	Save(ctx context.Context, req SaveRequest) (int64, error)
	GetByNormalized(ctx context.Context, normalized string) (Contact, error)
	GetByID(ctx context.Context, id int64) (Contact, error)
	Search(ctx context.Context, query string) ([]Contact, error)
	Update(ctx context.Context, id int64, req UpdateRequest) error
	List(ctx context.Context, limit int32) ([]Contact, error)
	Stats(ctx context.Context) (Stats, error)
	LogParsedMessage(ctx context.Context, messageID, chatID int64, contactID *int64, originalText string) error
}
