// Package contacts persists phone contacts and their parsed-message audit trail.
package contacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phonedex/phonedex/internal/db"
)

// ErrNotFound is returned when a lookup or update matches no contact.
var ErrNotFound = errors.New("contact not found")

const contactColumns = "id, phone, normalized_phone, name, company, context, created_at, updated_at"

// Service implements Store on top of a pgx pool.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a contact store service.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "contacts")),
	}
}

var _ Store = (*Service)(nil)

// Save inserts a new contact. When the normalized phone already exists the
// insert is a no-op and the id of the surviving row is returned: first
// write wins, later sightings never overwrite stored metadata.
func (s *Service) Save(ctx context.Context, req SaveRequest) (int64, error) {
	if s.pool == nil {
		return 0, errors.New("contacts pool not configured")
	}
	normalized := strings.TrimSpace(req.NormalizedPhone)
	if normalized == "" {
		return 0, errors.New("normalized phone is required")
	}
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO contacts (phone, normalized_phone, name, company, context)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (normalized_phone) DO NOTHING
		RETURNING id`,
		strings.TrimSpace(req.Phone),
		normalized,
		textOrNull(req.Name),
		textOrNull(req.Company),
		textOrNull(req.Context),
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		// Only the normalized-phone conflict is absorbed; any other
		// constraint violation (notably the phone column) is a real error.
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("save contact: phone conflicts with an existing row: %w", err)
		}
		return 0, fmt.Errorf("save contact: %w", err)
	}
	// Conflict: the row already exists, fetch its id.
	existing, err := s.GetByNormalized(ctx, normalized)
	if err != nil {
		return 0, fmt.Errorf("save contact lookup: %w", err)
	}
	return existing.ID, nil
}

// GetByNormalized looks up a contact by its canonical phone form.
func (s *Service) GetByNormalized(ctx context.Context, normalized string) (Contact, error) {
	if s.pool == nil {
		return Contact{}, errors.New("contacts pool not configured")
	}
	row := s.pool.QueryRow(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE normalized_phone = $1",
		strings.TrimSpace(normalized),
	)
	return scanContact(row)
}

// GetByID looks up a contact by its surrogate id.
func (s *Service) GetByID(ctx context.Context, id int64) (Contact, error) {
	if s.pool == nil {
		return Contact{}, errors.New("contacts pool not configured")
	}
	row := s.pool.QueryRow(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE id = $1", id)
	return scanContact(row)
}

// Search returns contacts where query occurs case-insensitively in the
// phone, normalized phone, name, company, or context, most recently
// updated first. An empty query returns the default listing.
func (s *Service) Search(ctx context.Context, query string) ([]Contact, error) {
	if s.pool == nil {
		return nil, errors.New("contacts pool not configured")
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return s.List(ctx, 0)
	}
	needle := "%" + trimmed + "%"
	rows, err := s.pool.Query(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE phone ILIKE $1
		   OR normalized_phone ILIKE $1
		   OR name ILIKE $1
		   OR company ILIKE $1
		   OR context ILIKE $1
		ORDER BY updated_at DESC`,
		needle,
	)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	defer rows.Close()
	return collectContacts(rows)
}

// Update applies the supplied fields to the contact and bumps updated_at.
// Returns ErrNotFound when id does not exist.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) error {
	if s.pool == nil {
		return errors.New("contacts pool not configured")
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE contacts SET
			name = CASE WHEN $2::boolean THEN $3::text ELSE name END,
			company = CASE WHEN $4::boolean THEN $5::text ELSE company END,
			context = CASE WHEN $6::boolean THEN $7::text ELSE context END,
			updated_at = now()
		WHERE id = $1`,
		id,
		req.Name != nil, optionalText(req.Name),
		req.Company != nil, optionalText(req.Company),
		req.Context != nil, optionalText(req.Context),
	)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns contacts ordered by most recently updated, capped at limit
// (default 50 when limit is zero or negative).
func (s *Service) List(ctx context.Context, limit int32) ([]Contact, error) {
	if s.pool == nil {
		return nil, errors.New("contacts pool not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		"SELECT "+contactColumns+" FROM contacts ORDER BY updated_at DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()
	return collectContacts(rows)
}

// Stats returns aggregate contact counts.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if s.pool == nil {
		return Stats{}, errors.New("contacts pool not configured")
	}
	var stats Stats
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE name IS NOT NULL AND name <> ''),
			COUNT(*) FILTER (WHERE company IS NOT NULL AND company <> '')
		FROM contacts`,
	).Scan(&stats.Total, &stats.WithNames, &stats.WithCompanies)
	if err != nil {
		return Stats{}, fmt.Errorf("contact stats: %w", err)
	}
	return stats, nil
}

// LogParsedMessage appends one audit row linking a chat message to a
// recognized phone sighting. Rows are never updated or deleted.
func (s *Service) LogParsedMessage(ctx context.Context, messageID, chatID int64, contactID *int64, originalText string) error {
	if s.pool == nil {
		return errors.New("contacts pool not configured")
	}
	pgContactID := pgtype.Int8{}
	if contactID != nil {
		pgContactID = pgtype.Int8{Int64: *contactID, Valid: true}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO parsed_messages (message_id, chat_id, contact_id, original_text)
		VALUES ($1, $2, $3, $4)`,
		messageID, chatID, pgContactID, textOrNull(originalText),
	)
	if err != nil {
		return fmt.Errorf("log parsed message: %w", err)
	}
	return nil
}

func scanContact(row pgx.Row) (Contact, error) {
	var (
		c       Contact
		name    pgtype.Text
		company pgtype.Text
		msgCtx  pgtype.Text
		created pgtype.Timestamptz
		updated pgtype.Timestamptz
	)
	err := row.Scan(&c.ID, &c.Phone, &c.NormalizedPhone, &name, &company, &msgCtx, &created, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	if err != nil {
		return Contact{}, fmt.Errorf("scan contact: %w", err)
	}
	c.Name = name.String
	c.Company = company.String
	c.Context = msgCtx.String
	if created.Valid {
		c.CreatedAt = created.Time
	}
	if updated.Valid {
		c.UpdatedAt = updated.Time
	}
	return c, nil
}

func collectContacts(rows pgx.Rows) ([]Contact, error) {
	items := make([]Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read contacts: %w", err)
	}
	return items, nil
}

// textOrNull maps the empty string to SQL NULL.
func textOrNull(value string) pgtype.Text {
	trimmed := strings.TrimSpace(value)
	return pgtype.Text{String: trimmed, Valid: trimmed != ""}
}

// optionalText renders an update field: nil means not supplied (ignored by
// the CASE flag), empty means clear to NULL.
func optionalText(value *string) pgtype.Text {
	if value == nil {
		return pgtype.Text{}
	}
	return textOrNull(*value)
}
