package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phonedex/phonedex/internal/contacts"
	"github.com/phonedex/phonedex/internal/phone"
)

const (
	apologyReply = "Sorry, something went wrong. Please try again."

	// contextLimit caps how much of the triggering message is stored as
	// contact context.
	contextLimit = 200
)

// handleText scans a free-text message for phone numbers, records each
// previously unseen one, and builds a single reply with one block per phone
// in extraction order. Returns "" when the message contains no phones.
func (s *Service) handleText(ctx context.Context, messageID, chatID int64, text string) (string, error) {
	matches := phone.Extract(text)
	if len(matches) == 0 {
		return "", nil
	}

	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		contact, err := s.resolveContact(ctx, m, text)
		s.logSighting(ctx, messageID, chatID, contact, text)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, formatContactBlock(contact))
	}
	return strings.Join(blocks, "\n\n"), nil
}

// resolveContact looks a match up by normalized form, creating the contact
// on first sighting. First write wins: an existing row keeps its original
// phone text and metadata.
func (s *Service) resolveContact(ctx context.Context, m phone.Match, messageText string) (contacts.Contact, error) {
	existing, err := s.store.GetByNormalized(ctx, m.Normalized)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, contacts.ErrNotFound) {
		return contacts.Contact{}, err
	}
	_, err = s.store.Save(ctx, contacts.SaveRequest{
		Phone:           m.Original,
		NormalizedPhone: m.Normalized,
		Context:         truncate(messageText, contextLimit),
	})
	if err != nil {
		return contacts.Contact{}, err
	}
	return s.store.GetByNormalized(ctx, m.Normalized)
}

// logSighting appends the parsed-message audit row. The log is best-effort:
// a failure is recorded server-side and never aborts the reply.
func (s *Service) logSighting(ctx context.Context, messageID, chatID int64, contact contacts.Contact, text string) {
	var contactID *int64
	if contact.ID != 0 {
		contactID = &contact.ID
	}
	if err := s.store.LogParsedMessage(ctx, messageID, chatID, contactID, text); err != nil {
		s.logger.Error("log parsed message failed",
			slog.Int64("message_id", messageID),
			slog.Int64("chat_id", chatID),
			slog.Any("error", err),
		)
	}
}

// formatContactBlock renders one phone block of the reply: the canonical
// number, then name and company when known.
func formatContactBlock(c contacts.Contact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "☎ %s", c.NormalizedPhone)
	if c.Name != "" {
		fmt.Fprintf(&b, "\nName: %s", c.Name)
	}
	if c.Company != "" {
		fmt.Fprintf(&b, "\nCompany: %s", c.Company)
	}
	return b.String()
}

// truncate returns at most limit runes of s, so multi-byte text is never
// cut mid-character.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
