package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/phonedex/phonedex/internal/contacts"
	"github.com/phonedex/phonedex/internal/phone"
)

const (
	startReply = "Hi! Send me any message containing phone numbers and I will save them.\n\n" +
		"Commands:\n" +
		"/add <phone> [name] [company] - save a phone by hand\n" +
		"/search <query> - find saved contacts\n" +
		"/stats - contact counts\n" +
		"/web - open the web interface"

	addUsageReply    = "Usage: /add <phone> [name] [company]"
	searchUsageReply = "Usage: /search <query>"
	nothingFound     = "Nothing found."

	// searchReplyLimit caps how many contacts a chat search echoes back.
	searchReplyLimit = 10
)

// handleCommand dispatches one slash command. Unknown commands get the
// /start help text.
func (s *Service) handleCommand(ctx context.Context, command, args string) (string, error) {
	switch command {
	case "start":
		return startReply, nil
	case "web":
		return s.webReply(), nil
	case "add":
		return s.addCommand(ctx, args)
	case "search":
		return s.searchCommand(ctx, args)
	case "stats":
		return s.statsCommand(ctx)
	default:
		return startReply, nil
	}
}

func (s *Service) webReply() string {
	if s.publicURL == "" {
		return "The web interface is not configured."
	}
	return "Web interface: " + s.publicURL
}

// addCommand saves a phone supplied by hand: /add <phone> [name] [company].
func (s *Service) addCommand(ctx context.Context, args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return addUsageReply, nil
	}
	raw := fields[0]
	normalized := phone.Normalize(raw)
	if normalized == "" {
		return addUsageReply, nil
	}
	req := contacts.SaveRequest{
		Phone:           raw,
		NormalizedPhone: normalized,
	}
	if len(fields) > 1 {
		req.Name = fields[1]
	}
	if len(fields) > 2 {
		req.Company = strings.Join(fields[2:], " ")
	}
	if _, err := s.store.Save(ctx, req); err != nil {
		return "", err
	}
	saved, err := s.store.GetByNormalized(ctx, normalized)
	if err != nil {
		return "", err
	}
	return "Saved:\n" + formatContactBlock(saved), nil
}

// searchCommand answers /search <query> with up to searchReplyLimit blocks.
func (s *Service) searchCommand(ctx context.Context, args string) (string, error) {
	query := strings.TrimSpace(args)
	if query == "" {
		return searchUsageReply, nil
	}
	found, err := s.store.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return nothingFound, nil
	}
	shown := found
	if len(shown) > searchReplyLimit {
		shown = shown[:searchReplyLimit]
	}
	blocks := make([]string, 0, len(shown))
	for _, c := range shown {
		blocks = append(blocks, formatContactBlock(c))
	}
	reply := strings.Join(blocks, "\n\n")
	if len(found) > searchReplyLimit {
		reply += fmt.Sprintf("\n\n...and %d more", len(found)-searchReplyLimit)
	}
	return reply, nil
}

func (s *Service) statsCommand(ctx context.Context) (string, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"Contacts: %d\nWith names: %d\nWith companies: %d",
		stats.Total, stats.WithNames, stats.WithCompanies,
	), nil
}
