package bot

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/phonedex/phonedex/internal/contacts"
)

// fakeStore is an in-memory contacts.Store for handler tests.
type fakeStore struct {
	nextID  int64
	rows    map[string]contacts.Contact // keyed by normalized phone
	audit   []auditRow
	saveErr error
	findErr error
	logErr  error
}

type auditRow struct {
	messageID int64
	chatID    int64
	contactID *int64
	text      string
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, rows: map[string]contacts.Contact{}}
}

func (f *fakeStore) Save(_ context.Context, req contacts.SaveRequest) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	if existing, ok := f.rows[req.NormalizedPhone]; ok {
		return existing.ID, nil // insert-or-ignore
	}
	c := contacts.Contact{
		ID:              f.nextID,
		Phone:           req.Phone,
		NormalizedPhone: req.NormalizedPhone,
		Name:            req.Name,
		Company:         req.Company,
		Context:         req.Context,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	f.nextID++
	f.rows[req.NormalizedPhone] = c
	return c.ID, nil
}

func (f *fakeStore) GetByNormalized(_ context.Context, normalized string) (contacts.Contact, error) {
	if f.findErr != nil {
		return contacts.Contact{}, f.findErr
	}
	c, ok := f.rows[normalized]
	if !ok {
		return contacts.Contact{}, contacts.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (contacts.Contact, error) {
	for _, c := range f.rows {
		if c.ID == id {
			return c, nil
		}
	}
	return contacts.Contact{}, contacts.ErrNotFound
}

func (f *fakeStore) Search(_ context.Context, query string) ([]contacts.Contact, error) {
	needle := strings.ToLower(query)
	var out []contacts.Contact
	for _, c := range f.rows {
		haystack := strings.ToLower(c.Phone + " " + c.NormalizedPhone + " " + c.Name + " " + c.Company + " " + c.Context)
		if strings.Contains(haystack, needle) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, req contacts.UpdateRequest) error {
	for key, c := range f.rows {
		if c.ID == id {
			if req.Name != nil {
				c.Name = *req.Name
			}
			if req.Company != nil {
				c.Company = *req.Company
			}
			if req.Context != nil {
				c.Context = *req.Context
			}
			c.UpdatedAt = time.Now()
			f.rows[key] = c
			return nil
		}
	}
	return contacts.ErrNotFound
}

func (f *fakeStore) List(_ context.Context, _ int32) ([]contacts.Contact, error) {
	var out []contacts.Contact
	for _, c := range f.rows {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) Stats(_ context.Context) (contacts.Stats, error) {
	stats := contacts.Stats{}
	for _, c := range f.rows {
		stats.Total++
		if c.Name != "" {
			stats.WithNames++
		}
		if c.Company != "" {
			stats.WithCompanies++
		}
	}
	return stats, nil
}

func (f *fakeStore) LogParsedMessage(_ context.Context, messageID, chatID int64, contactID *int64, text string) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.audit = append(f.audit, auditRow{messageID: messageID, chatID: chatID, contactID: contactID, text: text})
	return nil
}

func newTestService(store contacts.Store) *Service {
	return &Service{
		logger:    slog.Default(),
		store:     store,
		publicURL: "https://phones.example.com",
	}
}

func TestHandleTextNoPhones(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store)

	reply, err := s.handleText(t.Context(), 1, 100, "no numbers here")
	if err != nil {
		t.Fatalf("handleText() error = %v", err)
	}
	if reply != "" {
		t.Errorf("reply = %q, want empty", reply)
	}
	if len(store.audit) != 0 {
		t.Errorf("audit rows = %d, want 0", len(store.audit))
	}
}

func TestHandleTextCreatesContact(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store)

	reply, err := s.handleText(t.Context(), 7, 100, "call me at 8-999-123-45-67 please")
	if err != nil {
		t.Fatalf("handleText() error = %v", err)
	}
	if !strings.Contains(reply, "+79991234567") {
		t.Errorf("reply missing canonical number: %q", reply)
	}
	saved, err := store.GetByNormalized(t.Context(), "+79991234567")
	if err != nil {
		t.Fatalf("contact not saved: %v", err)
	}
	if saved.Phone != "8-999-123-45-67" {
		t.Errorf("stored original = %q", saved.Phone)
	}
	if saved.Context != "call me at 8-999-123-45-67 please" {
		t.Errorf("stored context = %q", saved.Context)
	}
	if len(store.audit) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(store.audit))
	}
	if store.audit[0].contactID == nil || *store.audit[0].contactID != saved.ID {
		t.Errorf("audit contact id = %v, want %d", store.audit[0].contactID, saved.ID)
	}
	if store.audit[0].messageID != 7 || store.audit[0].chatID != 100 {
		t.Errorf("audit row = %+v", store.audit[0])
	}
}

func TestHandleTextFirstWriteWins(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store)

	if _, err := s.handleText(t.Context(), 1, 100, "first sighting 89991234567"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.handleText(t.Context(), 2, 100, "second form +7 999 123 45 67"); err != nil {
		t.Fatal(err)
	}

	all, _ := store.List(t.Context(), 0)
	if len(all) != 1 {
		t.Fatalf("contacts = %d, want 1", len(all))
	}
	if all[0].Phone != "89991234567" {
		t.Errorf("stored original = %q, want first-seen form", all[0].Phone)
	}
	if len(store.audit) != 2 {
		t.Errorf("audit rows = %d, want 2 (one per sighting)", len(store.audit))
	}
}

func TestHandleTextMultiplePhonesInOrder(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store)

	reply, err := s.handleText(t.Context(), 1, 100, "office +7 495 123-45-67, mobile 89991234567")
	if err != nil {
		t.Fatal(err)
	}
	blocks := strings.Split(reply, "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want 2: %q", len(blocks), reply)
	}
	if !strings.Contains(blocks[0], "+74951234567") {
		t.Errorf("first block = %q", blocks[0])
	}
	if !strings.Contains(blocks[1], "+79991234567") {
		t.Errorf("second block = %q", blocks[1])
	}
}

func TestHandleTextKnownContactEchoesMetadata(t *testing.T) {
	store := newFakeStore()
	if _, err := store.Save(t.Context(), contacts.SaveRequest{
		Phone:           "+79991234567",
		NormalizedPhone: "+79991234567",
		Name:            "Alice",
		Company:         "Acme",
	}); err != nil {
		t.Fatal(err)
	}
	s := newTestService(store)

	reply, err := s.handleText(t.Context(), 1, 100, "ping 8 999 123 45 67")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "Name: Alice") || !strings.Contains(reply, "Company: Acme") {
		t.Errorf("reply = %q", reply)
	}
}

func TestHandleTextAuditFailureDoesNotAbort(t *testing.T) {
	store := newFakeStore()
	store.logErr = context.DeadlineExceeded
	s := newTestService(store)

	reply, err := s.handleText(t.Context(), 1, 100, "call 89991234567")
	if err != nil {
		t.Fatalf("handleText() error = %v, audit log must be best-effort", err)
	}
	if reply == "" {
		t.Error("expected a reply despite audit failure")
	}
}

func TestHandleTextTruncatesContext(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store)

	long := strings.Repeat("ж", 300) + " 89991234567"
	if _, err := s.handleText(t.Context(), 1, 100, long); err != nil {
		t.Fatal(err)
	}
	saved, err := store.GetByNormalized(t.Context(), "+79991234567")
	if err != nil {
		t.Fatal(err)
	}
	if got := len([]rune(saved.Context)); got != 200 {
		t.Errorf("context runes = %d, want 200", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdef", 5, "abcde"},
		{"multibyte", "абвг", 2, "аб"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.limit); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}
