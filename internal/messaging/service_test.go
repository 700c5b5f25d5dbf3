package messaging

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"waha-gateway/internal/config"
	"waha-gateway/internal/database"
	"waha-gateway/internal/models"
	"waha-gateway/internal/store"
	"waha-gateway/internal/waha"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T, bridge http.HandlerFunc) (*Service, *store.Store, *int64) {
	t.Helper()

	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		bridge(w, r)
	}))
	t.Cleanup(srv.Close)

	db, err := gorm.Open(sqlite.Open(t.TempDir()+"/test.db"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	cfg := &config.Config{
		PublicURL:   "https://erp.example.com",
		WahaURL:     srv.URL,
		WahaToken:   "t",
		WahaTimeout: 5,
	}
	st := store.New(db)
	return NewService(cfg, st, waha.NewClient(cfg)), st, &calls
}

func okBridge(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`{"id":"EXT1"}`))
}

func TestSendRequiresRecipient(t *testing.T) {
	svc, _, calls := newTestService(t, okBridge)

	_, err := svc.Send(SendRequest{Message: "hi"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if *calls != 0 {
		t.Errorf("validation failure must not reach the bridge, got %d calls", *calls)
	}
}

func TestSendReactionRequiresReplyTo(t *testing.T) {
	svc, st, calls := newTestService(t, okBridge)

	_, err := svc.Send(SendRequest{To: "+1555", Reaction: "👍"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if *calls != 0 {
		t.Errorf("expected no bridge call, got %d", *calls)
	}

	var count int64
	st.DB.Model(&models.Message{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected request must not persist a record, got %d", count)
	}
}

func TestSendMediaRequiresAttachment(t *testing.T) {
	svc, _, calls := newTestService(t, okBridge)

	_, err := svc.Send(SendRequest{To: "1555", ContentType: "document"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if *calls != 0 {
		t.Errorf("expected no bridge call, got %d", *calls)
	}
}

func TestSendTextLifecycle(t *testing.T) {
	svc, st, calls := newTestService(t, okBridge)

	msg, err := svc.Send(SendRequest{To: "+1555", Message: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected 1 bridge call, got %d", *calls)
	}
	if msg.Status != models.StatusSuccess {
		t.Errorf("status: expected Success, got %q", msg.Status)
	}
	if msg.ExternalID == nil || *msg.ExternalID != "EXT1" {
		t.Errorf("expected external id EXT1, got %v", msg.ExternalID)
	}
	if msg.PeerAddress != "1555" {
		t.Errorf("expected + stripped from recipient, got %q", msg.PeerAddress)
	}
	if msg.Direction != models.DirectionOutgoing || msg.MessageKind != models.KindManual {
		t.Errorf("unexpected record: %+v", msg)
	}

	stored, _ := st.GetByExternalID("EXT1")
	if stored == nil || stored.Status != models.StatusSuccess {
		t.Errorf("expected persisted Success record, got %+v", stored)
	}
}

func TestSendBridgeFailureMarksFailed(t *testing.T) {
	svc, st, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"engine crashed"}`))
	})

	msg, err := svc.Send(SendRequest{To: "1555", Message: "hello"})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *waha.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected wrapped *APIError, got %v", err)
	}
	if msg == nil || msg.Status != models.StatusFailed {
		t.Errorf("expected Failed record, got %+v", msg)
	}

	// The raw error payload is archived for audit.
	var logs int64
	st.DB.Model(&models.NotificationLog{}).Count(&logs)
	if logs != 1 {
		t.Errorf("expected 1 archived error payload, got %d", logs)
	}
}

func TestSendTemplate(t *testing.T) {
	svc, st, _ := newTestService(t, okBridge)

	err := st.SaveTemplate(&models.Template{
		Name:       "order_update",
		HeaderType: "TEXT",
		Header:     "Hello {{1}}",
		Body:       "Your order {{2}} has shipped.",
		Footer:     "Reply STOP to opt out",
	})
	if err != nil {
		t.Fatalf("seed template: %v", err)
	}

	msg, sendErr := svc.Send(SendRequest{
		To:         "1555",
		Template:   "order_update",
		Parameters: []string{"Ada", "#42"},
	})
	if sendErr != nil {
		t.Fatalf("unexpected error: %v", sendErr)
	}

	want := "Hello Ada\n\nYour order #42 has shipped.\n\nReply STOP to opt out"
	if msg.Body != want {
		t.Errorf("rendered body:\nexpected %q\ngot      %q", want, msg.Body)
	}
	if msg.MessageKind != models.KindTemplate || msg.TemplateRef != "order_update" {
		t.Errorf("unexpected record: %+v", msg)
	}
}

func TestSendTemplateNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, okBridge)

	msg, err := svc.Send(SendRequest{To: "1555", Template: "missing"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if msg == nil || msg.Status != models.StatusFailed {
		t.Errorf("expected Failed record, got %+v", msg)
	}
}

func TestRenderTemplateText(t *testing.T) {
	got := RenderTemplateText("Hi {{1}}, order {{2}} ({{1}})", []string{"Ada", "#42"})
	want := "Hi Ada, order #42 (Ada)"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber("+5511999"); got != "5511999" {
		t.Errorf("expected leading + stripped, got %q", got)
	}
	if got := FormatNumber("5511999"); got != "5511999" {
		t.Errorf("expected unchanged number, got %q", got)
	}
}

func TestPrepareAttachmentLink(t *testing.T) {
	svc, _, _ := newTestService(t, okBridge)

	if got := svc.PrepareAttachmentLink("https://cdn/x.pdf"); got != "https://cdn/x.pdf" {
		t.Errorf("absolute link must pass through, got %q", got)
	}
	if got := svc.PrepareAttachmentLink("/files/x.pdf"); got != "https://erp.example.com/files/x.pdf" {
		t.Errorf("relative link must be absolutized, got %q", got)
	}
}
