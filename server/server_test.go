package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	orchestrator "github.com/tanpawarit/Freight-Shipment-Assistant/agent/agents/orchestrator"
	"github.com/tanpawarit/Freight-Shipment-Assistant/agent/extraction"
	"github.com/tanpawarit/Freight-Shipment-Assistant/shipment"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeChat struct {
	reply   string
	err     error
	ownerID string
	text    string
}

func (f *fakeChat) HandleMessage(ctx context.Context, ownerID string, text string) (string, error) {
	f.ownerID = ownerID
	f.text = text
	return f.reply, f.err
}

type fakeExtractor struct {
	rec extraction.Record
	err error
	doc extraction.Document
}

func (f *fakeExtractor) Extract(ctx context.Context, doc extraction.Document) (extraction.Record, error) {
	f.doc = doc
	if f.err != nil {
		return extraction.Record{}, f.err
	}
	if strings.TrimSpace(doc.Text) == "" && strings.TrimSpace(doc.ImageBase64) == "" {
		return extraction.Record{}, extraction.ErrNoDocument
	}
	return f.rec, nil
}

type panicStore struct{ shipment.Store }

func (panicStore) List(ctx context.Context, ownerID string, filter shipment.ListFilter) ([]shipment.Shipment, error) {
	panic("boom")
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", rec.Body.String(), err)
	}
	return out
}

func TestChatReturnsReply(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{reply: "You have 3 pending shipments."}
	r := NewRouter(Deps{Chat: chat})

	rec := do(t, r, http.MethodPost, "/api/chat", map[string]string{"message": "how many pending?", "userId": "owner-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode[map[string]string](t, rec)
	if body["response"] != "You have 3 pending shipments." {
		t.Fatalf("unexpected body: %v", body)
	}
	if chat.ownerID != "owner-1" || chat.text != "how many pending?" {
		t.Fatalf("unexpected call: %q %q", chat.ownerID, chat.text)
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Fatal("expected request id header")
	}
}

func TestChatErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		body   map[string]string
		err    error
		status int
		msg    string
	}{
		{name: "missing user", body: map[string]string{"message": "hi"}, status: http.StatusUnauthorized, msg: "User ID required"},
		{name: "empty message", body: map[string]string{"message": " ", "userId": "owner-1"}, status: http.StatusBadRequest},
		{name: "iteration limit", body: map[string]string{"message": "hi", "userId": "owner-1"}, err: orchestrator.ErrIterationLimit, status: http.StatusInternalServerError},
		{name: "model failure", body: map[string]string{"message": "hi", "userId": "owner-1"}, err: errors.New("upstream 503"), status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := NewRouter(Deps{Chat: &fakeChat{err: tc.err}})
			rec := do(t, r, http.MethodPost, "/api/chat", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			body := decode[map[string]string](t, rec)
			if body["error"] == "" {
				t.Fatalf("expected error message, got %v", body)
			}
			if tc.msg != "" && body["error"] != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, body["error"])
			}
		})
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	city := "Chicago"
	ex := &fakeExtractor{rec: extraction.Record{OriginCity: &city}}
	r := NewRouter(Deps{Extractor: ex})

	rec := do(t, r, http.MethodPost, "/api/extract", map[string]string{"imageBase64": "aGVsbG8=", "mimeType": "image/jpeg"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode[map[string]any](t, rec)
	if body["origin_city"] != "Chicago" {
		t.Fatalf("unexpected origin_city: %v", body["origin_city"])
	}
	if v, ok := body["weight"]; !ok || v != nil {
		t.Fatalf("expected null weight, got %v", v)
	}
	if ex.doc.MimeType != "image/jpeg" || ex.doc.ImageBase64 != "aGVsbG8=" {
		t.Fatalf("unexpected document: %#v", ex.doc)
	}

	rec = do(t, r, http.MethodPost, "/api/extract", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if decode[map[string]string](t, rec)["error"] != "No document provided" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestExtractFailure(t *testing.T) {
	t.Parallel()

	ex := &fakeExtractor{err: extraction.ErrExtractionFailed}
	r := NewRouter(Deps{Extractor: ex})

	rec := do(t, r, http.MethodPost, "/api/extract", map[string]string{"documentText": "BOL"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestShipmentsListAndCreate(t *testing.T) {
	t.Parallel()

	store := shipment.NewMemoryStore()
	if _, err := shipment.Seed(context.Background(), store, "owner-1", time.Now()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	r := NewRouter(Deps{Store: store})

	rec := do(t, r, http.MethodGet, "/api/shipments?user_id=owner-1&status=cancelled", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rows := decode[[]shipment.Shipment](t, rec); len(rows) != 2 {
		t.Fatalf("expected 2 cancelled shipments, got %d", len(rows))
	}

	rec = do(t, r, http.MethodGet, "/api/shipments?user_id=owner-2", nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty list for other owner, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, r, http.MethodPost, "/api/shipments", map[string]any{
		"user_id":           "owner-2",
		"origin_city":       "Austin",
		"origin_state":      "tx",
		"destination_city":  "Denver",
		"destination_state": "CO",
		"shipper_name":      "Lone Star Goods",
		"consignee_name":    "Mile High Supply",
		"weight":            1200,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[shipment.Shipment](t, rec)
	if created.Status != shipment.StatusPending || created.OriginState != "TX" || created.OwnerID != "owner-2" {
		t.Fatalf("unexpected created shipment: %#v", created)
	}

	rec = do(t, r, http.MethodGet, "/api/shipments?user_id=owner-2&limit=5", nil)
	if rows := decode[[]shipment.Shipment](t, rec); len(rows) != 1 || rows[0].ID != created.ID {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestShipmentsRejectsBadInput(t *testing.T) {
	t.Parallel()

	r := NewRouter(Deps{Store: shipment.NewMemoryStore()})

	if rec := do(t, r, http.MethodGet, "/api/shipments", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without owner, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/api/shipments?user_id=owner-1&status=lost", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/api/shipments", map[string]any{"origin_city": "Austin"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without owner, got %d", rec.Code)
	}
	rec := do(t, r, http.MethodPost, "/api/shipments", map[string]any{
		"user_id":      "owner-1",
		"origin_city":  "Austin",
		"origin_state": "Texas",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid shipment, got %d", rec.Code)
	}
}

func TestRecoveryAndHealth(t *testing.T) {
	t.Parallel()

	r := NewRouter(Deps{Store: panicStore{}})

	rec := do(t, r, http.MethodGet, "/api/shipments?user_id=owner-1", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}

	rec = do(t, r, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = do(t, r, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "freight_") {
		t.Fatalf("expected prometheus exposition, got %d", rec.Code)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	t.Parallel()

	r := NewRouter(Deps{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(headerRequestID); got != "req-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}
