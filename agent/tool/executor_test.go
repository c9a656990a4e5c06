package tool

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/contract"
	"github.com/tanpawarit/Freight-Shipment-Assistant/shipment"
)

var fixedNow = time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

func seedStore(t *testing.T) *shipment.MemoryStore {
	t.Helper()
	store := shipment.NewMemoryStore()
	drafts := []shipment.Draft{
		{OriginCity: "Chicago", OriginState: "IL", DestinationCity: "Detroit", DestinationState: "MI", ShipperName: "Windy City Exports", ConsigneeName: "Motor City Imports", Weight: floatPtr(22000), Status: shipment.StatusInTransit},
		{OriginCity: "Pittsburgh", OriginState: "PA", DestinationCity: "Cleveland", DestinationState: "OH", ShipperName: "Steel City Transport", ConsigneeName: "Rock & Roll Receiving", Weight: floatPtr(19500), Status: shipment.StatusDelivered},
		{OriginCity: "Detroit", OriginState: "MI", DestinationCity: "Toledo", DestinationState: "OH", ShipperName: "Motor City Imports", ConsigneeName: "Glass City Depot", Status: shipment.StatusPending},
	}
	for i, d := range drafts {
		d.CreatedAt = fixedNow.Add(-time.Duration(i) * 24 * time.Hour)
		if _, err := store.Create(context.Background(), "owner-1", d); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	return store
}

func newTestExecutor(store shipment.Store) *Executor {
	return NewExecutor(store, WithClock(func() time.Time { return fixedNow }))
}

func exec(e *Executor, owner, name string, args map[string]any) contractx.ToolResult {
	return e.Execute(context.Background(), owner, contractx.ToolCall{ID: "call_1", Name: name, Args: args})
}

func findByCity(t *testing.T, store shipment.Store, city string) shipment.Shipment {
	t.Helper()
	rows, err := store.Search(context.Background(), "owner-1", city, 1)
	if err != nil || len(rows) == 0 {
		t.Fatalf("Search(%s) = %v, %v", city, rows, err)
	}
	return rows[0]
}

func TestExecuteListShipments(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(seedStore(t))
	out := exec(e, "owner-1", ToolListShipments, map[string]any{"status": "delivered"})
	if out.CallID != "call_1" || out.Tool != ToolListShipments {
		t.Fatalf("unexpected result identity: %#v", out)
	}
	if out.IsError {
		t.Fatalf("unexpected error: %s", out.Content)
	}

	var items []map[string]string
	if err := json.Unmarshal([]byte(out.Content), &items); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, out.Content)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 delivered shipment, got %d", len(items))
	}
	item := items[0]
	if item["route"] != "Pittsburgh, PA → Cleveland, OH" {
		t.Fatalf("unexpected route: %s", item["route"])
	}
	if item["weight"] != "19500 lbs" {
		t.Fatalf("unexpected weight: %s", item["weight"])
	}
	if item["created"] != "5/31/2025" {
		t.Fatalf("unexpected created date: %s", item["created"])
	}
	if !strings.Contains(out.Content, "Rock & Roll Receiving") {
		t.Fatalf("expected unescaped ampersand: %s", out.Content)
	}
	if !strings.Contains(out.Content, "\n  {") {
		t.Fatalf("expected indented JSON: %s", out.Content)
	}
}

func TestExecuteListShipmentsLimitAndEmpty(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(seedStore(t))
	out := exec(e, "owner-1", ToolListShipments, map[string]any{"limit": float64(2)})
	var items []map[string]string
	if err := json.Unmarshal([]byte(out.Content), &items); err != nil {
		t.Fatalf("list output is not JSON: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0]["route"] != "Chicago, IL → Detroit, MI" {
		t.Fatalf("expected newest first, got %s", items[0]["route"])
	}
	if items[1]["weight"] != "19500 lbs" {
		t.Fatalf("unexpected second item: %#v", items[1])
	}

	out = exec(e, "owner-2", ToolListShipments, nil)
	if out.Content != "No shipments found." {
		t.Fatalf("unexpected empty output: %q", out.Content)
	}
}

func TestExecuteListShipmentsInvalidStatus(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(seedStore(t))
	out := exec(e, "owner-1", ToolListShipments, map[string]any{"status": "lost"})
	if !out.IsError || !strings.HasPrefix(out.Content, "Error: ") {
		t.Fatalf("expected error observation, got %#v", out)
	}
}

func TestExecuteGetShipmentByIDAndSearch(t *testing.T) {
	t.Parallel()

	store := seedStore(t)
	e := newTestExecutor(store)
	target := findByCity(t, store, "Pittsburgh")

	out := exec(e, "owner-1", ToolGetShipment, map[string]any{"shipment_id": target.ID})
	var detail map[string]string
	if err := json.Unmarshal([]byte(out.Content), &detail); err != nil {
		t.Fatalf("detail output is not JSON: %v\n%s", err, out.Content)
	}
	if detail["origin"] != "Pittsburgh, PA" || detail["destination"] != "Cleveland, OH" {
		t.Fatalf("unexpected detail: %#v", detail)
	}
	if detail["created"] != "5/31/2025, 3:04:05 PM" {
		t.Fatalf("unexpected created: %s", detail["created"])
	}

	out = exec(e, "owner-1", ToolGetShipment, map[string]any{"search": "cleve"})
	if !strings.Contains(out.Content, target.ID) {
		t.Fatalf("search did not resolve target: %s", out.Content)
	}

	out = exec(e, "owner-1", ToolGetShipment, map[string]any{})
	if out.Content != "Shipment not found." {
		t.Fatalf("unexpected output without target: %q", out.Content)
	}

	out = exec(e, "owner-2", ToolGetShipment, map[string]any{"shipment_id": target.ID})
	if out.Content != "Shipment not found." {
		t.Fatalf("other owner must not see shipment: %q", out.Content)
	}
}

func TestExecuteGetShipmentAmbiguousSearchAddsNote(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(seedStore(t))
	out := exec(e, "owner-1", ToolGetShipment, map[string]any{"search": "detroit"})
	lines := strings.SplitN(out.Content, "\n", 2)
	if lines[0] != `Note: more than one shipment matched "detroit"; using the most recent one.` {
		t.Fatalf("unexpected note: %q", lines[0])
	}
	if !strings.Contains(lines[1], `"origin": "Chicago, IL"`) {
		t.Fatalf("expected most recent match, got %s", lines[1])
	}
}

func TestExecuteUpdateShipmentStatus(t *testing.T) {
	t.Parallel()

	store := seedStore(t)
	later := fixedNow.Add(time.Hour)
	e := NewExecutor(store, WithClock(func() time.Time { return later }))

	out := exec(e, "owner-1", ToolUpdateShipmentStatus, map[string]any{"search": "Chicago", "new_status": "delivered"})
	want := `Successfully updated shipment to "delivered". Route: Chicago, IL → Detroit, MI`
	if out.Content != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", out.Content, want)
	}

	sh := findByCity(t, store, "Chicago")
	if sh.Status != shipment.StatusDelivered {
		t.Fatalf("status not persisted: %s", sh.Status)
	}
	if !sh.UpdatedAt.Equal(later) {
		t.Fatalf("updated_at not set to clock: %v", sh.UpdatedAt)
	}
}

func TestExecuteUpdateShipmentStatusNotFoundPaths(t *testing.T) {
	t.Parallel()

	store := seedStore(t)
	e := newTestExecutor(store)
	target := findByCity(t, store, "Chicago")

	out := exec(e, "owner-1", ToolUpdateShipmentStatus, map[string]any{"search": "Boise", "new_status": "delivered"})
	if out.Content != "Could not find shipment to update." {
		t.Fatalf("unexpected output: %q", out.Content)
	}

	out = exec(e, "owner-2", ToolUpdateShipmentStatus, map[string]any{"shipment_id": target.ID, "new_status": "cancelled"})
	if out.Content != "Shipment not found or not authorized." {
		t.Fatalf("unexpected output: %q", out.Content)
	}
	if got := findByCity(t, store, "Chicago"); got.Status != shipment.StatusInTransit {
		t.Fatalf("other owner modified shipment: %s", got.Status)
	}

	out = exec(e, "owner-1", ToolUpdateShipmentStatus, map[string]any{"shipment_id": target.ID})
	if !out.IsError {
		t.Fatalf("expected error for missing new_status, got %q", out.Content)
	}
}

func TestExecuteShipmentStats(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(seedStore(t))
	out := exec(e, "owner-1", ToolGetShipmentStats, nil)

	var stats struct {
		Total     int            `json:"total_shipments"`
		Breakdown map[string]int `json:"status_breakdown"`
		Weight    string         `json:"total_weight"`
		Heaviest  string         `json:"heaviest_shipment"`
	}
	if err := json.Unmarshal([]byte(out.Content), &stats); err != nil {
		t.Fatalf("stats output is not JSON: %v\n%s", err, out.Content)
	}
	if stats.Total != 3 {
		t.Fatalf("unexpected total: %d", stats.Total)
	}
	if stats.Breakdown["in_transit"] != 1 || stats.Breakdown["cancelled"] != 0 {
		t.Fatalf("unexpected breakdown: %#v", stats.Breakdown)
	}
	if stats.Weight != "41,500 lbs" {
		t.Fatalf("unexpected total weight: %s", stats.Weight)
	}
	if stats.Heaviest != "Chicago → Detroit (22000 lbs)" {
		t.Fatalf("unexpected heaviest: %s", stats.Heaviest)
	}
}

func TestExecuteShipmentStatsEmpty(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(shipment.NewMemoryStore())
	out := exec(e, "owner-1", ToolGetShipmentStats, nil)
	if out.IsError {
		t.Fatalf("unexpected error: %s", out.Content)
	}
	for _, want := range []string{`"total_shipments": 0`, `"pending": 0`, `"total_weight": "0 lbs"`, `"heaviest_shipment": "N/A"`} {
		if !strings.Contains(out.Content, want) {
			t.Fatalf("expected %s in %s", want, out.Content)
		}
	}
}

func TestExecuteDeleteShipment(t *testing.T) {
	t.Parallel()

	store := seedStore(t)
	e := newTestExecutor(store)
	target := findByCity(t, store, "Pittsburgh")

	out := exec(e, "owner-2", ToolDeleteShipment, map[string]any{"shipment_id": target.ID})
	if out.Content != "Shipment not found or not authorized." {
		t.Fatalf("unexpected output: %q", out.Content)
	}

	out = exec(e, "owner-1", ToolDeleteShipment, map[string]any{"search": "Pittsburgh"})
	if out.Content != "Successfully deleted shipment: Pittsburgh, PA → Cleveland, OH" {
		t.Fatalf("unexpected output: %q", out.Content)
	}
	if _, err := store.Get(context.Background(), "owner-1", target.ID); !errors.Is(err, shipment.ErrNotFound) {
		t.Fatalf("shipment still present: %v", err)
	}

	out = exec(e, "owner-1", ToolDeleteShipment, map[string]any{})
	if out.Content != "Could not find shipment to delete." {
		t.Fatalf("unexpected output: %q", out.Content)
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	t.Parallel()

	out := exec(newTestExecutor(shipment.NewMemoryStore()), "owner-1", "math.evaluate", nil)
	if out.Content != "Unknown tool: math.evaluate" || !out.IsError {
		t.Fatalf("unexpected output: %#v", out)
	}
}

type brokenStore struct {
	shipment.Store
	err      error
	panicMsg string
}

func (s brokenStore) List(ctx context.Context, ownerID string, filter shipment.ListFilter) ([]shipment.Shipment, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return nil, s.err
}

func TestExecuteRendersStoreFailures(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(brokenStore{err: errors.New("connection refused")})
	out := exec(e, "owner-1", ToolListShipments, nil)
	if out.Content != "Error: connection refused" || !out.IsError {
		t.Fatalf("unexpected output: %#v", out)
	}

	e = newTestExecutor(brokenStore{panicMsg: "boom"})
	out = exec(e, "owner-1", ToolGetShipmentStats, nil)
	if out.Content != "Error: boom" || !out.IsError {
		t.Fatalf("unexpected output after panic: %#v", out)
	}
	if out.CallID != "call_1" {
		t.Fatalf("call id lost after panic: %s", out.CallID)
	}
}

func TestLimitArg(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want int
	}{
		{nil, 10},
		{float64(0), 10},
		{float64(-3), 10},
		{float64(5), 5},
		{"7", 7},
		{json.Number("25"), 25},
		{float64(500), 100},
	}
	for _, tc := range cases {
		args := map[string]any{}
		if tc.in != nil {
			args["limit"] = tc.in
		}
		if got := limitArg(args); got != tc.want {
			t.Fatalf("limitArg(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
