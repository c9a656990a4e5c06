package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/contract"
	metricsx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/metrics"
	"github.com/tanpawarit/Freight-Shipment-Assistant/shipment"
)

const (
	msgShipmentNotFound   = "Shipment not found."
	msgUpdateNotFound     = "Could not find shipment to update."
	msgDeleteNotFound     = "Could not find shipment to delete."
	msgNotAuthorized      = "Shipment not found or not authorized."
	msgNoShipments        = "No shipments found."
	ambiguousNoteTemplate = "Note: more than one shipment matched %q; using the most recent one."
)

var _ contractx.ToolGateway = (*Executor)(nil)

// Executor runs catalog tools against an owner-scoped shipment store.
type Executor struct {
	store shipment.Store
	now   func() time.Time
	loc   *time.Location
}

type Option func(*Executor)

// WithClock sets the time source used for status updates.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocation sets the zone dates are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(e *Executor) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func NewExecutor(store shipment.Store, opts ...Option) *Executor {
	e := &Executor{
		store: store,
		now:   time.Now,
		loc:   time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// observation is the text a tool produced plus whether it reports a failure.
type observation struct {
	text    string
	failure bool
}

func succeeded(text string) observation { return observation{text: text} }

func failed(err error) observation {
	return observation{text: "Error: " + err.Error(), failure: true}
}

// Execute never returns an error: every outcome, including a panic inside a
// tool, is rendered as the result content.
func (e *Executor) Execute(ctx context.Context, ownerID string, call contractx.ToolCall) (result contractx.ToolResult) {
	start := time.Now()
	result = contractx.ToolResult{CallID: call.ID, Tool: call.Name}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("tool", call.Name).
				Str("call_id", call.ID).
				Msg("tool execution panicked")
			result.Content = fmt.Sprintf("Error: %v", r)
			result.IsError = true
		}

		status := "ok"
		if result.IsError {
			status = "error"
		}
		metricsx.RecordToolCall(call.Name, status, time.Since(start).Seconds())
		log.Debug().
			Str("owner_id", ownerID).
			Str("tool", call.Name).
			Str("call_id", call.ID).
			Bool("is_error", result.IsError).
			Dur("took", time.Since(start)).
			Msg("tool executed")
	}()

	args := call.Args
	if args == nil {
		args = map[string]any{}
	}

	var obs observation
	switch call.Name {
	case ToolListShipments:
		obs = e.listShipments(ctx, ownerID, args)
	case ToolGetShipment:
		obs = e.getShipment(ctx, ownerID, args)
	case ToolUpdateShipmentStatus:
		obs = e.updateShipmentStatus(ctx, ownerID, args)
	case ToolGetShipmentStats:
		obs = e.shipmentStats(ctx, ownerID)
	case ToolDeleteShipment:
		obs = e.deleteShipment(ctx, ownerID, args)
	default:
		obs = observation{text: "Unknown tool: " + call.Name, failure: true}
	}

	result.Content = obs.text
	result.IsError = obs.failure
	return result
}

func (e *Executor) listShipments(ctx context.Context, ownerID string, args map[string]any) observation {
	status, err := statusArg(args, "status")
	if err != nil {
		return failed(err)
	}

	rows, err := e.store.List(ctx, ownerID, shipment.ListFilter{Status: status, Limit: limitArg(args)})
	if err != nil {
		return failed(err)
	}
	if len(rows) == 0 {
		return succeeded(msgNoShipments)
	}

	text, err := renderList(rows, e.loc)
	if err != nil {
		return failed(err)
	}
	return succeeded(text)
}

func (e *Executor) getShipment(ctx context.Context, ownerID string, args map[string]any) observation {
	target, err := e.resolve(ctx, ownerID, args)
	if err != nil {
		return failed(err)
	}
	if !target.found {
		return succeeded(msgShipmentNotFound)
	}

	text, err := renderDetail(target.shipment, e.loc)
	if err != nil {
		return failed(err)
	}
	return succeeded(target.prefix(text))
}

func (e *Executor) updateShipmentStatus(ctx context.Context, ownerID string, args map[string]any) observation {
	status, err := statusArg(args, "new_status")
	if err != nil {
		return failed(err)
	}
	if status == nil {
		return failed(errors.New("new_status is required"))
	}

	id, note, err := e.resolveID(ctx, ownerID, args)
	if err != nil {
		return failed(err)
	}
	if id == "" {
		return succeeded(msgUpdateNotFound)
	}

	updated, err := e.store.UpdateStatus(ctx, ownerID, id, *status, e.now())
	if errors.Is(err, shipment.ErrNotFound) {
		return succeeded(msgNotAuthorized)
	}
	if err != nil {
		return failed(err)
	}

	text := fmt.Sprintf("Successfully updated shipment to %q. Route: %s", string(*status), updated.Lane())
	return succeeded(withNote(note, text))
}

func (e *Executor) shipmentStats(ctx context.Context, ownerID string) observation {
	rows, err := e.store.List(ctx, ownerID, shipment.ListFilter{})
	if err != nil {
		return failed(err)
	}

	text, err := renderStats(rows)
	if err != nil {
		return failed(err)
	}
	return succeeded(text)
}

func (e *Executor) deleteShipment(ctx context.Context, ownerID string, args map[string]any) observation {
	id, note, err := e.resolveID(ctx, ownerID, args)
	if err != nil {
		return failed(err)
	}
	if id == "" {
		return succeeded(msgDeleteNotFound)
	}

	// The record is gone after Delete, so read the lane first.
	existing, err := e.store.Get(ctx, ownerID, id)
	if errors.Is(err, shipment.ErrNotFound) {
		return succeeded(msgNotAuthorized)
	}
	if err != nil {
		return failed(err)
	}

	if err := e.store.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, shipment.ErrNotFound) {
			return succeeded(msgNotAuthorized)
		}
		return failed(err)
	}

	return succeeded(withNote(note, "Successfully deleted shipment: "+existing.Lane()))
}

type resolved struct {
	shipment shipment.Shipment
	found    bool
	note     string
}

func (r resolved) prefix(text string) string {
	return withNote(r.note, text)
}

// resolve finds the target shipment by shipment_id, then by search term.
func (e *Executor) resolve(ctx context.Context, ownerID string, args map[string]any) (resolved, error) {
	if id := stringArg(args, "shipment_id"); id != "" {
		sh, err := e.store.Get(ctx, ownerID, id)
		if errors.Is(err, shipment.ErrNotFound) {
			return resolved{}, nil
		}
		if err != nil {
			return resolved{}, err
		}
		return resolved{shipment: sh, found: true}, nil
	}

	term := stringArg(args, "search")
	if term == "" {
		return resolved{}, nil
	}

	// Two rows are enough to tell whether the term was ambiguous.
	rows, err := e.store.Search(ctx, ownerID, term, 2)
	if err != nil {
		return resolved{}, err
	}
	if len(rows) == 0 {
		return resolved{}, nil
	}

	out := resolved{shipment: rows[0], found: true}
	if len(rows) > 1 {
		out.note = fmt.Sprintf(ambiguousNoteTemplate, term)
	}
	return out, nil
}

// resolveID is resolve for mutations: an explicit shipment_id is passed
// through unchecked so that the mutation itself decides ownership.
func (e *Executor) resolveID(ctx context.Context, ownerID string, args map[string]any) (string, string, error) {
	if id := stringArg(args, "shipment_id"); id != "" {
		return id, "", nil
	}
	target, err := e.resolve(ctx, ownerID, args)
	if err != nil || !target.found {
		return "", "", err
	}
	return target.shipment.ID, target.note, nil
}

func withNote(note, text string) string {
	if note == "" {
		return text
	}
	return note + "\n" + text
}
