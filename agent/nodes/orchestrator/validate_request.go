package orchestratornode

import (
	"strings"
	"time"

	contractx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/contract"
)

type GraphInput struct {
	OwnerID string
	Text    string
}

type GraphOutput struct {
	Reply     string
	Rounds    int
	ToolCalls int
}

// GraphState is the per-request working set. History lives only for the
// duration of one HandleMessage call.
type GraphState struct {
	OwnerID string
	Text    string
	Now     time.Time

	History   []contractx.Message
	Rounds    int
	ToolCalls int
	Answer    string
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	ownerID := strings.TrimSpace(in.OwnerID)
	if ownerID == "" {
		return nil, contractx.ErrUnauthorized
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, contractx.ErrInvalidMessage
	}

	return &GraphState{
		OwnerID: ownerID,
		Text:    text,
		Now:     nowFn().UTC(),
		History: []contractx.Message{contractx.UserText(text)},
	}, nil
}
