package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Answer)
	if reply == "" {
		reply = FallbackReply
	}
	return GraphOutput{
		Reply:     reply,
		Rounds:    in.Rounds,
		ToolCalls: in.ToolCalls,
	}, nil
}
