package tool

import (
	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/Freight-Shipment-Assistant/shipment"
)

const (
	ToolListShipments        = "list_shipments"
	ToolGetShipment          = "get_shipment"
	ToolUpdateShipmentStatus = "update_shipment_status"
	ToolGetShipmentStats     = "get_shipment_stats"
	ToolDeleteShipment       = "delete_shipment"
)

var toolNames = []string{
	ToolListShipments,
	ToolGetShipment,
	ToolUpdateShipmentStatus,
	ToolGetShipmentStats,
	ToolDeleteShipment,
}

// Catalog returns the assistant's tool definitions in a fixed order. Every
// call builds new values, so callers may modify the result freely.
func Catalog() []*schema.ToolInfo {
	statuses := shipment.StatusNames()

	return []*schema.ToolInfo{
		{
			Name: ToolListShipments,
			Desc: "List all shipments for the user, optionally filtered by status",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"status": {
					Type: schema.String,
					Desc: "Filter by status: pending, in_transit, delivered, cancelled",
					Enum: statuses,
				},
				"limit": {
					Type: schema.Integer,
					Desc: "Maximum number of shipments to return (default 10)",
				},
			}),
		},
		{
			Name: ToolGetShipment,
			Desc: "Get details of a specific shipment by ID or by searching origin/destination",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"shipment_id": {Type: schema.String, Desc: "The UUID of the shipment"},
				"search":      {Type: schema.String, Desc: "Search term to find shipment by city name"},
			}),
		},
		{
			Name: ToolUpdateShipmentStatus,
			Desc: "Update the status of a shipment",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"shipment_id": {Type: schema.String, Desc: "The UUID of the shipment to update"},
				"search":      {Type: schema.String, Desc: "Search term to find shipment by city name (alternative to ID)"},
				"new_status": {
					Type:     schema.String,
					Desc:     "The new status to set",
					Enum:     statuses,
					Required: true,
				},
			}),
		},
		{
			Name:        ToolGetShipmentStats,
			Desc:        "Get statistics about shipments (counts by status, total weight, etc)",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name: ToolDeleteShipment,
			Desc: "Delete a shipment (use with caution)",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"shipment_id": {Type: schema.String, Desc: "The UUID of the shipment to delete"},
				"search":      {Type: schema.String, Desc: "Search term to find shipment by city name"},
			}),
		},
	}
}

// Names returns the registered tool names in catalog order.
func Names() []string {
	out := make([]string, len(toolNames))
	copy(out, toolNames)
	return out
}

func Lookup(name string) bool {
	for _, n := range toolNames {
		if n == name {
			return true
		}
	}
	return false
}
