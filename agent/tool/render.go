package tool

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tanpawarit/Freight-Shipment-Assistant/shipment"
)

const (
	dateLayout     = "1/2/2006"
	dateTimeLayout = "1/2/2006, 3:04:05 PM"
	notAvailable   = "N/A"
)

type listItem struct {
	ID        string `json:"id"`
	Route     string `json:"route"`
	Shipper   string `json:"shipper"`
	Consignee string `json:"consignee"`
	Weight    string `json:"weight"`
	Status    string `json:"status"`
	Created   string `json:"created"`
}

type detailView struct {
	ID          string `json:"id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Shipper     string `json:"shipper"`
	Consignee   string `json:"consignee"`
	Weight      string `json:"weight"`
	Status      string `json:"status"`
	Created     string `json:"created"`
	Updated     string `json:"updated"`
}

type statusBreakdown struct {
	Pending   int `json:"pending"`
	InTransit int `json:"in_transit"`
	Delivered int `json:"delivered"`
	Cancelled int `json:"cancelled"`
}

type statsView struct {
	TotalShipments   int             `json:"total_shipments"`
	StatusBreakdown  statusBreakdown `json:"status_breakdown"`
	TotalWeight      string          `json:"total_weight"`
	HeaviestShipment string          `json:"heaviest_shipment"`
}

func renderList(rows []shipment.Shipment, loc *time.Location) (string, error) {
	items := make([]listItem, 0, len(rows))
	for _, s := range rows {
		items = append(items, listItem{
			ID:        s.ID,
			Route:     s.Lane(),
			Shipper:   s.ShipperName,
			Consignee: s.ConsigneeName,
			Weight:    formatWeight(s.Weight),
			Status:    s.Status.String(),
			Created:   s.CreatedAt.In(loc).Format(dateLayout),
		})
	}
	return marshalIndent(items)
}

func renderDetail(s shipment.Shipment, loc *time.Location) (string, error) {
	return marshalIndent(detailView{
		ID:          s.ID,
		Origin:      s.Origin(),
		Destination: s.Destination(),
		Shipper:     s.ShipperName,
		Consignee:   s.ConsigneeName,
		Weight:      formatWeight(s.Weight),
		Status:      s.Status.String(),
		Created:     s.CreatedAt.In(loc).Format(dateTimeLayout),
		Updated:     s.UpdatedAt.In(loc).Format(dateTimeLayout),
	})
}

// renderStats aggregates over rows in store order. Missing weights count as
// zero; the heaviest shipment is the first one with the largest weight.
func renderStats(rows []shipment.Shipment) (string, error) {
	view := statsView{TotalShipments: len(rows), HeaviestShipment: notAvailable}

	var (
		total    float64
		heaviest *shipment.Shipment
	)
	for i := range rows {
		s := rows[i]
		switch s.Status {
		case shipment.StatusPending:
			view.StatusBreakdown.Pending++
		case shipment.StatusInTransit:
			view.StatusBreakdown.InTransit++
		case shipment.StatusDelivered:
			view.StatusBreakdown.Delivered++
		case shipment.StatusCancelled:
			view.StatusBreakdown.Cancelled++
		}
		if s.Weight == nil {
			continue
		}
		total += *s.Weight
		if heaviest == nil || *s.Weight > *heaviest.Weight {
			heaviest = &rows[i]
		}
	}

	view.TotalWeight = humanize.Commaf(total) + " lbs"
	if heaviest != nil {
		view.HeaviestShipment = heaviest.OriginCity + " → " + heaviest.DestinationCity +
			" (" + formatNumber(*heaviest.Weight) + " lbs)"
	}
	return marshalIndent(view)
}

func formatWeight(w *float64) string {
	if w == nil {
		return notAvailable
	}
	return formatNumber(*w) + " lbs"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func marshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
