package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	orchestrator "github.com/tanpawarit/Freight-Shipment-Assistant/agent/agents/orchestrator"
	"github.com/tanpawarit/Freight-Shipment-Assistant/agent/extraction"
	logx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/logger"
	"github.com/tanpawarit/Freight-Shipment-Assistant/shipment"
)

const (
	msgUserIDRequired     = "User ID required"
	msgNoDocument         = "No document provided"
	msgChatFailed         = "Failed to process message"
	msgExtractionFailed   = "Extraction failed"
	msgShipmentListFailed = "Failed to list shipments"
)

type ChatService interface {
	HandleMessage(ctx context.Context, ownerID string, text string) (string, error)
}

type DocumentExtractor interface {
	Extract(ctx context.Context, doc extraction.Document) (extraction.Record, error)
}

type handler struct {
	chat      ChatService
	extractor DocumentExtractor
	store     shipment.Store
	validate  *validator.Validate
}

func newHandler(deps Deps) *handler {
	return &handler{
		chat:      deps.Chat,
		extractor: deps.Extractor,
		store:     deps.Store,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat handles POST /api/chat.
func (h *handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ownerID := strings.TrimSpace(req.UserID)
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUserIDRequired})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	ctx := logx.WithFields(c.Request.Context(), map[string]string{"owner_id": ownerID})
	reply, err := h.chat.HandleMessage(ctx, ownerID, req.Message)
	switch {
	case errors.Is(err, orchestrator.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUserIDRequired})
		return
	case errors.Is(err, orchestrator.ErrInvalidMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgChatFailed})
		return
	}

	c.JSON(http.StatusOK, chatResponse{Response: reply})
}

type extractRequest struct {
	DocumentText string `json:"documentText"`
	ImageBase64  string `json:"imageBase64"`
	MimeType     string `json:"mimeType"`
}

// Extract handles POST /api/extract.
func (h *handler) Extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoDocument})
		return
	}

	rec, err := h.extractor.Extract(c.Request.Context(), extraction.Document{
		Text:        req.DocumentText,
		ImageBase64: req.ImageBase64,
		MimeType:    req.MimeType,
	})
	switch {
	case errors.Is(err, extraction.ErrNoDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoDocument})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgExtractionFailed})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ListShipments handles GET /api/shipments?user_id=&status=&limit=.
func (h *handler) ListShipments(c *gin.Context) {
	ownerID := strings.TrimSpace(c.Query("user_id"))
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUserIDRequired})
		return
	}

	var filter shipment.ListFilter
	if raw := c.Query("status"); raw != "" {
		st, err := shipment.ParseStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Status = &st
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		filter.Limit = n
	}

	rows, err := h.store.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgShipmentListFailed})
		return
	}
	if rows == nil {
		rows = []shipment.Shipment{}
	}
	c.JSON(http.StatusOK, rows)
}

type createShipmentRequest struct {
	UserID           string   `json:"user_id"`
	OriginCity       string   `json:"origin_city" validate:"required"`
	OriginState      string   `json:"origin_state" validate:"required,len=2,alpha"`
	DestinationCity  string   `json:"destination_city" validate:"required"`
	DestinationState string   `json:"destination_state" validate:"required,len=2,alpha"`
	ShipperName      string   `json:"shipper_name" validate:"required"`
	ConsigneeName    string   `json:"consignee_name" validate:"required"`
	Weight           *float64 `json:"weight" validate:"omitempty,gte=0"`
	Status           string   `json:"status" validate:"omitempty,oneof=pending in_transit delivered cancelled"`
}

func (r createShipmentRequest) draft() shipment.Draft {
	d := shipment.Draft{
		OriginCity:       r.OriginCity,
		OriginState:      r.OriginState,
		DestinationCity:  r.DestinationCity,
		DestinationState: r.DestinationState,
		ShipperName:      r.ShipperName,
		ConsigneeName:    r.ConsigneeName,
		Weight:           r.Weight,
		Status:           shipment.Status(r.Status),
	}
	d.Normalize()
	return d
}

// CreateShipment handles POST /api/shipments.
func (h *handler) CreateShipment(c *gin.Context) {
	var req createShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ownerID := strings.TrimSpace(req.UserID)
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUserIDRequired})
		return
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.store.Create(c.Request.Context(), ownerID, req.draft())
	switch {
	case errors.Is(err, shipment.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create shipment"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
