package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/contract"
	promptx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/prompt"
	logx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/logger"
	metricsx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/metrics"
	openrouterx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/openrouter"
)

const defaultMimeType = "image/png"

var (
	ErrNoDocument       = errors.New("no document provided")
	ErrExtractionFailed = errors.New("extraction failed")
)

// Document is either pasted text or a base64 encoded image. The image wins
// when both are set.
type Document struct {
	Text        string
	ImageBase64 string
	MimeType    string
}

func (d Document) kind() string {
	if strings.TrimSpace(d.ImageBase64) != "" {
		return "image"
	}
	return "text"
}

// Record is the extracted shipment. Fields the model could not find stay nil
// and serialise as null.
type Record struct {
	OriginCity       *string  `json:"origin_city"`
	OriginState      *string  `json:"origin_state"`
	DestinationCity  *string  `json:"destination_city"`
	DestinationState *string  `json:"destination_state"`
	ShipperName      *string  `json:"shipper_name"`
	ConsigneeName    *string  `json:"consignee_name"`
	Weight           *float64 `json:"weight"`
	PONumber         *string  `json:"po_number"`
	PickupDate       *string  `json:"pickup_date"`
}

type Extractor struct {
	client      *openaisdk.Client
	model       string
	maxTokens   int
	temperature float32
	prompts     promptx.PromptSet
}

func New(client *openaisdk.Client, cfg openrouterx.Config) (*Extractor, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrValidation)
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		return nil, fmt.Errorf("%w: extractor model is required", contractx.ErrValidation)
	}

	prompts := promptx.LoadPromptSet()
	if err := prompts.Validate(); err != nil {
		return nil, err
	}

	maxTokens := 1024
	if cfg.MaxCompletionToken != nil && *cfg.MaxCompletionToken > 0 {
		maxTokens = *cfg.MaxCompletionToken
	}

	return &Extractor{
		client:      client,
		model:       modelName,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		prompts:     prompts,
	}, nil
}

// Extract makes one completion call and decodes the reply into a Record.
func (e *Extractor) Extract(ctx context.Context, doc Document) (Record, error) {
	content, err := e.userContent(doc)
	if err != nil {
		return Record{}, err
	}

	start := time.Now()
	kind := doc.kind()
	logger := logx.FromContext(ctx)

	resp, err := e.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:               openaisdk.ChatModel(e.model),
		Messages:            []openaisdk.ChatCompletionMessageParamUnion{openaisdk.UserMessage(content)},
		MaxCompletionTokens: openaisdk.Int(int64(e.maxTokens)),
		Temperature:         openaisdk.Float(float64(e.temperature)),
	})
	if err != nil {
		metricsx.RecordExtraction(kind, "model_error", time.Since(start).Seconds())
		logger.Error().Err(err).Str("kind", kind).Msg("extraction call failed")
		return Record{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	var reply string
	if len(resp.Choices) > 0 {
		reply = resp.Choices[0].Message.Content
	}

	rec, err := parseRecord(reply)
	if err != nil {
		metricsx.RecordExtraction(kind, "parse_error", time.Since(start).Seconds())
		logger.Warn().Err(err).Str("kind", kind).Msg("extraction reply rejected")
		return Record{}, err
	}

	metricsx.RecordExtraction(kind, "ok", time.Since(start).Seconds())
	logger.Debug().
		Str("kind", kind).
		Dur("took", time.Since(start)).
		Msg("document extracted")
	return rec, nil
}

func (e *Extractor) userContent(doc Document) ([]openaisdk.ChatCompletionContentPartUnionParam, error) {
	if data := strings.TrimSpace(doc.ImageBase64); data != "" {
		mime := strings.TrimSpace(doc.MimeType)
		if mime == "" {
			mime = defaultMimeType
		}
		return []openaisdk.ChatCompletionContentPartUnionParam{
			openaisdk.ImageContentPart(openaisdk.ChatCompletionContentPartImageImageURLParam{
				URL: "data:" + mime + ";base64," + data,
			}),
			openaisdk.TextContentPart(e.prompts.ImageInstruction()),
		}, nil
	}
	if text := strings.TrimSpace(doc.Text); text != "" {
		return []openaisdk.ChatCompletionContentPartUnionParam{
			openaisdk.TextContentPart(e.prompts.TextInstruction(text)),
		}, nil
	}
	return nil, ErrNoDocument
}

// parseRecord accepts a bare JSON object, optionally wrapped in a markdown
// code fence.
func parseRecord(reply string) (Record, error) {
	body := stripFence(reply)
	if body == "" {
		return Record{}, fmt.Errorf("%w: empty reply", ErrExtractionFailed)
	}
	if !strings.HasPrefix(body, "{") {
		return Record{}, fmt.Errorf("%w: reply is not a JSON object", ErrExtractionFailed)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Record{}, fmt.Errorf("%w: trailing data after JSON object", ErrExtractionFailed)
	}
	return rec, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
