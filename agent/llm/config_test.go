package llm

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/contract"
)

func TestOpenRouterForOverrides(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:               " key ",
		Model:                "default/model",
		MaxCompletionToken:   512,
		Temperature:          0.3,
		AssistantModel:       "assistant/model",
		AssistantTemperature: -1,
		ExtractorTemperature: 0,
	}

	assistant := cfg.OpenRouterFor(contractx.AgentTypeAssistant)
	if assistant.Model != "assistant/model" {
		t.Fatalf("unexpected assistant model: %s", assistant.Model)
	}
	if assistant.Temperature != 0.3 {
		t.Fatalf("expected shared temperature, got %v", assistant.Temperature)
	}
	if assistant.APIKey != "key" {
		t.Fatalf("expected trimmed api key, got %q", assistant.APIKey)
	}

	extractor := cfg.OpenRouterFor(contractx.AgentTypeExtractor)
	if extractor.Model != "default/model" {
		t.Fatalf("unexpected extractor model: %s", extractor.Model)
	}
	if extractor.Temperature != 0 {
		t.Fatalf("expected extractor temperature 0, got %v", extractor.Temperature)
	}
	if extractor.MaxCompletionToken == nil || *extractor.MaxCompletionToken != 512 {
		t.Fatalf("unexpected max tokens: %v", extractor.MaxCompletionToken)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	t.Parallel()

	err := Config{Model: "m", MaxCompletionToken: 10}.Validate()
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
