package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/contract"
)

const documentPlaceholder = "{{document}}"

var (
	//go:embed template/assistant.txt
	assistantRaw string

	//go:embed template/extraction_fields.txt
	extractionFieldsRaw string

	//go:embed template/extraction_image.txt
	extractionImageRaw string

	//go:embed template/extraction_text.txt
	extractionTextRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Assistant        string
	ExtractionFields string
	ExtractionImage  string
	ExtractionText   string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Assistant:        strings.TrimSpace(assistantRaw),
		ExtractionFields: strings.TrimSpace(extractionFieldsRaw),
		ExtractionImage:  strings.TrimSpace(extractionImageRaw),
		ExtractionText:   strings.TrimSpace(extractionTextRaw),
	}
}

func (p PromptSet) Validate() error {
	switch {
	case p.Assistant == "":
		return fmt.Errorf("%w: assistant", contractx.ErrPromptMissing)
	case p.ExtractionFields == "":
		return fmt.Errorf("%w: extraction fields", contractx.ErrPromptMissing)
	case p.ExtractionImage == "":
		return fmt.Errorf("%w: extraction image", contractx.ErrPromptMissing)
	case !strings.Contains(p.ExtractionText, documentPlaceholder):
		return fmt.Errorf("%w: extraction text placeholder", contractx.ErrPromptMissing)
	}
	return nil
}

// ImageInstruction is the text part sent alongside a document image.
func (p PromptSet) ImageInstruction() string {
	return p.ExtractionImage + "\n\n" + p.ExtractionFields
}

// TextInstruction embeds the document text into the extraction instruction.
func (p PromptSet) TextInstruction(document string) string {
	body := strings.Replace(p.ExtractionText, documentPlaceholder, document, 1)
	return body + "\n\n" + p.ExtractionFields
}
