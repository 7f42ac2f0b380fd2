package extract

import (
	"fmt"

	"github.com/mmr-tortoise/receipted/internal/schema"
)

// systemPrompt is the extraction instruction sent ahead of the schema.
// The wording is tuned for European receipts: VAT identification first,
// numeric normalization of percentages, and dd.mm.yyyy dates.
const systemPrompt = `Extract the following details from the provided image of receipt document. First look for VAT identification number (vatNumber) in the document and associated name of the company (companyName).
Ensure all fields from the schema are populated if the information is present in the document. If a piece of information is not found, you may omit the field or use a suitable placeholder like 'N/A' if the schema requires it, but prioritize extracting actual values. For numerical values (prices, VAT amount, VAT rate), provide them as numbers (float).
For VAT rate, if it's written as e.g. '21%', provide the number 21. Also, extract the date of sale (transaction date) from the receipt always in dd.mm.yyyy format. It might be in dd/mm/yyyy or dd.mm.yyyy format on document. If multiple dates are present (e.g., issue date, due date), use the primary transaction sale date.`

// BuildInstruction renders the full extraction instruction: the system
// text, the field schema as JSON, and the JSON-only response directive.
// The result is sent as the text part of the vision chat message.
func BuildInstruction(s schema.Schema) (string, error) {
	schemaJSON, err := s.RenderJSON()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`%s

Please extract the information according to this JSON schema:
%s

Return ONLY valid JSON that matches this schema. Do not include any explanatory text.`,
		systemPrompt, schemaJSON), nil
}
