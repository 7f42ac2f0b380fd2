// Package schema defines the set of fields the model is asked to extract
// from a receipt.
//
// The field set is deliberately configuration, not a data contract: the
// extraction result is never validated against it. The schema's only role
// is to be rendered into the prompt as a JSON schema, steering the model
// toward a consistent document shape. A project can replace the built-in
// receipt fields with its own via a YAML file referenced from the config.
package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldSpec describes a single field the model is prompted to extract.
type FieldSpec struct {
	// Name is the JSON key the model should emit.
	Name string `yaml:"name"`

	// Type is the JSON schema type ("string", "number", ...).
	Type string `yaml:"type"`

	// Description tells the model what the field means and how to
	// normalize it. This text carries most of the extraction quality,
	// so the built-in descriptions are intentionally detailed.
	Description string `yaml:"description"`

	// Required marks the field as required in the rendered JSON schema.
	Required bool `yaml:"required"`
}

// Schema is an ordered list of extraction fields.
type Schema struct {
	Fields []FieldSpec `yaml:"fields"`
}

// Default returns the built-in receipt field schema: VAT identification,
// amounts, rate, and the transaction date.
func Default() Schema {
	return Schema{Fields: []FieldSpec{
		{
			Name:        "companyName",
			Type:        "string",
			Description: "The legal name of the company that issued the receipt always associated with the VAT identification number. Legal name always includes legal form (e.g. s.r.o., a.s. etc.)",
			Required:    true,
		},
		{
			Name:        "vatNumber",
			Type:        "string",
			Description: "The VAT identification number of the company.",
			Required:    true,
		},
		{
			Name:        "priceWithoutVAT",
			Type:        "number",
			Description: "The total price of goods/services before VAT is applied. Use 0.0 if not explicitly found.",
			Required:    true,
		},
		{
			Name:        "vat",
			Type:        "number",
			Description: "The total VAT amount charged. Use 0.0 if not explicitly found.",
			Required:    true,
		},
		{
			Name:        "vatRate",
			Type:        "number",
			Description: "The VAT rate as a percentage (e.g., 21 for 21%). Use 0.0 if not explicitly found.",
			Required:    true,
		},
		{
			Name:        "priceIncludingVAT",
			Type:        "number",
			Description: "The final price including VAT. This is usually the most prominent total amount.",
			Required:    true,
		},
		{
			Name:        "dateOfSale",
			Type:        "string",
			Description: "The date of sale or transaction date from the receipt, in dd.mm.yyyy format.",
			Required:    true,
		},
	}}
}

// LoadFile reads a schema override from a YAML file. The file must define
// at least one field — an empty schema would produce a prompt asking the
// model to extract nothing.
func LoadFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	if len(s.Fields) == 0 {
		return Schema{}, fmt.Errorf("schema file %s defines no fields", path)
	}
	for _, f := range s.Fields {
		if f.Name == "" {
			return Schema{}, fmt.Errorf("schema file %s contains a field with no name", path)
		}
	}

	return s, nil
}

// jsonSchemaProperty is one entry in the rendered JSON schema's
// "properties" object.
type jsonSchemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// jsonSchema is the JSON schema document embedded into the prompt.
type jsonSchema struct {
	Type       string                        `json:"type"`
	Required   []string                      `json:"required,omitempty"`
	Properties map[string]jsonSchemaProperty `json:"properties"`
}

// RenderJSON renders the schema as an indented JSON schema document
// for embedding into the extraction prompt.
func (s Schema) RenderJSON() (string, error) {
	doc := jsonSchema{
		Type:       "object",
		Properties: make(map[string]jsonSchemaProperty, len(s.Fields)),
	}
	for _, f := range s.Fields {
		fieldType := f.Type
		if fieldType == "" {
			fieldType = "string"
		}
		doc.Properties[f.Name] = jsonSchemaProperty{
			Type:        fieldType,
			Description: f.Description,
		}
		if f.Required {
			doc.Required = append(doc.Required, f.Name)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render schema: %w", err)
	}
	return string(data), nil
}
