package models

import (
	"encoding/json"
	"strings"
)

// Entity is the mutable validation envelope for one invoice party or line item.
// The claimed attribute values arrive as a flat JSON object; validation annotations
// (error_status, error, recommended_fields) are injected next to them on the way out,
// so callers get their own payload back, annotated in place.
type Entity struct {
	Fields            map[string]string
	ErrorStatus       bool
	Error             map[string]string
	RecommendedFields []map[string]any
}

// Well-known claimed attribute keys produced by the extraction pipeline.
const (
	FieldName        = "name"
	FieldAddress     = "address"
	FieldGstNo       = "gst_no"
	FieldStateName   = "state_name"
	FieldStateCode   = "state_code"
	FieldPanNumber   = "pan_number"
	FieldInvoiceNo   = "invoice_no"
	FieldInvoiceDate = "invoice_date"
	FieldItemName    = "item_name"
)

// Field returns the claimed value for key, or "" when the extractor omitted it.
func (e *Entity) Field(key string) string {
	if e == nil || e.Fields == nil {
		return ""
	}
	return e.Fields[key]
}

// ItemName returns the claimed product name of a line item. Some extractors emit
// item_name, others plain name.
func (e *Entity) ItemName() string {
	if v := e.Field(FieldItemName); v != "" {
		return v
	}
	return e.Field(FieldName)
}

// ResetValidation clears annotations from a previous run so validation is idempotent.
func (e *Entity) ResetValidation() {
	e.ErrorStatus = false
	e.Error = map[string]string{}
	e.RecommendedFields = []map[string]any{}
}

func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Fields = make(map[string]string, len(raw))
	for key, value := range raw {
		// Annotations from a previous validation pass are dropped; they are
		// recomputed from scratch on every request.
		switch key {
		case "error_status", "error", "recommended_fields":
			continue
		}

		var s *string
		if err := json.Unmarshal(value, &s); err == nil {
			if s != nil {
				e.Fields[key] = *s
			} else {
				e.Fields[key] = ""
			}
			continue
		}
		// Non-string scalars (numeric state codes etc.) keep their literal text.
		e.Fields[key] = strings.Trim(string(value), `"`)
	}
	return nil
}

func (e *Entity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+3)
	for key, value := range e.Fields {
		out[key] = value
	}

	errs := e.Error
	if errs == nil {
		errs = map[string]string{}
	}
	recommended := e.RecommendedFields
	if recommended == nil {
		recommended = []map[string]any{}
	}

	out["error_status"] = e.ErrorStatus
	out["error"] = errs
	out["recommended_fields"] = recommended
	return json.Marshal(out)
}

// InvoicePayload is one extracted invoice as produced by the upstream
// document-extraction pipeline. Entities absent from the payload are skipped.
type InvoicePayload struct {
	Supplier  *Entity   `json:"supplier"`
	Buyer     *Entity   `json:"buyer"`
	Consignee *Entity   `json:"consignee"`
	LineItems []*Entity `json:"line_items"`
}
