package validation

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/models"
	"bitbucket.org/mmdatafocus/invoice_validation_backend/utils"
)

// validateNameInMasterData checks exact (case-insensitive) existence of a name
// in the given master-data table, degrading to ranked fuzzy candidates on a
// miss. When a GST number was supplied the identity is cross-checked by the
// GST validator already, so the lookup is skipped.
func (e *Engine) validateNameInMasterData(ctx context.Context, role Role, table string, name string, gstNo string) *FieldResult {
	key := FieldKey{Role: role, Field: models.FieldName}

	if utils.IsBlank(name) {
		message := "Name is required"
		if table == TableProducts {
			message = "Product name is required"
		}
		return &FieldResult{Key: key, Code: CodeMissingField, Message: message}
	}

	if !utils.IsBlank(gstNo) {
		return nil
	}

	var exists bool
	var err error
	switch table {
	case TableProducts:
		exists, err = e.Store.ProductNameExists(ctx, name)
	default:
		exists, err = e.Store.OrganizationNameExists(ctx, name)
	}
	if err != nil {
		return &FieldResult{Key: key, Code: CodeLookupFailed, Message: "Database error: " + err.Error()}
	}
	if exists {
		return nil
	}

	recommendations, err := e.Similarity.RecommendNames(ctx, table, strings.TrimSpace(name))
	if err != nil {
		// Degrade to "not found, no suggestions" rather than failing the request.
		return &FieldResult{Key: key, Code: CodeLookupFailed, Message: "Error fetching name recommendations: " + err.Error()}
	}

	return &FieldResult{
		Key:             key,
		Code:            CodeNotFound,
		Message:         fmt.Sprintf("Name '%s' not found in table '%s'", name, table),
		Recommendations: recommendations,
	}
}

// validateAddressInMasterData checks exact (case-insensitive, trimmed)
// existence of an address among organizations. A supplied GST number or name
// corroborates the address transitively, so the lookup is skipped to avoid
// double-flagging.
func (e *Engine) validateAddressInMasterData(ctx context.Context, role Role, address string, gstNo string, name string) *FieldResult {
	key := FieldKey{Role: role, Field: models.FieldAddress}

	if !utils.IsBlank(gstNo) || !utils.IsBlank(name) {
		return nil
	}

	if utils.IsBlank(address) {
		return &FieldResult{Key: key, Code: CodeMissingField, Message: "Address is required"}
	}

	exists, err := e.Store.OrganizationAddressExists(ctx, address)
	if err != nil {
		return &FieldResult{Key: key, Code: CodeLookupFailed, Message: "Database error: " + err.Error()}
	}
	if exists {
		return nil
	}

	recommendations, err := e.Similarity.RecommendAddresses(ctx, strings.TrimSpace(address))
	if err != nil {
		return &FieldResult{Key: key, Code: CodeLookupFailed, Message: "Error fetching address recommendations: " + err.Error()}
	}

	return &FieldResult{
		Key:             key,
		Code:            CodeNotFound,
		Message:         fmt.Sprintf("Address '%s' not found in database", address),
		Recommendations: recommendations,
	}
}
