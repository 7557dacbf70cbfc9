package validation

import (
	"context"
	"strings"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/models"
	"bitbucket.org/mmdatafocus/invoice_validation_backend/utils"
)

// Error keys use gst_number (not the payload's gst_no) - that is the key the
// consuming pipeline matches on.
const keyFieldGstNumber = "gst_number"

// validateGstNumber validates the GST number format, cross-checks it against
// the master-data record registered under it, and diffs every associated
// claimed field against that record. The first matching record is
// authoritative. Returns an empty slice when everything matches.
func (e *Engine) validateGstNumber(ctx context.Context, role Role, ent *models.Entity) []FieldResult {
	gstKey := FieldKey{Role: role, Field: keyFieldGstNumber}

	// GST is optional - absent means nothing to cross-check.
	claimedGst := ent.Field(models.FieldGstNo)
	if utils.IsBlank(claimedGst) {
		return []FieldResult{}
	}

	gstNo := strings.TrimSpace(claimedGst)
	if !gstRegex.MatchString(gstNo) {
		return []FieldResult{{
			Key:     gstKey,
			Code:    CodeBadFormat,
			Message: "Invalid GST number format. Expected format: 12ABCDE1234F1Z5",
		}}
	}

	resp, err := e.Similarity.CheckGst(ctx, gstNo)
	if err != nil {
		return []FieldResult{{
			Key:     gstKey,
			Code:    CodeLookupFailed,
			Message: "Error checking GST number: " + err.Error(),
		}}
	}
	if resp.Status == GstStatusNotFound || len(resp.MatchingRecords) == 0 {
		return []FieldResult{{
			Key:     gstKey,
			Code:    CodeNotFound,
			Message: "GST number not found in database",
		}}
	}

	stored := resp.MatchingRecords[0]
	results := []FieldResult{}

	mismatch := func(field, message string, storedValue any) {
		key := FieldKey{Role: role, Field: field}
		results = append(results, FieldResult{
			Key:             key,
			Code:            CodeFieldMismatch,
			Message:         message,
			Recommendations: []map[string]any{{key.String(): storedValue}},
		})
	}

	if !utils.TextEquals(ent.Field(models.FieldName), stored.Name) {
		mismatch(models.FieldName, "Name does not match database record", stored.Name)
	}
	if !utils.TextEquals(ent.Field(models.FieldAddress), stored.Address) {
		mismatch(models.FieldAddress, "Address does not match database record", stored.Address)
	}
	if !utils.TextEquals(ent.Field(models.FieldStateName), stored.StateName) {
		mismatch(models.FieldStateName, "State name does not match database record", stored.StateName)
	}
	if ent.Field(models.FieldStateCode) != stored.StateCode {
		mismatch(models.FieldStateCode, "State code does not match database record", stored.StateCode)
	}

	// Both sides empty means no comparison is possible - not a mismatch.
	claimedPan := ent.Field(models.FieldPanNumber)
	if !(utils.IsBlank(claimedPan) && utils.IsBlank(stored.PanNumber)) &&
		!utils.TextEquals(claimedPan, stored.PanNumber) {
		mismatch(models.FieldPanNumber, "PAN number does not match database record", stored.PanNumber)
	}

	return results
}
