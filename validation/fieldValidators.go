package validation

import (
	"regexp"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/models"
	"bitbucket.org/mmdatafocus/invoice_validation_backend/utils"
)

// GST format: 12ABCDE1234F1Z5
var gstRegex = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9]Z[0-9A-Z]$`)

// PAN format: ABCDE1234F
var panRegex = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

const invoiceDateLayout = "02/01/2006"

// Extractors occasionally emit two-digit years.
const invoiceDateLayoutShort = "02/01/06"

// MaxInvoiceAgeDays is how far back an invoice date may lie.
const MaxInvoiceAgeDays = 30

// ValidateInvoiceDate checks that the claimed invoice date is present, parses
// as DD/MM/YYYY, is not in the future and is at most 30 days old. Exactly one
// failure is reported, first match wins.
func ValidateInvoiceDate(dateStr string, role Role) *FieldResult {
	key := FieldKey{Role: role, Field: models.FieldInvoiceDate}

	if utils.IsBlank(dateStr) {
		return &FieldResult{Key: key, Code: CodeMissingField, Message: "Invoice date is missing"}
	}

	trimmed := strings.TrimSpace(dateStr)
	invoiceDate, err := time.Parse(invoiceDateLayout, trimmed)
	if err != nil {
		invoiceDate, err = time.Parse(invoiceDateLayoutShort, trimmed)
	}
	if err != nil {
		return &FieldResult{Key: key, Code: CodeBadFormat, Message: "Invalid date format. Expected DD/MM/YYYY"}
	}

	now := time.Now()
	currentDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	thirtyDaysAgo := currentDate.AddDate(0, 0, -MaxInvoiceAgeDays)

	if invoiceDate.After(currentDate) {
		return &FieldResult{Key: key, Code: CodeFutureDate, Message: "Invoice date cannot be in the future"}
	}
	if invoiceDate.Before(thirtyDaysAgo) {
		return &FieldResult{Key: key, Code: CodeStaleDate, Message: "Invoice date cannot be older than 30 days"}
	}

	return nil
}

// ValidateInvoiceNumber checks that the mandatory invoice number is present.
func ValidateInvoiceNumber(invoiceNo string, role Role) *FieldResult {
	if utils.IsBlank(invoiceNo) {
		return &FieldResult{
			Key:     FieldKey{Role: role, Field: models.FieldInvoiceNo},
			Code:    CodeMissingField,
			Message: "Invoice number is required",
		}
	}
	return nil
}

// ValidatePanNumber checks the PAN format. PAN is optional: a blank value is
// vacuously valid.
func ValidatePanNumber(panNo string, role Role) *FieldResult {
	if utils.IsBlank(panNo) {
		return nil
	}
	if !panRegex.MatchString(strings.TrimSpace(panNo)) {
		return &FieldResult{
			Key:     FieldKey{Role: role, Field: models.FieldPanNumber},
			Code:    CodeBadFormat,
			Message: "Invalid PAN number format. Expected format: ABCDE1234F",
		}
	}
	return nil
}
