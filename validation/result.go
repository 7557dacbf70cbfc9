package validation

// Package validation implements the master-data validation core: pure field
// validators, the GST cross-check, name/address master-data lookups, and the
// per-entity / per-invoice orchestration that merges their results into the
// entity envelopes.

// Role labels one validated invoice entity; it namespaces error keys.
type Role string

const (
	RoleSupplier  Role = "supplier"
	RoleBuyer     Role = "buyer"
	RoleConsignee Role = "consignee"
	RoleLineItem  Role = "line_item"
)

// ErrorCode classifies a validation failure. Codes are part of the result
// contract: callers must distinguish CodeNotFound (recoverable, carries
// recommendations) from CodeLookupFailed (could not verify, never carries
// recommendations).
type ErrorCode string

const (
	CodeMissingField  ErrorCode = "missing_field"
	CodeBadFormat     ErrorCode = "bad_format"
	CodeFutureDate    ErrorCode = "future_date"
	CodeStaleDate     ErrorCode = "stale_date"
	CodeNotFound      ErrorCode = "not_found"
	CodeLookupFailed  ErrorCode = "lookup_failed"
	CodeFieldMismatch ErrorCode = "field_mismatch"
)

// FieldKey is the structured error key (entity role, field name).
// It is serialized to the interpolated "{role}_{field}" form only at the
// output boundary.
type FieldKey struct {
	Role  Role
	Field string
}

func (k FieldKey) String() string {
	return string(k.Role) + "_" + k.Field
}

// FieldResult is the tagged outcome of one validator on one field.
// Validators return a (possibly empty) slice of these and never panic or
// abort sibling validators; an empty slice means the field passed.
type FieldResult struct {
	Key             FieldKey
	Code            ErrorCode
	Message         string
	Recommendations []map[string]any
}
