package validation

import (
	"testing"
	"time"
)

func dateDaysAgo(days int) string {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -days).Format("02/01/2006")
}

func TestValidateInvoiceDate(t *testing.T) {
	cases := []struct {
		name    string
		date    string
		want    ErrorCode
		wantNil bool
	}{
		{name: "today passes", date: dateDaysAgo(0), wantNil: true},
		{name: "yesterday passes", date: dateDaysAgo(1), wantNil: true},
		{name: "exactly 30 days old passes", date: dateDaysAgo(30), wantNil: true},
		{name: "31 days old is stale", date: dateDaysAgo(31), want: CodeStaleDate},
		{name: "tomorrow is future", date: dateDaysAgo(-1), want: CodeFutureDate},
		{name: "empty is missing", date: "", want: CodeMissingField},
		{name: "whitespace is missing", date: "   ", want: CodeMissingField},
		{name: "null sentinel is missing", date: "null", want: CodeMissingField},
		{name: "garbage is bad format", date: "date-of-invoice", want: CodeBadFormat},
		{name: "iso layout is bad format", date: "2026-01-15", want: CodeBadFormat},
		{name: "impossible day is bad format", date: "32/01/2026", want: CodeBadFormat},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidateInvoiceDate(tc.date, RoleSupplier)
			if tc.wantNil {
				if res != nil {
					t.Fatalf("date %q: expected pass, got %s (%s)", tc.date, res.Code, res.Message)
				}
				return
			}
			if res == nil {
				t.Fatalf("date %q: expected %s, got pass", tc.date, tc.want)
			}
			if res.Code != tc.want {
				t.Fatalf("date %q: expected %s, got %s", tc.date, tc.want, res.Code)
			}
			if res.Key.String() != "supplier_invoice_date" {
				t.Fatalf("unexpected error key %q", res.Key.String())
			}
		})
	}
}

func TestValidateInvoiceDateShortYear(t *testing.T) {
	// Extractors occasionally emit DD/MM/YY; it must parse, not be rejected
	// as a format error.
	now := time.Now().UTC()
	short := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -2).Format("02/01/06")

	if res := ValidateInvoiceDate(short, RoleSupplier); res != nil {
		t.Fatalf("short-year date %q: expected pass, got %s (%s)", short, res.Code, res.Message)
	}
}

func TestValidateInvoiceNumber(t *testing.T) {
	if res := ValidateInvoiceNumber("INV-2026-0042", RoleSupplier); res != nil {
		t.Fatalf("expected pass, got %s", res.Message)
	}

	for _, blank := range []string{"", "   ", "null"} {
		res := ValidateInvoiceNumber(blank, RoleSupplier)
		if res == nil {
			t.Fatalf("invoice number %q: expected missing_field, got pass", blank)
		}
		if res.Code != CodeMissingField {
			t.Fatalf("invoice number %q: expected missing_field, got %s", blank, res.Code)
		}
		if res.Message != "Invoice number is required" {
			t.Fatalf("unexpected message %q", res.Message)
		}
	}
}

func TestValidatePanNumber(t *testing.T) {
	cases := []struct {
		pan     string
		wantNil bool
	}{
		{pan: "ABCDE1234F", wantNil: true},
		{pan: "  ABCDE1234F  ", wantNil: true}, // surrounding whitespace is tolerated
		{pan: "", wantNil: true},               // optional field
		{pan: "null", wantNil: true},
		{pan: "abcde1234f", wantNil: false}, // lowercase is not a valid PAN
		{pan: "ABCDE12345", wantNil: false},
		{pan: "ABCD1234F", wantNil: false},
	}

	for _, tc := range cases {
		res := ValidatePanNumber(tc.pan, RoleBuyer)
		if tc.wantNil {
			if res != nil {
				t.Fatalf("pan %q: expected pass, got %s", tc.pan, res.Message)
			}
			continue
		}
		if res == nil {
			t.Fatalf("pan %q: expected bad_format, got pass", tc.pan)
		}
		if res.Code != CodeBadFormat {
			t.Fatalf("pan %q: expected bad_format, got %s", tc.pan, res.Code)
		}
		if res.Key.String() != "buyer_pan_number" {
			t.Fatalf("unexpected error key %q", res.Key.String())
		}
	}
}
