package validation

import (
	"context"
	"errors"
	"sync"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/models"
)

// ValidateInvoice walks every entity in the payload - supplier, buyer,
// consignee and each line item - and annotates the envelopes in place.
// Entities are independent (no shared envelope), so they all fan out
// concurrently; line items keep their input order because each goroutine
// writes only its own envelope. Field-level errors are the normal "found
// problems" outcome and never fail the request; only an unexpected internal
// failure returns an error, with no partial results exposed to the caller.
func (e *Engine) ValidateInvoice(ctx context.Context, payload *models.InvoicePayload) error {
	if payload == nil {
		return errors.New("invoice payload is empty")
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 3+len(payload.LineItems))

	validate := func(role Role, ent *models.Entity) {
		if ent == nil {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.ValidateEntity(ctx, role, ent); err != nil {
				errCh <- err
			}
		}()
	}

	validate(RoleSupplier, payload.Supplier)
	validate(RoleBuyer, payload.Buyer)
	validate(RoleConsignee, payload.Consignee)
	for _, item := range payload.LineItems {
		validate(RoleLineItem, item)
	}

	wg.Wait()
	close(errCh)

	// Surface the first internal failure, if any.
	return <-errCh
}
