package validation

import (
	"context"
	"fmt"
	"sync"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/models"
)

// Engine runs the validators against injected collaborators. It holds no
// per-request state; one Engine serves all requests.
type Engine struct {
	Store      MasterDataStore
	Similarity SimilarityClient
}

func NewEngine(store MasterDataStore, similarity SimilarityClient) *Engine {
	return &Engine{Store: store, Similarity: similarity}
}

// ValidateEntity runs every validator applicable to the role and merges the
// outcomes into the entity envelope. The synchronous format checks run inline;
// the GST, name and address checks are independent network/database round
// trips and fan out concurrently. Error keys are pre-namespaced and disjoint
// across validators; recommendations accumulate in completion order (an
// accepted nondeterminism).
//
// The returned error is only non-nil for an unexpected internal failure
// (validator panic); field-level findings land in the envelope instead.
func (e *Engine) ValidateEntity(ctx context.Context, role Role, ent *models.Entity) error {
	if ent == nil {
		return nil
	}
	ent.ResetValidation()

	var results []FieldResult

	if role == RoleLineItem {
		// Line items carry only a product name; no date/number/GST/PAN/address
		// checks apply.
		var panicErr error
		func() {
			defer recoverToError(&panicErr)
			if res := e.validateNameInMasterData(ctx, role, TableProducts, ent.ItemName(), ""); res != nil {
				results = append(results, *res)
			}
		}()
		applyResults(ent, results)
		return panicErr
	}

	if role == RoleSupplier {
		// Document-level identity (invoice number/date) travels with the
		// issuing party.
		if res := ValidateInvoiceDate(ent.Field(models.FieldInvoiceDate), role); res != nil {
			results = append(results, *res)
		}
		if res := ValidateInvoiceNumber(ent.Field(models.FieldInvoiceNo), role); res != nil {
			results = append(results, *res)
		}
	}
	if res := ValidatePanNumber(ent.Field(models.FieldPanNumber), role); res != nil {
		results = append(results, *res)
	}

	gstNo := ent.Field(models.FieldGstNo)
	name := ent.Field(models.FieldName)
	address := ent.Field(models.FieldAddress)

	resultCh := make(chan []FieldResult, 3)
	panicCh := make(chan error, 3)
	var wg sync.WaitGroup

	run := func(check func() []FieldResult) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panicCh <- fmt.Errorf("validator panic: %v", r)
				}
			}()
			resultCh <- check()
		}()
	}

	run(func() []FieldResult {
		return e.validateGstNumber(ctx, role, ent)
	})
	run(func() []FieldResult {
		if res := e.validateNameInMasterData(ctx, role, TableOrganizations, name, gstNo); res != nil {
			return []FieldResult{*res}
		}
		return nil
	})
	run(func() []FieldResult {
		if res := e.validateAddressInMasterData(ctx, role, address, gstNo, name); res != nil {
			return []FieldResult{*res}
		}
		return nil
	})

	wg.Wait()
	close(resultCh)
	close(panicCh)

	for batch := range resultCh {
		results = append(results, batch...)
	}
	applyResults(ent, results)

	return <-panicCh
}

func applyResults(ent *models.Entity, results []FieldResult) {
	for _, res := range results {
		ent.Error[res.Key.String()] = res.Message
		ent.RecommendedFields = append(ent.RecommendedFields, res.Recommendations...)
	}
	ent.ErrorStatus = len(ent.Error) > 0
}

func recoverToError(dest *error) {
	if r := recover(); r != nil {
		*dest = fmt.Errorf("validator panic: %v", r)
	}
}
