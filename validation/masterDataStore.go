package validation

import (
	"context"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/models"
)

// MasterDataStore is the relational collaborator: exact-match existence checks
// against the master-data tables.
type MasterDataStore interface {
	OrganizationNameExists(ctx context.Context, name string) (bool, error)
	OrganizationAddressExists(ctx context.Context, address string) (bool, error)
	ProductNameExists(ctx context.Context, name string) (bool, error)
}

// SimilarityClient is the network collaborator: fuzzy-ranked correction
// candidates and the GST exact-match lookup, served over HTTP.
type SimilarityClient interface {
	RecommendNames(ctx context.Context, table string, name string) ([]map[string]any, error)
	RecommendAddresses(ctx context.Context, address string) ([]map[string]any, error)
	CheckGst(ctx context.Context, gstNo string) (*GstCheckResponse, error)
}

// GstCheckResponse is the gst-check collaborator reply.
type GstCheckResponse struct {
	Status          string      `json:"status"`
	MatchingRecords []GstRecord `json:"matching_records"`
}

const (
	GstStatusFound    = "found"
	GstStatusNotFound = "not_found"
)

// GstRecord is the stored master-data record associated with a GST number.
type GstRecord struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	StateName string `json:"state_name"`
	StateCode string `json:"state_code"`
	GstNo     string `json:"gst_no"`
	PanNumber string `json:"pan_number"`
	CreatedAt string `json:"created_at"`
}

// Master-data table names addressable by the name validator.
const (
	TableOrganizations = "organizations"
	TableProducts      = "products"
)

// GormMasterData implements MasterDataStore on the models package.
type GormMasterData struct{}

func (GormMasterData) OrganizationNameExists(ctx context.Context, name string) (bool, error) {
	return models.OrganizationNameExists(ctx, name)
}

func (GormMasterData) OrganizationAddressExists(ctx context.Context, address string) (bool, error) {
	return models.OrganizationAddressExists(ctx, address)
}

func (GormMasterData) ProductNameExists(ctx context.Context, name string) (bool, error) {
	return models.ProductNameExists(ctx, name)
}
