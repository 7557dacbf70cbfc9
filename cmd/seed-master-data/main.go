// seed-master-data populates the master-data tables with a small set of known
// organizations and products so the validation endpoints have ground truth to
// check against.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-master-data
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/config"
	"bitbucket.org/mmdatafocus/invoice_validation_backend/models"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	organizations := []*models.NewOrganization{
		{
			Name:      "Acme Corporation Pvt Ltd",
			Address:   "12 Industrial Estate, Andheri East, Mumbai 400093",
			StateName: "Maharashtra",
			StateCode: "27",
			GstNo:     "27AAAPL1234C1Z5",
			PanNumber: "AAAPL1234C",
		},
		{
			Name:      "Bharat Traders",
			Address:   "45 Market Road, Karol Bagh, New Delhi 110005",
			StateName: "Delhi",
			StateCode: "07",
			GstNo:     "07BBBCT5678D1Z3",
			PanNumber: "BBBCT5678D",
		},
		{
			Name:      "Chennai Supplies Co",
			Address:   "8 Anna Salai, Chennai 600002",
			StateName: "Tamil Nadu",
			StateCode: "33",
			GstNo:     "33CCCSD9012E1Z1",
			PanNumber: "CCCSD9012E",
		},
	}

	products := []*models.NewProduct{
		{
			ItemName: "Copper Wire 2.5mm",
			HsnSac:   "7408",
			Unit:     "kg",
			Rate:     decimal.NewFromFloat(712.50),
			Igst:     decimal.NewFromInt(18),
		},
		{
			ItemName: "PVC Conduit Pipe 25mm",
			HsnSac:   "3917",
			Unit:     "m",
			Rate:     decimal.NewFromFloat(36.00),
			Cgst:     decimal.NewFromInt(9),
			Sgst:     decimal.NewFromInt(9),
		},
		{
			ItemName: "MCB 32A Single Pole",
			HsnSac:   "8536",
			Unit:     "pcs",
			Rate:     decimal.NewFromFloat(245.00),
			Igst:     decimal.NewFromInt(18),
		},
	}

	for _, org := range organizations {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Organization{}).Where("gst_no = ?", org.GstNo).Count(&count).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to check organization %q: %v\n", org.Name, err)
			os.Exit(1)
		}
		if count > 0 {
			fmt.Printf("organization %q already seeded\n", org.Name)
			continue
		}
		if _, err := models.CreateOrganization(ctx, org); err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed organization %q: %v\n", org.Name, err)
			os.Exit(1)
		}
		fmt.Printf("seeded organization %q\n", org.Name)
	}

	for _, product := range products {
		exists, err := models.ProductNameExists(ctx, product.ItemName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to check product %q: %v\n", product.ItemName, err)
			os.Exit(1)
		}
		if exists {
			fmt.Printf("product %q already seeded\n", product.ItemName)
			continue
		}
		if _, err := models.CreateProduct(ctx, product); err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed product %q: %v\n", product.ItemName, err)
			os.Exit(1)
		}
		fmt.Printf("seeded product %q\n", product.ItemName)
	}
}
