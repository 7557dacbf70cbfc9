package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/config"
	"github.com/shopspring/decimal"
)

// Product is a master-data record for a known line-item product.
type Product struct {
	ID        int             `gorm:"primary_key" json:"id"`
	ItemName  string          `gorm:"size:100;not null;index" json:"item_name"`
	HsnSac    string          `gorm:"size:10" json:"hsn_sac"`
	Unit      string          `gorm:"size:20" json:"unit"`
	Rate      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate"`
	Igst      decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"igst"`
	Cgst      decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"cgst"`
	Sgst      decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"sgst"`
	Cess      decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"cess"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewProduct struct {
	ItemName string          `json:"item_name" binding:"required"`
	HsnSac   string          `json:"hsn_sac"`
	Unit     string          `json:"unit"`
	Rate     decimal.Decimal `json:"rate"`
	Igst     decimal.Decimal `json:"igst"`
	Cgst     decimal.Decimal `json:"cgst"`
	Sgst     decimal.Decimal `json:"sgst"`
	Cess     decimal.Decimal `json:"cess"`
}

// ProductMatch is one fuzzy-ranked candidate returned by the similarity lookup.
type ProductMatch struct {
	ID              int             `json:"id"`
	ItemName        string          `json:"item_name"`
	HsnSac          string          `json:"hsn_sac"`
	Unit            string          `json:"unit"`
	Rate            decimal.Decimal `json:"rate"`
	Igst            decimal.Decimal `json:"igst"`
	Cgst            decimal.Decimal `json:"cgst"`
	Sgst            decimal.Decimal `json:"sgst"`
	Cess            decimal.Decimal `json:"cess"`
	SimilarityScore float64         `json:"similarity_score"`
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("database is not initialized")
	}

	product := Product{
		ItemName: input.ItemName,
		HsnSac:   input.HsnSac,
		Unit:     input.Unit,
		Rate:     input.Rate,
		Igst:     input.Igst,
		Cgst:     input.Cgst,
		Sgst:     input.Sgst,
		Cess:     input.Cess,
	}
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductNameExists checks for a case-insensitive exact match on item_name.
func ProductNameExists(ctx context.Context, name string) (bool, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&Product{}).
		Where("LOWER(TRIM(item_name)) = LOWER(TRIM(?))", name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RankProductsBySimilarity returns the limit most similar product names,
// ranked descending by pg_trgm similarity score.
func RankProductsBySimilarity(ctx context.Context, name string, limit int) ([]*ProductMatch, error) {
	db := config.GetDB()
	if limit <= 0 {
		limit = config.SimilarityLimit
	}

	var results []*ProductMatch
	err := db.WithContext(ctx).Raw(`
		SELECT id, item_name, hsn_sac, unit, rate, igst, cgst, sgst, cess,
		       similarity(item_name, ?) AS similarity_score
		FROM products
		ORDER BY similarity_score DESC
		LIMIT ?`, name, limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
