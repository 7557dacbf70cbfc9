package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/config"
	"bitbucket.org/mmdatafocus/invoice_validation_backend/utils"
	"gorm.io/gorm"
)

// Organization is a master-data record for a known supplier/buyer/consignee.
// Treated as ground truth by the validators; never mutated by them.
type Organization struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;index" json:"name"`
	Address   string    `gorm:"size:255" json:"address"`
	StateName string    `gorm:"size:100" json:"state_name"`
	StateCode string    `gorm:"size:10" json:"state_code"`
	GstNo     string    `gorm:"size:15;uniqueIndex" json:"gst_no"`
	PanNumber string    `gorm:"size:10" json:"pan_number"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewOrganization struct {
	Name      string `json:"name" binding:"required"`
	Address   string `json:"address"`
	StateName string `json:"state_name"`
	StateCode string `json:"state_code"`
	GstNo     string `json:"gst_no"`
	PanNumber string `json:"pan_number"`
}

// OrganizationMatch is one fuzzy-ranked candidate returned by the similarity lookup.
type OrganizationMatch struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	StateName       string    `json:"state_name"`
	StateCode       string    `json:"state_code"`
	GstNo           string    `json:"gst_no"`
	PanNumber       string    `json:"pan_number"`
	CreatedAt       time.Time `json:"created_at"`
	SimilarityScore float64   `json:"similarity_score"`
}

func CreateOrganization(ctx context.Context, input *NewOrganization) (*Organization, error) {
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("database is not initialized")
	}

	org := Organization{
		Name:      input.Name,
		Address:   input.Address,
		StateName: input.StateName,
		StateCode: input.StateCode,
		GstNo:     input.GstNo,
		PanNumber: input.PanNumber,
	}
	if err := db.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	// Invalidate a possibly stale cached record for this GST number.
	if org.GstNo != "" {
		_ = utils.RemoveRedisItem[Organization](org.GstNo)
	}
	return &org, nil
}

// OrganizationNameExists checks for a case-insensitive exact match on name.
func OrganizationNameExists(ctx context.Context, name string) (bool, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&Organization{}).
		Where("LOWER(TRIM(name)) = LOWER(TRIM(?))", name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// OrganizationAddressExists checks for a case-insensitive, trimmed exact match on address.
func OrganizationAddressExists(ctx context.Context, address string) (bool, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&Organization{}).
		Where("LOWER(TRIM(address)) = LOWER(TRIM(?))", address).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetOrganizationByGst returns the master-data record registered under gstNo.
// Results are cached in redis (best effort) since GST records change rarely.
// Returns utils.ErrorRecordNotFound when no record is registered under gstNo.
func GetOrganizationByGst(ctx context.Context, gstNo string) (*Organization, error) {
	if cached, err := utils.RetrieveRedis[Organization](gstNo); err == nil && cached != nil {
		return cached, nil
	}

	db := config.GetDB()
	var org Organization
	err := db.WithContext(ctx).
		Where("gst_no = ?", gstNo).
		First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	_ = utils.StoreRedis[Organization](&org, gstNo)
	return &org, nil
}

// RankOrganizationsBySimilarity returns the limit most similar organization names,
// ranked descending by pg_trgm similarity score.
func RankOrganizationsBySimilarity(ctx context.Context, name string, limit int) ([]*OrganizationMatch, error) {
	db := config.GetDB()
	if limit <= 0 {
		limit = config.SimilarityLimit
	}

	var results []*OrganizationMatch
	err := db.WithContext(ctx).Raw(`
		SELECT id, name, address, state_name, state_code, gst_no, pan_number, created_at,
		       similarity(name, ?) AS similarity_score
		FROM organizations
		ORDER BY similarity_score DESC
		LIMIT ?`, name, limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// RankOrganizationAddressesBySimilarity ranks organizations by address similarity.
func RankOrganizationAddressesBySimilarity(ctx context.Context, address string, limit int) ([]*OrganizationMatch, error) {
	db := config.GetDB()
	if limit <= 0 {
		limit = config.SimilarityLimit
	}

	var results []*OrganizationMatch
	err := db.WithContext(ctx).Raw(`
		SELECT id, name, address, state_name, state_code, gst_no, pan_number, created_at,
		       similarity(address, ?) AS similarity_score
		FROM organizations
		ORDER BY similarity_score DESC
		LIMIT ?`, address, limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
