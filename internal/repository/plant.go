package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/plantpedia/plantpedia/internal/models"
)

type PlantRepository struct {
	DB *gorm.DB
}

func (r *PlantRepository) List(ctx context.Context, offset, limit int) (int64, []models.PlantInfo, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.PlantInfo{}).Count(&total).Error; err != nil {
		return 0, nil, fmt.Errorf("repository: plant count: %w", err)
	}

	var plants []models.PlantInfo
	err := r.DB.WithContext(ctx).
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&plants).Error
	if err != nil {
		return 0, nil, fmt.Errorf("repository: plant list: %w", err)
	}
	return total, plants, nil
}

// GetByID loads the plant with its full association graph, the way the
// detail page renders it.
func (r *PlantRepository) GetByID(ctx context.Context, id string) (*models.PlantInfo, error) {
	var plant models.PlantInfo
	err := r.DB.WithContext(ctx).
		Preload("Family").Preload("Order").Preload("Class").Preload("PlantType").
		Preload("Images").Preload("Climates").Preload("Regions").
		Preload("SoilTypes").Preload("Usages").
		Where("id = ?", id).First(&plant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: get plant: %w", err)
	}
	return &plant, nil
}

func (r *PlantRepository) Create(ctx context.Context, plant *models.PlantInfo) error {
	if err := r.DB.WithContext(ctx).Create(plant).Error; err != nil {
		return fmt.Errorf("repository: create plant: %w", err)
	}
	return nil
}

func (r *PlantRepository) Update(ctx context.Context, plant *models.PlantInfo) error {
	if err := r.DB.WithContext(ctx).Save(plant).Error; err != nil {
		return fmt.Errorf("repository: update plant: %w", err)
	}
	return nil
}

func (r *PlantRepository) Delete(ctx context.Context, id string) error {
	if err := r.DB.WithContext(ctx).Delete(&models.PlantInfo{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("repository: delete plant: %w", err)
	}
	return nil
}
