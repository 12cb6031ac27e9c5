package reporting

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"jobreport/internal/models"
)

// Collections bundles the reference data a client needs to render report
// forms in a single payload.
type Collections struct {
	Departments  []models.Department  `json:"departments"`
	Services     []models.Service     `json:"services"`
	Branches     []models.Branch      `json:"branches"`
	Subdivisions []models.Subdivision `json:"subdivisions"`
}

// CollectionsData loads all four reference collections concurrently.
func CollectionsData(ctx context.Context, db *gorm.DB) (*Collections, error) {
	out := &Collections{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return db.WithContext(ctx).Preload("Services").Order("name").Find(&out.Departments).Error
	})
	g.Go(func() error {
		return db.WithContext(ctx).Order("code").Find(&out.Services).Error
	})
	g.Go(func() error {
		return db.WithContext(ctx).Preload("Subdivisions").Order("name").Find(&out.Branches).Error
	})
	g.Go(func() error {
		return db.WithContext(ctx).Order("name").Find(&out.Subdivisions).Error
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
