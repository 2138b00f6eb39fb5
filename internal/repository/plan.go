package repository

import (
	"context"

	"payhere-integration-demo/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlanRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, planID uint) (*model.Plan, error)
	List(ctx context.Context) ([]*model.Plan, error)
}

type planRepoImpl struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepoImpl{
		db: db,
	}
}

func (r *planRepoImpl) Seed(ctx context.Context) error {
	plans := []model.Plan{
		{Name: "Starter", Price: decimal.NewFromInt(1000), Currency: "LKR", Recurrence: "1 Month", Duration: "Forever", MonthlyQuota: 10000},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&plans).Error
}

func (r *planRepoImpl) FindByID(ctx context.Context, planID uint) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).
		Where("id = ?", planID).
		First(&plan).Error

	if err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *planRepoImpl) List(ctx context.Context) ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.db.WithContext(ctx).Find(&plans).Error
	if err != nil {
		return nil, err
	}

	return plans, nil
}
