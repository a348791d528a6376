package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"herotime/internal/models/db_models"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*db_models.User, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*db_models.User, error)
	// EnsureUser returns the user with id, inserting a free-tier row first when absent.
	EnsureUser(ctx context.Context, id, email string) (user *db_models.User, created bool, err error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error

	// ReserveGeneration atomically consumes one unit of quota. It returns false when the
	// user is at the limit or does not exist.
	ReserveGeneration(ctx context.Context, id string) (bool, error)
	ReleaseGeneration(ctx context.Context, id string) error
	ResetGenerations(ctx context.Context, id string) error
	// RollOverPeriod resets usage and applies a scheduled plan, if any.
	RollOverPeriod(ctx context.Context, id string) (*db_models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (u *userRepository) FindByID(ctx context.Context, id string) (*db_models.User, error) {
	var user db_models.User
	err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (u *userRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*db_models.User, error) {
	var user db_models.User
	err := u.db.WithContext(ctx).First(&user, "stripe_customer_id = ?", customerID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (u *userRepository) EnsureUser(ctx context.Context, id, email string) (*db_models.User, bool, error) {
	user := &db_models.User{
		ID:               id,
		Email:            email,
		Plan:             db_models.PlanFree,
		GenerationsLimit: db_models.PlanFree.GenerationsLimit(),
	}

	res := u.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(user)
	if res.Error != nil {
		return nil, false, res.Error
	}

	if res.RowsAffected == 1 {
		return user, true, nil
	}

	existing, err := u.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, gorm.ErrRecordNotFound
	}
	return existing, false, nil
}

func (u *userRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return u.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (u *userRepository) ReserveGeneration(ctx context.Context, id string) (bool, error) {
	res := u.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ? AND generations_used < generations_limit", id).
		UpdateColumn("generations_used", gorm.Expr("generations_used + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (u *userRepository) ReleaseGeneration(ctx context.Context, id string) error {
	return u.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ? AND generations_used > 0", id).
		UpdateColumn("generations_used", gorm.Expr("generations_used - 1")).Error
}

func (u *userRepository) ResetGenerations(ctx context.Context, id string) error {
	return u.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ?", id).
		Update("generations_used", 0).Error
}

func (u *userRepository) RollOverPeriod(ctx context.Context, id string) (*db_models.User, error) {
	var updated db_models.User

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user db_models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return err
		}

		fields := map[string]interface{}{"generations_used": 0}
		if user.ScheduledPlan != nil && user.ScheduledPlan.Valid() {
			fields["plan"] = *user.ScheduledPlan
			fields["generations_limit"] = user.ScheduledPlan.GenerationsLimit()
			fields["scheduled_plan"] = nil
		}

		if err := tx.Model(&db_models.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
