package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "herotime/internal/models/db_models"
)

type GenerationRepository interface {
	Create(ctx context.Context, generation *dbm.Generation) error
	FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*dbm.Generation, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]dbm.Generation, int64, error)

	// Transition moves a generation to status `to` (with extra fields) only if its current
	// status is one of `from`. It reports whether a row changed.
	Transition(ctx context.Context, id uuid.UUID, from []dbm.GenerationStatus, to dbm.GenerationStatus, fields map[string]interface{}) (bool, error)
	// FailLatestInFlight marks the user's most recent starting/processing generation failed.
	FailLatestInFlight(ctx context.Context, userID, message string) (bool, error)

	DeleteForUser(ctx context.Context, id uuid.UUID, userID string) (int64, error)
}

// inFlightStatuses are the statuses a generation may leave.
var inFlightStatuses = []dbm.GenerationStatus{dbm.GenerationStarting, dbm.GenerationProcessing}

type generationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{db: db}
}

func (r *generationRepository) Create(ctx context.Context, generation *dbm.Generation) error {
	return r.db.WithContext(ctx).Create(generation).Error
}

func (r *generationRepository) FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*dbm.Generation, error) {
	var generation dbm.Generation
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&generation).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &generation, nil
}

func (r *generationRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]dbm.Generation, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&dbm.Generation{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var generations []dbm.Generation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&generations).Error; err != nil {
		return nil, 0, err
	}

	return generations, total, nil
}

func (r *generationRepository) Transition(
	ctx context.Context,
	id uuid.UUID,
	from []dbm.GenerationStatus,
	to dbm.GenerationStatus,
	fields map[string]interface{},
) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&dbm.Generation{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *generationRepository) FailLatestInFlight(ctx context.Context, userID, message string) (bool, error) {
	var latest dbm.Generation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, inFlightStatuses).
		Order("created_at DESC").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return r.Transition(ctx, latest.ID, inFlightStatuses, dbm.GenerationFailed, map[string]interface{}{
		"error": message,
	})
}

func (r *generationRepository) DeleteForUser(ctx context.Context, id uuid.UUID, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&dbm.Generation{})
	return res.RowsAffected, res.Error
}
