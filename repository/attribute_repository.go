package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vamlemat/sync-ps-to-ps-importer/models"
)

type AttributeRepository struct {
	db *gorm.DB
}

func NewAttributeRepository(db *gorm.DB) *AttributeRepository {
	return &AttributeRepository{db: db}
}

// FindGroupByPublicName matches on the public display name, which is
// what the remote combination data exposes.
func (r *AttributeRepository) FindGroupByPublicName(ctx context.Context, publicName string, langID int) (*models.AttributeGroup, error) {
	var group models.AttributeGroup
	err := r.db.WithContext(ctx).
		Joins("JOIN attribute_group_langs agl ON agl.attribute_group_id = attribute_groups.id").
		Where("agl.lang_id = ? AND LOWER(agl.public_name) = LOWER(?)", langID, publicName).
		Order("attribute_groups.id").
		Preload("Langs").
		First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *AttributeRepository) CreateGroup(ctx context.Context, group *models.AttributeGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *AttributeRepository) FindValue(ctx context.Context, groupID int64, name string, langID int) (*models.AttributeValue, error) {
	var value models.AttributeValue
	err := r.db.WithContext(ctx).
		Joins("JOIN attribute_value_langs avl ON avl.attribute_value_id = attribute_values.id").
		Where("attribute_values.group_id = ? AND avl.lang_id = ? AND LOWER(avl.name) = LOWER(?)", groupID, langID, name).
		Order("attribute_values.id").
		Preload("Langs").
		First(&value).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (r *AttributeRepository) CreateValue(ctx context.Context, value *models.AttributeValue) error {
	return r.db.WithContext(ctx).Create(value).Error
}
