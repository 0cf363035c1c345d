package services

import (
	"errors"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Relation toggles at-most-once link rows of type L between two entities.
// A link value is matched by its non-zero columns, so callers pass a row
// with only the two foreign keys set.
type Relation[L any] struct {
	name          string
	alreadyExists string
	notLinked     string
}

// NewRelation describes a link type and the messages shown for its two
// conflict states.
func NewRelation[L any](name, alreadyExists, notLinked string) Relation[L] {
	return Relation[L]{name: name, alreadyExists: alreadyExists, notLinked: notLinked}
}

// Exists reports whether the link is present.
func (r Relation[L]) Exists(tx *gorm.DB, link *L) (bool, error) {
	var count int64
	if err := tx.Model(new(L)).Where(link).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Activate moves the link from absent to present.
func (r Relation[L]) Activate(tx *gorm.DB, link *L) error {
	exists, err := r.Exists(tx, link)
	if err != nil {
		return err
	}
	if exists {
		return withMessage(ErrAlreadyExists, r.alreadyExists)
	}
	return r.insert(tx, link)
}

// insert creates the row. A concurrent activation that won the race shows
// up here as a unique violation and is reported like a sequential duplicate.
func (r Relation[L]) insert(tx *gorm.DB, link *L) error {
	if err := tx.Omit(clause.Associations).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return withMessage(ErrAlreadyExists, r.alreadyExists)
		}
		return err
	}
	metrics.RelationToggles.WithLabelValues(r.name, "activate").Inc()
	return nil
}

// Deactivate moves the link from present to absent.
func (r Relation[L]) Deactivate(tx *gorm.DB, link *L) error {
	result := tx.Where(link).Delete(new(L))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return withMessage(ErrNotLinked, r.notLinked)
	}
	metrics.RelationToggles.WithLabelValues(r.name, "deactivate").Inc()
	return nil
}
