package models

import (
	"strings"

	"gorm.io/gorm"
)

// Ingredient is catalog reference data. The same name may exist under
// several measurement units but each (name, unit) pair is stored once.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:128;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:64;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
	// NameLower is the Unicode lowercase form of Name used by prefix search.
	// SQLite's LOWER and LIKE only fold ASCII.
	NameLower string `gorm:"size:128;not null;default:'';index" json:"-"`
}

// FoldName is the case folding applied to ingredient names and search prefixes
func FoldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (i *Ingredient) BeforeSave(tx *gorm.DB) error {
	i.NameLower = FoldName(i.Name)
	return nil
}
