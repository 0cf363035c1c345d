package database

import (
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDSN(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      DatabaseConfig
		expected string
	}{
		{
			name:     "sqlite path enables foreign keys",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "foodgram.sqlite"},
			expected: "foodgram.sqlite?_foreign_keys=on",
		},
		{
			name:     "sqlite path with params appends foreign keys",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "file:test.db?cache=shared"},
			expected: "file:test.db?cache=shared&_foreign_keys=on",
		},
		{
			name: "postgres",
			cfg: DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u",
				Password: "p", Name: "foodgram", SSLMode: "disable"},
			expected: "host=db user=u password=p dbname=foodgram port=5432 sslmode=disable",
		},
		{
			name:     "unknown driver",
			cfg:      DatabaseConfig{Driver: "oracle"},
			expected: "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}

func TestStringRedactsPassword(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", Password: "hunter2"}
	assert.NotContains(t, cfg.String(), "hunter2")
}

func TestInitDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := InitDatabase(DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestNewInMemoryEnforcesConstraints(t *testing.T) {
	db, err := NewInMemory()
	require.NoError(t, err)

	author := models.User{Email: "a@example.com", Username: "a", FirstName: "A", LastName: "A", Password: "x"}
	require.NoError(t, db.Create(&author).Error)
	require.NoError(t, db.Create(&models.Ingredient{Name: "flour", MeasurementUnit: "g"}).Error)

	t.Run("unique pair is translated to ErrDuplicatedKey", func(t *testing.T) {
		err := db.Create(&models.Ingredient{Name: "flour", MeasurementUnit: "g"}).Error
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("same name with another unit is allowed", func(t *testing.T) {
		assert.NoError(t, db.Create(&models.Ingredient{Name: "flour", MeasurementUnit: "cup"}).Error)
	})

	t.Run("deleting a user cascades to recipes", func(t *testing.T) {
		recipe := models.Recipe{AuthorID: author.ID, Name: "bread", Text: "bake", CookingTime: 10, Image: "x.png"}
		require.NoError(t, db.Create(&recipe).Error)

		require.NoError(t, db.Delete(&author).Error)

		var count int64
		require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestMigrateBackfillsFoldedIngredientNames(t *testing.T) {
	db, err := NewInMemory()
	require.NoError(t, err)

	ingredient := models.Ingredient{Name: "Мука пшеничная", MeasurementUnit: "г"}
	require.NoError(t, db.Create(&ingredient).Error)
	assert.Equal(t, "мука пшеничная", ingredient.NameLower)

	// rows written before the column existed
	require.NoError(t, db.Model(&models.Ingredient{}).Where("id = ?", ingredient.ID).UpdateColumn("name_lower", "").Error)

	require.NoError(t, Migrate(db))

	var stored models.Ingredient
	require.NoError(t, db.First(&stored, ingredient.ID).Error)
	assert.Equal(t, "мука пшеничная", stored.NameLower)
}
