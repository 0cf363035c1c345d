package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const importBatchSize = 500

// IngredientRecord is one (name, unit) pair handed to the catalog loader
type IngredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// IngredientService provides read access to the ingredient catalog and its bulk loader
type IngredientService interface {
	// Search returns ingredients whose name starts with prefix, ignoring case
	Search(ctx context.Context, prefix string) ([]models.Ingredient, error)
	// GetIngredientByID retrieves one ingredient
	GetIngredientByID(ctx context.Context, id uint) (models.Ingredient, error)
	// Load inserts the records that are not stored yet and returns how many were added
	Load(ctx context.Context, records []IngredientRecord) (int, error)
}

// cachedSearch is one search result and the time it was read from the database
type cachedSearch struct {
	ingredients []models.Ingredient
	timestamp   time.Time
}

type ingredientService struct {
	db          *gorm.DB
	cache       *lru.Cache
	cacheExpiry time.Duration
	now         func() time.Time
}

// NewIngredientService creates a new instance of IngredientService.
// cacheSize bounds the number of cached search prefixes; zero disables caching.
// Cached results are served for at most cacheExpiry so loads made by other
// processes become visible.
func NewIngredientService(db *gorm.DB, cacheSize int, cacheExpiry time.Duration) IngredientService {
	s := &ingredientService{db: db, cacheExpiry: cacheExpiry, now: time.Now}
	if cacheExpiry <= 0 {
		cacheSize = 0
	}
	if cacheSize > 0 {
		cache, err := lru.New(cacheSize)
		if err != nil {
			logrus.WithError(err).Warn("Ingredient search cache disabled")
		} else {
			s.cache = cache
		}
	}
	return s
}

func (s *ingredientService) Search(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	key := models.FoldName(prefix)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			entry := cached.(cachedSearch)
			if s.now().Sub(entry.timestamp) < s.cacheExpiry {
				metrics.IngredientCacheHits.Inc()
				return slices.Clone(entry.ingredients), nil
			}
			s.cache.Remove(key)
		}
		metrics.IngredientCacheMisses.Inc()
	}

	query := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if key != "" {
		query = query.Where("name_lower LIKE ? ESCAPE '\\'", escapeLike(key)+"%")
	}

	ingredients := []models.Ingredient{}
	if err := query.Order("name").Order("id").Find(&ingredients).Error; err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Add(key, cachedSearch{ingredients: slices.Clone(ingredients), timestamp: s.now()})
	}
	return ingredients, nil
}

func (s *ingredientService) GetIngredientByID(ctx context.Context, id uint) (models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Ingredient{}, withMessage(ErrNotFound, "ingredient not found")
		}
		return models.Ingredient{}, err
	}
	return ingredient, nil
}

// ingredientKey identifies a catalog entry by its text, which is what the
// unique index covers.
type ingredientKey struct {
	name string
	unit string
}

func (s *ingredientService) Load(ctx context.Context, records []IngredientRecord) (int, error) {
	inserted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Ingredient
		if err := tx.Select("name", "measurement_unit").Find(&existing).Error; err != nil {
			return err
		}

		seen := make(map[ingredientKey]struct{}, len(existing)+len(records))
		for _, ing := range existing {
			seen[ingredientKey{ing.Name, ing.MeasurementUnit}] = struct{}{}
		}

		var fresh []models.Ingredient
		for _, rec := range records {
			name := strings.TrimSpace(rec.Name)
			unit := strings.TrimSpace(rec.MeasurementUnit)
			if name == "" || unit == "" {
				continue
			}
			key := ingredientKey{name, unit}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			fresh = append(fresh, models.Ingredient{Name: name, MeasurementUnit: unit, NameLower: models.FoldName(name)})
		}

		if len(fresh) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(fresh, importBatchSize).Error; err != nil {
			return err
		}
		inserted = len(fresh)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if inserted > 0 && s.cache != nil {
		s.cache.Purge()
	}
	metrics.IngredientsImported.Add(float64(inserted))
	logrus.WithFields(logrus.Fields{
		"received": len(records),
		"inserted": inserted,
	}).Info("Ingredient catalog loaded")
	return inserted, nil
}

// escapeLike neutralises LIKE wildcards in user input
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
