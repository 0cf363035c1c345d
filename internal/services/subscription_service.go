package services

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"gorm.io/gorm"
)

// NoRecipesLimit disables truncation of the embedded recipe list
const NoRecipesLimit = -1

// AuthorDetails is an author profile enriched for a subscriber
type AuthorDetails struct {
	models.User
	IsSubscribed bool
	Recipes      []models.Recipe
	RecipesCount int64
}

// SubscriptionService manages who follows whom
type SubscriptionService interface {
	// Subscribe makes subscriberID follow authorID. recipesLimit caps the
	// embedded recipes; NoRecipesLimit returns all of them.
	Subscribe(ctx context.Context, subscriberID, authorID uint, recipesLimit int) (*AuthorDetails, error)
	Unsubscribe(ctx context.Context, subscriberID, authorID uint) error
	// ListSubscriptions returns one page of followed authors and the total count
	ListSubscriptions(ctx context.Context, subscriberID uint, offset, limit, recipesLimit int) ([]AuthorDetails, int64, error)
}

var subscriptionRelation = NewRelation[models.Subscription]("subscription",
	"already subscribed to this author", "not subscribed to this author")

type subscriptionService struct {
	db *gorm.DB
}

// NewSubscriptionService creates a new instance of SubscriptionService
func NewSubscriptionService(db *gorm.DB) SubscriptionService {
	return &subscriptionService{db: db}
}

func (s *subscriptionService) Subscribe(ctx context.Context, subscriberID, authorID uint, recipesLimit int) (*AuthorDetails, error) {
	if subscriberID == authorID {
		return nil, ErrSelfSubscription
	}

	var author models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findUser(tx, authorID)
		if err != nil {
			return err
		}
		author = found
		return subscriptionRelation.Activate(tx, &models.Subscription{SubscriberID: subscriberID, AuthorID: authorID})
	})
	if err != nil {
		return nil, err
	}

	details, err := s.enrich(s.db.WithContext(ctx), []models.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	details[0].IsSubscribed = true
	return &details[0], nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, subscriberID, authorID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findUser(tx, authorID); err != nil {
			return err
		}
		return subscriptionRelation.Deactivate(tx, &models.Subscription{SubscriberID: subscriberID, AuthorID: authorID})
	})
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, subscriberID uint, offset, limit, recipesLimit int) ([]AuthorDetails, int64, error) {
	db := s.db.WithContext(ctx)
	followed := db.Model(&models.Subscription{}).Select("author_id").Where("subscriber_id = ?", subscriberID)
	query := db.Model(&models.User{}).Where("id IN (?)", followed)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	page := query.Order("username").Order("id").Offset(offset)
	if limit > 0 {
		page = page.Limit(limit)
	}
	if err := page.Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	details, err := s.enrich(db, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	for i := range details {
		details[i].IsSubscribed = true
	}
	return details, total, nil
}

// enrich attaches recipes and the unbounded recipe count to each author
func (s *subscriptionService) enrich(db *gorm.DB, authors []models.User, recipesLimit int) ([]AuthorDetails, error) {
	details := make([]AuthorDetails, len(authors))
	for i, author := range authors {
		details[i].User = author

		if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).
			Count(&details[i].RecipesCount).Error; err != nil {
			return nil, err
		}

		recipes := db.Where("author_id = ?", author.ID).Order("created_at DESC").Order("id DESC")
		if recipesLimit >= 0 {
			recipes = recipes.Limit(recipesLimit)
		}
		details[i].Recipes = []models.Recipe{}
		if recipesLimit == 0 {
			continue
		}
		if err := recipes.Find(&details[i].Recipes).Error; err != nil {
			return nil, err
		}
	}
	return details, nil
}

func findUser(tx *gorm.DB, userID uint) (models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, withMessage(ErrNotFound, "user not found")
		}
		return models.User{}, err
	}
	return user, nil
}
