package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	subs := NewSubscriptionService(f.db)
	follower := createUser(t, f.db, "follower")

	f.createRecipe(t, "First", IngredientLine{IngredientID: f.flour.ID, Amount: 1})
	f.createRecipe(t, "Second", IngredientLine{IngredientID: f.sugar.ID, Amount: 1})
	f.createRecipe(t, "Third", IngredientLine{IngredientID: f.eggs.ID, Amount: 1})

	author, err := subs.Subscribe(context.Background(), follower.ID, f.author.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, f.author.ID, author.ID)
	assert.True(t, author.IsSubscribed)
	assert.EqualValues(t, 3, author.RecipesCount, "count ignores the recipes limit")
	assert.Len(t, author.Recipes, 2)

	_, err = subs.Subscribe(context.Background(), follower.ID, f.author.ID, NoRecipesLimit)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = subs.Subscribe(context.Background(), follower.ID, 9999, NoRecipesLimit)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscribeToSelf(t *testing.T) {
	db := setupTestDB(t)
	subs := NewSubscriptionService(db)
	user := createUser(t, db, "narcissus")

	_, err := subs.Subscribe(context.Background(), user.ID, user.ID, NoRecipesLimit)
	assert.ErrorIs(t, err, ErrSelfSubscription)

	// the model hook rejects the row even when the service check is bypassed
	err = db.Create(&models.Subscription{SubscriberID: user.ID, AuthorID: user.ID}).Error
	assert.ErrorIs(t, err, models.ErrSelfSubscription)

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUnsubscribe(t *testing.T) {
	db := setupTestDB(t)
	subs := NewSubscriptionService(db)
	follower := createUser(t, db, "follower")
	author := createUser(t, db, "author")

	assert.ErrorIs(t, subs.Unsubscribe(context.Background(), follower.ID, author.ID), ErrNotLinked)

	_, err := subs.Subscribe(context.Background(), follower.ID, author.ID, 0)
	require.NoError(t, err)
	require.NoError(t, subs.Unsubscribe(context.Background(), follower.ID, author.ID))
	assert.ErrorIs(t, subs.Unsubscribe(context.Background(), follower.ID, author.ID), ErrNotLinked)

	err = subs.Unsubscribe(context.Background(), follower.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrNotLinked)
}

func TestListSubscriptions(t *testing.T) {
	f := newFixture(t)
	subs := NewSubscriptionService(f.db)
	follower := createUser(t, f.db, "follower")
	zed := createUser(t, f.db, "zed")
	createUser(t, f.db, "ignored")

	f.createRecipe(t, "Soup", IngredientLine{IngredientID: f.eggs.ID, Amount: 1})
	f.createRecipe(t, "Stew", IngredientLine{IngredientID: f.flour.ID, Amount: 1})

	_, err := subs.Subscribe(context.Background(), follower.ID, zed.ID, 0)
	require.NoError(t, err)
	_, err = subs.Subscribe(context.Background(), follower.ID, f.author.ID, 0)
	require.NoError(t, err)

	authors, total, err := subs.ListSubscriptions(context.Background(), follower.ID, 0, 10, NoRecipesLimit)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, authors, 2)

	// ordered by username
	assert.Equal(t, "author", authors[0].Username)
	assert.Len(t, authors[0].Recipes, 2)
	assert.EqualValues(t, 2, authors[0].RecipesCount)
	assert.Equal(t, "zed", authors[1].Username)
	assert.Empty(t, authors[1].Recipes)
	for _, a := range authors {
		assert.True(t, a.IsSubscribed)
	}

	limited, _, err := subs.ListSubscriptions(context.Background(), follower.ID, 0, 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, limited[0].Recipes)
	assert.Empty(t, limited[0].Recipes)
	assert.EqualValues(t, 2, limited[0].RecipesCount)

	page, total, err := subs.ListSubscriptions(context.Background(), follower.ID, 1, 1, NoRecipesLimit)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, zed.ID, page[0].ID)
}
