package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/bookers/internal/cache"
	"github.com/d60-Lab/bookers/internal/model"
	"github.com/d60-Lab/bookers/internal/repository"
	"github.com/d60-Lab/bookers/internal/testutil"
)

func TestRelationshipService(t *testing.T) {
	for _, withCache := range []bool{false, true} {
		name := "db"
		if withCache {
			name = "redis"
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, withCache)
			ctx := background()
			a := testutil.CreateUser(t, f.db, "alice")
			b := testutil.CreateUser(t, f.db, "bob")

			ok, err := f.relations.IsFollowing(ctx, a.ID, b.ID)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, f.relations.Follow(ctx, a.ID, b.ID))

			ok, err = f.relations.IsFollowing(ctx, a.ID, b.ID)
			require.NoError(t, err)
			assert.True(t, ok, "follow must be visible through the cache")

			ok, err = f.relations.IsFollowing(ctx, b.ID, a.ID)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, f.relations.Unfollow(ctx, a.ID, b.ID))
			ok, err = f.relations.IsFollowing(ctx, a.ID, b.ID)
			require.NoError(t, err)
			assert.False(t, ok)

			assert.ErrorIs(t, f.relations.Unfollow(ctx, a.ID, b.ID), repository.ErrRelationshipNotFound)
		})
	}
}

func TestRelationshipService_FollowRules(t *testing.T) {
	f := newFixture(t, false)
	ctx := background()
	a := testutil.CreateUser(t, f.db, "alice")
	b := testutil.CreateUser(t, f.db, "bob")

	assert.ErrorIs(t, f.relations.Follow(ctx, a.ID, a.ID), ErrFollowSelf)
	assert.ErrorIs(t, f.relations.Follow(ctx, a.ID, "missing"), repository.ErrUserNotFound)

	require.NoError(t, f.relations.Follow(ctx, a.ID, b.ID))
	require.NoError(t, f.relations.Follow(ctx, a.ID, b.ID))
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Relationship{}, ""))
}

func TestRelationshipService_ListsAndMutual(t *testing.T) {
	f := newFixture(t, true)
	ctx := background()
	a := testutil.CreateUser(t, f.db, "alice")
	b := testutil.CreateUser(t, f.db, "bob")
	c := testutil.CreateUser(t, f.db, "carol")

	require.NoError(t, f.relations.Follow(ctx, a.ID, b.ID))
	require.NoError(t, f.relations.Follow(ctx, a.ID, c.ID))
	require.NoError(t, f.relations.Follow(ctx, b.ID, a.ID))

	followings, err := f.relations.ListFollowings(ctx, a.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, followings, 2)

	followers, err := f.relations.ListFollowers(ctx, a.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "bob", followers[0].Name)

	_, err = f.relations.ListFollowers(ctx, "missing", 1, 10)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	mutual, err := f.relations.IsMutual(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, mutual)
	mutual, err = f.relations.IsMutual(ctx, a.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, mutual)

	stats, err := f.relations.Stats(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, &FollowStats{Followings: 2, Followers: 1}, stats)
}

func TestRelationshipService_CacheServesRepeatedChecks(t *testing.T) {
	f := newFixture(t, true)
	ctx := background()
	a := testutil.CreateUser(t, f.db, "alice")
	b := testutil.CreateUser(t, f.db, "bob")
	require.NoError(t, f.relations.Follow(ctx, a.ID, b.ID))

	f.cache.ResetCounters()
	for i := 0; i < 5; i++ {
		ok, err := f.relations.IsFollowing(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, int64(1), f.cache.Counters().Loads)
	assert.Equal(t, int64(4), f.cache.Counters().Hits)
}

func TestRelationshipService_FollowDuringCacheFill(t *testing.T) {
	f := newFixture(t, true)
	ctx := background()
	a := testutil.CreateUser(t, f.db, "alice")
	b := testutil.CreateUser(t, f.db, "bob")
	rels := repository.NewRelationshipRepository(f.db)

	// 加载到旧列表后、回填前，另一个请求完成了关注
	load := func(ctx context.Context) ([]string, error) {
		ids, err := rels.FollowingIDs(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		require.NoError(t, f.relations.Follow(ctx, a.ID, b.ID))
		return ids, nil
	}
	_, err := f.cache.IsFollowing(ctx, a.ID, b.ID, load)
	assert.ErrorIs(t, err, cache.ErrStaleFill)

	ok, err := f.relations.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok, "stale list must not be written back")

	ok, err = f.relations.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRelationshipService_DeletedFollower(t *testing.T) {
	f := newFixture(t, false)
	ctx := background()
	a := testutil.CreateUser(t, f.db, "alice")
	b := testutil.CreateUser(t, f.db, "bob")

	require.NoError(t, f.users.Delete(ctx, a.ID))
	assert.ErrorIs(t, f.relations.Follow(ctx, a.ID, b.ID), repository.ErrUserNotFound)
	assert.Equal(t, int64(0), testutil.Count(t, f.db, &model.Relationship{}, ""))

	stats, err := f.relations.Stats(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Followers)
}
