package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/internal/testutil"
)

func countEdges(t *testing.T, f *fixture, followerID, followeeID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&n).Error)
	return n
}

func TestFollowByID_RejectsDuplicate(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	users := testutil.SeedUsers(t, f.db, "alice", "bob")
	alice, bob := users[0], users[1]

	ok, err := f.rel.FollowByID(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.rel.FollowByID(ctx, alice, bob.ID)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
	assert.False(t, ok)
	assert.Equal(t, int64(1), countEdges(t, f, alice.ID, bob.ID))
}

func TestFollowByID_Errors(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	alice := testutil.SeedUsers(t, f.db, "alice")[0]

	_, err := f.rel.FollowByID(ctx, alice, 999)
	assert.ErrorIs(t, err, ErrIDNotFound)

	_, err = f.rel.FollowByID(ctx, alice, alice.ID)
	assert.ErrorIs(t, err, ErrFollowSelf)
}

func TestUnfollowByID(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	users := testutil.SeedUsers(t, f.db, "alice", "bob")
	alice, bob := users[0], users[1]

	_, err := f.rel.UnfollowByID(ctx, alice, 999)
	assert.ErrorIs(t, err, ErrIDNotFound)

	_, err = f.rel.UnfollowByID(ctx, alice, bob.ID)
	assert.ErrorIs(t, err, ErrNotFollowing)

	_, err = f.rel.FollowByID(ctx, alice, bob.ID)
	require.NoError(t, err)

	ok, err := f.rel.UnfollowByID(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	following, err := f.rel.GetFollowing(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, following)

	_, err = f.rel.UnfollowByID(ctx, alice, bob.ID)
	assert.ErrorIs(t, err, ErrNotFollowing)
}

func TestFollowByUsername(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	users := testutil.SeedUsers(t, f.db, "alice", "bob", "carol")
	alice := users[0]

	_, err := f.rel.FollowByUsername(ctx, alice, "ghost")
	assert.ErrorIs(t, err, ErrUsernameNotFound)

	refreshed, err := f.rel.FollowByUsername(ctx, alice, "bob")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, refreshed.ID)
	assert.Equal(t, []string{"bob"}, usernames(refreshed.Following))

	refreshed, err = f.rel.FollowByUsername(ctx, alice, "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, usernames(refreshed.Following))

	_, err = f.rel.FollowByUsername(ctx, alice, "bob")
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
}

func TestUnfollowByUsername(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	users := testutil.SeedUsers(t, f.db, "alice", "bob")
	alice := users[0]

	_, err := f.rel.UnfollowByUsername(ctx, alice, "ghost")
	assert.ErrorIs(t, err, ErrUsernameNotFound)

	_, err = f.rel.UnfollowByUsername(ctx, alice, "bob")
	assert.ErrorIs(t, err, ErrNotFollowing)

	_, err = f.rel.FollowByUsername(ctx, alice, "bob")
	require.NoError(t, err)

	refreshed, err := f.rel.UnfollowByUsername(ctx, alice, "bob")
	require.NoError(t, err)
	assert.Empty(t, refreshed.Following)
}

func TestGetFollowers(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	celeb := testutil.SeedUsers(t, f.db, "celeb")[0]
	fans := testutil.SeedNumberedUsers(t, f.db, "fan", 15)
	for i := range fans {
		_, err := f.rel.FollowByID(ctx, &fans[i], celeb.ID)
		require.NoError(t, err)
	}

	page, err := f.rel.GetFollowers(ctx, celeb, 0, 0)
	require.NoError(t, err)
	require.Len(t, page, 10, "default limit")
	assert.Equal(t, "fan0000", page[0].Username)

	page, err = f.rel.GetFollowers(ctx, celeb, 10, 10)
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, "fan0010", page[0].Username)

	none, err := f.rel.GetFollowers(ctx, &fans[0], 0, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetFollowers_CacheSeesNewFollower(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	users := testutil.SeedUsers(t, f.db, "celeb", "alice", "bob")
	celeb, alice, bob := users[0], users[1], users[2]

	_, err := f.rel.FollowByID(ctx, alice, celeb.ID)
	require.NoError(t, err)

	first, err := f.rel.GetFollowers(ctx, celeb, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, usernames(first))

	// served from cache
	again, err := f.rel.GetFollowers(ctx, celeb, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, usernames(again))

	_, err = f.rel.FollowByID(ctx, bob, celeb.ID)
	require.NoError(t, err)
	after, err := f.rel.GetFollowers(ctx, celeb, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, usernames(after))

	_, err = f.rel.UnfollowByUsername(ctx, alice, "celeb")
	require.NoError(t, err)
	after, err = f.rel.GetFollowers(ctx, celeb, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, usernames(after))
}
