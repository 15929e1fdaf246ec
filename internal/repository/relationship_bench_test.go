package repository

import (
	"context"
	"math/rand"
	"testing"

	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/internal/testutil"
)

func BenchmarkFollowWrite(b *testing.B) {
	db := testutil.NewDB(b)
	followRepo := NewFollowRepository(db)
	ctx := context.Background()

	users := testutil.SeedNumberedUsers(b, db, "u", 1000)
	rnd := rand.New(rand.NewSource(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := users[rnd.Intn(len(users))].ID
		to := users[rnd.Intn(len(users))].ID
		if from == to {
			continue
		}
		_, _ = followRepo.Create(ctx, from, to)
	}
}

// 构造：U0 有 N 个粉丝，同时 U0 也关注这 N 个用户
func BenchmarkQueryFollowersAndFollowing(b *testing.B) {
	db := testutil.NewDB(b)
	followRepo := NewFollowRepository(db)
	ctx := context.Background()

	const N = 5000
	u0 := testutil.SeedUsers(b, db, "root")[0]
	others := testutil.SeedNumberedUsers(b, db, "u", N)
	edges := make([]model.Follow, 0, 2*N)
	for _, u := range others {
		edges = append(edges,
			model.Follow{FollowerID: u.ID, FolloweeID: u0.ID},
			model.Follow{FollowerID: u0.ID, FolloweeID: u.ID},
		)
	}
	if err := db.CreateInBatches(&edges, 1000).Error; err != nil {
		b.Fatalf("seed follows: %v", err)
	}

	b.Run("ListFollowers_page", func(b *testing.B) {
		rnd := rand.New(rand.NewSource(2))
		for i := 0; i < b.N; i++ {
			if _, err := followRepo.ListFollowers(ctx, u0.ID, rnd.Intn(N/10)*10, 10); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("ListFollowerIDs_all", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := followRepo.ListFollowerIDs(ctx, u0.ID); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("ListFollowing_all", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := followRepo.ListFollowing(ctx, u0.ID); err != nil {
				b.Fatal(err)
			}
		}
	})
}
