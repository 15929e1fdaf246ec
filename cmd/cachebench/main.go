package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/drink-tracker/config"
	"github.com/d60-Lab/drink-tracker/internal/cache"
	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/internal/repository"
	"github.com/d60-Lab/drink-tracker/internal/service"
	"github.com/d60-Lab/drink-tracker/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	return xs[k]
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

// 对比粉丝列表在无缓存 / Redis 分页缓存下的延迟，
// 每 writeEvery 次读插入一次关注，模拟版本号失效
func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer database.Close(db)

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer client.Close()
	mustDo(client.Ping(ctx).Err())

	N := envInt("N", 10000)
	reqs := envInt("REQS", 5000)
	writeEvery := envInt("WRITE_EVERY", 200)
	pageSize := cfg.Pagination.FollowerLimit

	run := uuid.NewString()[:8]
	star := &model.User{Username: "star_" + run, HashedPassword: "x"}
	mustDo(db.Create(star).Error)
	fans := make([]model.User, N+reqs/writeEvery+1)
	for i := range fans {
		fans[i] = model.User{Username: fmt.Sprintf("fan_%s_%d", run, i), HashedPassword: "x"}
	}
	mustDo(db.CreateInBatches(&fans, 1000).Error)
	edges := make([]model.Follow, N)
	for i := 0; i < N; i++ {
		edges[i] = model.Follow{FollowerID: fans[i].ID, FolloweeID: star.ID}
	}
	mustDo(db.CreateInBatches(&edges, 1000).Error)

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)

	scenario := func(name string, fc *cache.FollowerCache) {
		svc := service.NewRelationshipService(db, userRepo, followRepo, fc, pageSize)
		rnd := rand.New(rand.NewSource(1))
		next := N
		lat := make([]time.Duration, 0, reqs)
		for i := 0; i < reqs; i++ {
			if i > 0 && i%writeEvery == 0 {
				// 新粉丝，触发失效
				must(svc.FollowByID(ctx, &fans[next], star.ID))
				next++
			}
			// 热点集中在前几页
			page := int(rnd.ExpFloat64() * 3)
			st := time.Now()
			must(svc.GetFollowers(ctx, star, page*pageSize, pageSize))
			lat = append(lat, time.Since(st))
		}
		fmt.Printf("%-12s avg=%v p50=%v p95=%v p99=%v\n", name, avg(lat), pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99))
		// 复位本轮新增的关注，保证两个场景数据一致
		for j := N; j < next; j++ {
			must(followRepo.Delete(ctx, fans[j].ID, star.ID))
		}
	}

	fmt.Printf("followers=%d requests=%d write_every=%d page=%d\n", N, reqs, writeEvery, pageSize)
	scenario("no cache", nil)
	scenario("redis cache", cache.NewFollowerCache(client, cfg.Redis.TTL))
}
