package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/drink-tracker/config"
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
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

// 度量 AddDrink（事务内写 drink + 扇出通知）随粉丝数变化的延迟
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer database.Close(db)

	N := envInt("N", 5000)         // 粉丝数
	drinks := envInt("DRINKS", 50) // 记录次数

	followRepo := repository.NewFollowRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	drinkSvc := service.NewDrinkService(db, repository.NewDrinkRepository(db), service.NewFanout(followRepo, notifRepo))

	ctx := context.Background()
	run := uuid.NewString()[:8]

	// seed: 1 个 drinker + N 个粉丝
	drinker := &model.User{Username: "bench_" + run, HashedPassword: "x"}
	must(0, db.Create(drinker).Error)
	fans := make([]model.User, N)
	for i := range fans {
		fans[i] = model.User{Username: fmt.Sprintf("bench_%s_%d", run, i), HashedPassword: "x"}
	}
	must(0, db.CreateInBatches(&fans, 1000).Error)
	edges := make([]model.Follow, N)
	for i := range fans {
		edges[i] = model.Follow{FollowerID: fans[i].ID, FolloweeID: drinker.ID}
	}
	must(0, db.CreateInBatches(&edges, 1000).Error)

	recs := make([]time.Duration, 0, drinks)
	t0 := time.Now()
	for i := 0; i < drinks; i++ {
		st := time.Now()
		must(drinkSvc.AddDrink(ctx, drinker, 1+i%3))
		recs = append(recs, time.Since(st))
	}
	total := time.Since(t0)

	var written int64
	db.Model(&model.DrinkNotification{}).
		Joins("JOIN drinks ON drinks.id = drink_notifications.drink_id").
		Where("drinks.user_id = ?", drinker.ID).
		Count(&written)

	fmt.Printf("driver=%s fans=%d drinks=%d\n", cfg.Database.Driver, N, drinks)
	fmt.Printf("AddDrink total=%v per op=%v p50=%v p95=%v p99=%v\n",
		total, total/time.Duration(drinks), pct(recs, 0.50), pct(recs, 0.95), pct(recs, 0.99))
	fmt.Printf("notifications written=%d (expected %d)\n", written, int64(N)*int64(drinks))
}
