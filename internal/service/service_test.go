package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/drink-tracker/internal/cache"
	"github.com/d60-Lab/drink-tracker/internal/repository"
	"github.com/d60-Lab/drink-tracker/internal/testutil"
	"github.com/d60-Lab/drink-tracker/pkg/auth"
)

type fixture struct {
	db     *gorm.DB
	users  UserService
	rel    RelationshipService
	drinks DrinkService
	notifs NotificationService
}

func newFixture(t *testing.T, withCache bool) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	var followerCache *cache.FollowerCache
	if withCache {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		followerCache = cache.NewFollowerCache(client, time.Minute)
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	drinkRepo := repository.NewDrinkRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	return &fixture{
		db:     db,
		users:  NewUserService(db, userRepo, followRepo, followerCache, auth.NewBcryptHasher(bcrypt.MinCost), 100, 10),
		rel:    NewRelationshipService(db, userRepo, followRepo, followerCache, 10),
		drinks: NewDrinkService(db, drinkRepo, NewFanout(followRepo, notifRepo)),
		notifs: NewNotificationService(notifRepo),
	}
}
