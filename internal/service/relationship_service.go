package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/drink-tracker/internal/cache"
	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/internal/repository"
)

// RelationshipService 关系链服务
type RelationshipService interface {
	FollowByID(ctx context.Context, user *model.User, targetID uint) (bool, error)
	UnfollowByID(ctx context.Context, user *model.User, targetID uint) (bool, error)
	FollowByUsername(ctx context.Context, user *model.User, username string) (*model.User, error)
	UnfollowByUsername(ctx context.Context, user *model.User, username string) (*model.User, error)
	GetFollowers(ctx context.Context, user *model.User, skip, limit int) ([]model.User, error)
	GetFollowing(ctx context.Context, user *model.User) ([]model.User, error)
	// WithFollowing 重新加载用户并填充 Following
	WithFollowing(ctx context.Context, user *model.User) (*model.User, error)
}

type relationshipService struct {
	db            *gorm.DB
	userRepo      repository.UserRepository
	followRepo    repository.FollowRepository
	cache         *cache.FollowerCache
	followerLimit int
}

func NewRelationshipService(db *gorm.DB, userRepo repository.UserRepository, followRepo repository.FollowRepository, followerCache *cache.FollowerCache, followerLimit int) RelationshipService {
	if followerLimit <= 0 {
		followerLimit = 10
	}
	return &relationshipService{db: db, userRepo: userRepo, followRepo: followRepo, cache: followerCache, followerLimit: followerLimit}
}

func (s *relationshipService) follow(ctx context.Context, user *model.User, lookup func(repository.UserRepository) (*model.User, error), notFound error) (*model.User, error) {
	var target *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		target, err = lookup(s.userRepo.WithTx(tx))
		if err != nil {
			return err
		}
		if target == nil {
			return notFound
		}
		if target.ID == user.ID {
			return ErrFollowSelf
		}
		created, err := s.followRepo.WithTx(tx).Create(ctx, user.ID, target.ID)
		if err != nil {
			return err
		}
		if !created {
			return ErrAlreadyFollowing
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, target.ID)
	return target, nil
}

func (s *relationshipService) unfollow(ctx context.Context, user *model.User, lookup func(repository.UserRepository) (*model.User, error), notFound error) (*model.User, error) {
	var target *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		target, err = lookup(s.userRepo.WithTx(tx))
		if err != nil {
			return err
		}
		if target == nil {
			return notFound
		}
		deleted, err := s.followRepo.WithTx(tx).Delete(ctx, user.ID, target.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFollowing
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, target.ID)
	return target, nil
}

func byID(ctx context.Context, id uint) func(repository.UserRepository) (*model.User, error) {
	return func(r repository.UserRepository) (*model.User, error) { return r.GetByID(ctx, id) }
}

func byUsername(ctx context.Context, username string) func(repository.UserRepository) (*model.User, error) {
	return func(r repository.UserRepository) (*model.User, error) { return r.GetByUsername(ctx, username) }
}

func (s *relationshipService) FollowByID(ctx context.Context, user *model.User, targetID uint) (bool, error) {
	if _, err := s.follow(ctx, user, byID(ctx, targetID), ErrIDNotFound); err != nil {
		return false, err
	}
	return true, nil
}

func (s *relationshipService) UnfollowByID(ctx context.Context, user *model.User, targetID uint) (bool, error) {
	if _, err := s.unfollow(ctx, user, byID(ctx, targetID), ErrIDNotFound); err != nil {
		return false, err
	}
	return true, nil
}

func (s *relationshipService) FollowByUsername(ctx context.Context, user *model.User, username string) (*model.User, error) {
	if _, err := s.follow(ctx, user, byUsername(ctx, username), ErrUsernameNotFound); err != nil {
		return nil, err
	}
	return s.WithFollowing(ctx, user)
}

func (s *relationshipService) UnfollowByUsername(ctx context.Context, user *model.User, username string) (*model.User, error) {
	if _, err := s.unfollow(ctx, user, byUsername(ctx, username), ErrUsernameNotFound); err != nil {
		return nil, err
	}
	return s.WithFollowing(ctx, user)
}

func (s *relationshipService) GetFollowers(ctx context.Context, user *model.User, skip, limit int) ([]model.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = s.followerLimit
	}
	if cached, ok := s.cache.Get(ctx, user.ID, skip, limit); ok {
		return cached, nil
	}
	ver := s.cache.Version(ctx, user.ID)
	followers, err := s.followRepo.ListFollowers(ctx, user.ID, skip, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, user.ID, skip, limit, followers, ver)
	return followers, nil
}

func (s *relationshipService) GetFollowing(ctx context.Context, user *model.User) ([]model.User, error) {
	return s.followRepo.ListFollowing(ctx, user.ID)
}

func (s *relationshipService) WithFollowing(ctx context.Context, user *model.User) (*model.User, error) {
	fresh, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, ErrIDNotFound
	}
	following, err := s.followRepo.ListFollowing(ctx, fresh.ID)
	if err != nil {
		return nil, err
	}
	if following == nil {
		following = []model.User{}
	}
	fresh.Following = following
	return fresh, nil
}
