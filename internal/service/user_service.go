package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/drink-tracker/internal/cache"
	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/internal/repository"
	"github.com/d60-Lab/drink-tracker/pkg/auth"
)

// UserCreate 注册信息
type UserCreate struct {
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// UserPage 分页结果，MaxPage = ceil(Total / limit)
type UserPage struct {
	Total   int64        `json:"total"`
	Results []model.User `json:"results"`
	MaxPage int64        `json:"max_page"`
}

// UserService 用户目录
type UserService interface {
	GetUser(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	ModifyAdminFlag(ctx context.Context, id uint, isAdmin bool) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) (bool, error)
	ListUsers(ctx context.Context, page, limit int) (*UserPage, error)
	SearchUsers(ctx context.Context, requester *model.User, query string, skip, limit int) ([]model.User, error)
	CreateUser(ctx context.Context, in UserCreate, isAdmin bool) (*model.User, error)
	CreateAdminUser(ctx context.Context, in UserCreate) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

type userService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	cache       *cache.FollowerCache
	hasher      auth.PasswordHasher
	pageLimit   int
	searchLimit int
}

// NewUserService followerCache 可为 nil
func NewUserService(db *gorm.DB, userRepo repository.UserRepository, followRepo repository.FollowRepository, followerCache *cache.FollowerCache, hasher auth.PasswordHasher, pageLimit, searchLimit int) UserService {
	if pageLimit <= 0 {
		pageLimit = 100
	}
	if searchLimit <= 0 {
		searchLimit = 10
	}
	return &userService{
		db:          db,
		userRepo:    userRepo,
		followRepo:  followRepo,
		cache:       followerCache,
		hasher:      hasher,
		pageLimit:   pageLimit,
		searchLimit: searchLimit,
	}
}

func (s *userService) GetUser(ctx context.Context, username string) (*model.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ModifyAdminFlag 用户出现在其关注对象的粉丝列表里，提交后失效这些缓存
func (s *userService) ModifyAdminFlag(ctx context.Context, id uint, isAdmin bool) (*model.User, error) {
	var (
		out       *model.User
		followees []uint
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.userRepo.WithTx(tx)
		u, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrIDNotFound
		}
		if err := repo.UpdateAdmin(ctx, id, isAdmin); err != nil {
			return err
		}
		if followees, err = s.followRepo.WithTx(tx).ListFolloweeIDs(ctx, id); err != nil {
			return err
		}
		u.IsAdmin = isAdmin
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, followees...)
	return out, nil
}

// DeleteUser 幂等删除，id 不存在也返回 true
func (s *userService) DeleteUser(ctx context.Context, id uint) (bool, error) {
	var followees []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if followees, err = s.followRepo.WithTx(tx).ListFolloweeIDs(ctx, id); err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}
	// sqlite 可能复用最大 id，自己的粉丝缓存也要失效
	s.invalidate(ctx, append(followees, id)...)
	return true, nil
}

func (s *userService) invalidate(ctx context.Context, followeeIDs ...uint) {
	for _, id := range followeeIDs {
		s.cache.Invalidate(ctx, id)
	}
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	if page < 0 {
		return nil, ErrPageNotAllowed
	}
	if limit <= 0 {
		limit = s.pageLimit
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	maxPage := (total + int64(limit) - 1) / int64(limit)
	// 第 0、1 页总是合法，即使库里没有用户
	if page > 1 && int64(page) > maxPage {
		return nil, ErrPageNotAllowed
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}
	results, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &UserPage{Total: total, Results: results, MaxPage: maxPage}, nil
}

func (s *userService) SearchUsers(ctx context.Context, requester *model.User, query string, skip, limit int) ([]model.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = s.searchLimit
	}
	return s.userRepo.SearchByPrefix(ctx, query, requester.ID, skip, limit)
}

func (s *userService) CreateUser(ctx context.Context, in UserCreate, isAdmin bool) (*model.User, error) {
	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	hashed, err := s.hasher.Hash(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Username:       in.Username,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		HashedPassword: hashed,
		IsAdmin:        isAdmin,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) CreateAdminUser(ctx context.Context, in UserCreate) (*model.User, error) {
	return s.CreateUser(ctx, in, true)
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(u.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return u, nil
}
