package service

import (
	"context"
	"time"

	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/internal/repository"
)

// NotificationView 通知流里粉丝能看到的字段
type NotificationView struct {
	User     model.User `json:"user"`
	Glasses  int        `json:"glasses"`
	Datetime time.Time  `json:"datetime"`
}

// NotificationService 通知流
type NotificationService interface {
	GetNotifications(ctx context.Context, user *model.User) ([]NotificationView, error)
	MarkAllReceived(ctx context.Context, user *model.User) (int64, error)
	CountUnseen(ctx context.Context, user *model.User) (int64, error)
}

type notificationService struct {
	notifRepo repository.NotificationRepository
}

func NewNotificationService(notifRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notifRepo: notifRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, user *model.User) ([]NotificationView, error) {
	rows, err := s.notifRepo.ListFeed(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	out := make([]NotificationView, len(rows))
	for i, r := range rows {
		out[i] = NotificationView{
			User: model.User{
				ID:        r.DrinkerID,
				Username:  r.Username,
				FirstName: r.FirstName,
				LastName:  r.LastName,
				IsAdmin:   r.IsAdmin,
				CreatedAt: r.DrinkerCreatedAt,
			},
			Glasses:  r.Glasses,
			Datetime: r.Datetime,
		}
	}
	return out, nil
}

func (s *notificationService) MarkAllReceived(ctx context.Context, user *model.User) (int64, error) {
	return s.notifRepo.MarkAllReceived(ctx, user.ID)
}

func (s *notificationService) CountUnseen(ctx context.Context, user *model.User) (int64, error) {
	return s.notifRepo.CountUnseen(ctx, user.ID)
}
