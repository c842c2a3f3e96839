package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"campusride/internal/domain"
	"campusride/internal/repository"
)

// NotificationService delivers in-app notifications on ride lifecycle
// events. Delivery is best effort: every caller treats a failure here as
// log-and-continue, never as a failure of the primary operation.
type NotificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// NotifyJoinRequested tells the ride owner about a new join request.
func (s *NotificationService) NotifyJoinRequested(ctx context.Context, ride *domain.Ride, ownerID string, requester *domain.User) error {
	return s.send(ctx, &domain.Notification{
		UserID:        ownerID,
		Message:       fmt.Sprintf("%s has requested to join your ride from %s to %s", requester.Name, ride.Source, ride.Destination),
		Type:          domain.NotificationTypeRequest,
		RelatedRideID: ride.ID,
	})
}

// NotifyRequestAccepted tells the rider their request was accepted. The OTP
// travels in the notification body; this is the rider's copy of the code the
// driver will ask for at pickup.
func (s *NotificationService) NotifyRequestAccepted(ctx context.Context, ride *domain.Ride, riderID, otp string) error {
	return s.send(ctx, &domain.Notification{
		UserID:        riderID,
		Message:       fmt.Sprintf("Your ride request for %s to %s was ACCEPTED! Share OTP %s with your driver at pickup.", ride.Source, ride.Destination, otp),
		Type:          domain.NotificationTypeBooking,
		RelatedRideID: ride.ID,
	})
}

// NotifyRequestRejected tells the rider their request was rejected.
func (s *NotificationService) NotifyRequestRejected(ctx context.Context, ride *domain.Ride, riderID string) error {
	return s.send(ctx, &domain.Notification{
		UserID:        riderID,
		Message:       fmt.Sprintf("Your ride request for %s to %s was REJECTED.", ride.Source, ride.Destination),
		Type:          domain.NotificationTypeSystem,
		RelatedRideID: ride.ID,
	})
}

// NotifyPassengerOnboard tells the rider their pickup was confirmed.
func (s *NotificationService) NotifyPassengerOnboard(ctx context.Context, ride *domain.Ride, riderID string) error {
	return s.send(ctx, &domain.Notification{
		UserID:        riderID,
		Message:       fmt.Sprintf("You are onboard for the ride from %s to %s. Enjoy the trip!", ride.Source, ride.Destination),
		Type:          domain.NotificationTypeSystem,
		RelatedRideID: ride.ID,
	})
}

func (s *NotificationService) send(ctx context.Context, n *domain.Notification) error {
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now()

	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("failed to create notification for user %s: %v", n.UserID, err)
		return err
	}

	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Ride=%s", n.Type, n.UserID, n.RelatedRideID)
	return nil
}
