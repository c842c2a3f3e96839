package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"campusride/internal/domain"
	"campusride/internal/redis"
	"campusride/internal/repository"
)

const (
	rideLockTTL       = 10 * time.Second
	rideLockWait      = 2 * time.Second
	rideLockRetry     = 50 * time.Millisecond
	otpDigits         = 10000 // codes are sampled uniformly from [0, 10000)
	maxOTPAttempts    = 100
	actionAccept      = "accept"
	actionReject      = "reject"
)

// LifecycleService implements the request/accept/reject/OTP-verify protocol
// against a ride. It is the sole writer of a ride's membership and seat
// state: every read-modify-write runs inside a repository transaction with
// the ride row locked, so concurrent accepts on the last seat resolve to
// exactly one success.
type LifecycleService struct {
	rideRepo            repository.RideRepository
	userRepo            repository.UserRepository
	lockStore           redis.LockStoreInterface
	notificationService *NotificationService
}

// NewLifecycleService creates a new LifecycleService. lockStore may be nil;
// it only reduces row-lock contention.
func NewLifecycleService(
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	lockStore redis.LockStoreInterface,
	notificationService *NotificationService,
) *LifecycleService {
	return &LifecycleService{
		rideRepo:            rideRepo,
		userRepo:            userRepo,
		lockStore:           lockStore,
		notificationService: notificationService,
	}
}

// RequestToJoin appends the requester to the ride's pending set. The seat
// check here is advisory; the authoritative check happens at acceptance,
// since seats may be consumed by other acceptances in between.
func (s *LifecycleService) RequestToJoin(ctx context.Context, rideID, requesterID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if requesterID == "" {
		return nil, ErrInvalidUserID
	}

	var owner string
	err := s.rideRepo.Transact(ctx, func(repo repository.RideRepository) error {
		ride, err := repo.GetByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}

		if ride.CreatedBy == requesterID {
			return ErrOwnRide
		}
		if ride.IsPending(requesterID) || ride.HasRider(requesterID) {
			return ErrAlreadyRequested
		}
		if ride.AvailableSeats <= 0 {
			return ErrNoSeatsAvailable
		}

		owner = ride.CreatedBy
		return repo.AddPendingRider(ctx, rideID, requesterID)
	})
	if err != nil {
		return nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	// Best effort: a failed notification never fails the join request.
	if s.notificationService != nil {
		requester, lookupErr := s.userRepo.GetByID(ctx, requesterID)
		if lookupErr != nil {
			requester = &domain.User{ID: requesterID, Name: "A rider"}
		}
		_ = s.notificationService.NotifyJoinRequested(ctx, ride, owner, requester)
	}

	return ride, nil
}

// RespondRequest contains the parameters for accepting or rejecting a join
// request.
type RespondRequest struct {
	RideID       string
	ActingUserID string
	RiderID      string
	Action       string // "accept" or "reject"
}

// RespondToRequest resolves a pending join request. Accepting moves the rider
// into the accepted set, deducts a seat and issues a pickup OTP; rejecting
// only removes the pending entry. Requests are resolved in whatever order the
// owner chooses.
func (s *LifecycleService) RespondToRequest(ctx context.Context, req RespondRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.ActingUserID == "" || req.RiderID == "" {
		return nil, ErrInvalidUserID
	}
	if req.Action != actionAccept && req.Action != actionReject {
		return nil, ErrInvalidAction
	}

	s.acquireRideLock(ctx, req.RideID)
	defer s.releaseRideLock(ctx, req.RideID)

	var issuedOTP string
	err := s.rideRepo.Transact(ctx, func(repo repository.RideRepository) error {
		ride, err := repo.GetByIDForUpdate(ctx, req.RideID)
		if err != nil {
			return err
		}

		if ride.CreatedBy != req.ActingUserID {
			return ErrNotRideOwner
		}
		if !ride.IsPending(req.RiderID) {
			return ErrRequestNotFound
		}

		if req.Action == actionReject {
			return repo.RemovePendingRider(ctx, req.RideID, req.RiderID)
		}

		// Authoritative capacity gate: the conditional decrement and the
		// membership move commit or fail together.
		ok, err := repo.DecrementSeat(ctx, req.RideID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoSeatsAvailable
		}

		if err := repo.RemovePendingRider(ctx, req.RideID, req.RiderID); err != nil {
			return err
		}
		if err := repo.AddRider(ctx, req.RideID, req.RiderID); err != nil {
			return err
		}

		otp, err := generatePickupOTP(confirmedOTPs(ride))
		if err != nil {
			return err
		}
		issuedOTP = otp

		return repo.AddPassenger(ctx, req.RideID, domain.Passenger{
			RiderID:   req.RiderID,
			OTP:       otp,
			Status:    domain.PassengerStatusConfirmed,
			CreatedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		if req.Action == actionAccept {
			_ = s.notificationService.NotifyRequestAccepted(ctx, ride, req.RiderID, issuedOTP)
		} else {
			_ = s.notificationService.NotifyRequestRejected(ctx, ride, req.RiderID)
		}
	}

	return ride, nil
}

// VerifyOTP transitions the confirmed passenger holding the submitted OTP to
// onboard and stamps the pickup time. Only the owning driver may verify.
func (s *LifecycleService) VerifyOTP(ctx context.Context, rideID, actingUserID, submittedOTP string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if actingUserID == "" {
		return nil, ErrInvalidUserID
	}
	if submittedOTP == "" {
		return nil, ErrInvalidOTP
	}

	var pickedUpRider string
	err := s.rideRepo.Transact(ctx, func(repo repository.RideRepository) error {
		ride, err := repo.GetByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}

		if ride.CreatedBy != actingUserID {
			return ErrNotRideOwner
		}

		// OTPs are unique among the currently-confirmed passengers of a
		// ride; an already-onboard passenger's code no longer matches.
		for i := range ride.Passengers {
			p := &ride.Passengers[i]
			if p.OTP == submittedOTP && p.Status == domain.PassengerStatusConfirmed {
				pickedUpRider = p.RiderID
				return repo.UpdatePassengerStatus(ctx, rideID, p.RiderID, domain.PassengerStatusOnboard, time.Now())
			}
		}
		return ErrInvalidOTP
	})
	if err != nil {
		return nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyPassengerOnboard(ctx, ride, pickedUpRider)
	}

	return ride, nil
}

// acquireRideLock best-effort serializes writers of one ride ahead of the
// database row lock. On contention it waits briefly, then proceeds anyway:
// the transaction remains the source of truth.
func (s *LifecycleService) acquireRideLock(ctx context.Context, rideID string) {
	if s.lockStore == nil {
		return
	}

	deadline := time.Now().Add(rideLockWait)
	for {
		locked, err := s.lockStore.AcquireRideLock(ctx, rideID, rideLockTTL)
		if err != nil || locked {
			return
		}
		if time.Now().After(deadline) {
			return
		}
		time.Sleep(rideLockRetry)
	}
}

func (s *LifecycleService) releaseRideLock(ctx context.Context, rideID string) {
	if s.lockStore == nil {
		return
	}
	_ = s.lockStore.ReleaseRideLock(ctx, rideID)
}

// confirmedOTPs collects the codes currently held by confirmed passengers.
func confirmedOTPs(ride *domain.Ride) map[string]bool {
	taken := make(map[string]bool)
	for _, p := range ride.Passengers {
		if p.Status == domain.PassengerStatusConfirmed {
			taken[p.OTP] = true
		}
	}
	return taken
}

// generatePickupOTP draws a 4-digit code from crypto/rand, uniformly over the
// full digit range, re-drawing on collision with a code already held by a
// confirmed passenger of the same ride.
func generatePickupOTP(taken map[string]bool) (string, error) {
	for i := 0; i < maxOTPAttempts; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(otpDigits))
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("%04d", n.Int64())
		if !taken[code] {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique pickup otp after %d attempts", maxOTPAttempts)
}
