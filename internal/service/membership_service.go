package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/skylarnam/KakaoChatParserV2/internal/domain"
	"github.com/skylarnam/KakaoChatParserV2/internal/repository"
)

// DepartureSet holds the users that have left the room for good
type DepartureSet map[string]struct{}

// Contains reports whether the user is departed
func (d DepartureSet) Contains(user string) bool {
	_, ok := d[user]
	return ok
}

// Users returns the departed users sorted by name
func (d DepartureSet) Users() []string {
	users := make([]string, 0, len(d))
	for user := range d {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

// MembershipService reconstructs room membership from status messages
type MembershipService interface {
	DepartedUsers(ctx context.Context) (DepartureSet, error)
}

type membershipServiceImpl struct {
	messageRepo repository.MessageRepository
	logger      *zap.Logger
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(messageRepo repository.MessageRepository, logger *zap.Logger) MembershipService {
	return &membershipServiceImpl{
		messageRepo: messageRepo,
		logger:      logger,
	}
}

// DepartedUsers returns users whose last status event is a leave or removal
// and who have not posted anything after it. Nothing is cached between calls.
func (s *membershipServiceImpl) DepartedUsers(ctx context.Context) (DepartureSet, error) {
	statusMessages, err := s.messageRepo.FindStatusMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load status messages: %w", err)
	}

	events := make([]domain.StatusEvent, 0, len(statusMessages))
	for _, msg := range statusMessages {
		if event, ok := domain.ParseStatusEvent(msg); ok {
			events = append(events, event)
		}
	}

	candidates := LatestDepartures(events)
	if len(candidates) == 0 {
		return DepartureSet{}, nil
	}

	names := make([]string, 0, len(candidates))
	for user := range candidates {
		names = append(names, user)
	}
	lastSeen, err := s.messageRepo.LatestActivity(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest activity: %w", err)
	}

	departed := ResolveDepartures(candidates, lastSeen)

	s.logger.Debug("Reconstructed room membership",
		zap.Int("status_events", len(events)),
		zap.Int("departure_candidates", len(candidates)),
		zap.Int("departed", len(departed)),
	)

	return departed, nil
}

// LatestDepartures folds chronologically ordered events into each user's last
// status and returns the time of that status for users whose last status is a departure.
func LatestDepartures(events []domain.StatusEvent) map[string]time.Time {
	last := make(map[string]domain.StatusEvent, len(events))
	for _, event := range events {
		last[event.User] = event
	}

	departures := make(map[string]time.Time)
	for user, event := range last {
		if event.Status.IsDeparture() {
			departures[user] = event.At
		}
	}
	return departures
}

// ResolveDepartures drops candidates who posted strictly after their departure.
func ResolveDepartures(candidates map[string]time.Time, lastSeen map[string]time.Time) DepartureSet {
	departed := make(DepartureSet, len(candidates))
	for user, leftAt := range candidates {
		if seen, ok := lastSeen[user]; ok && seen.After(leftAt) {
			continue
		}
		departed[user] = struct{}{}
	}
	return departed
}
