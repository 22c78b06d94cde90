package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/skylarnam/KakaoChatParserV2/internal/domain"
)

var propertyStatuses = []domain.MembershipStatus{domain.StatusJoined, domain.StatusLeft, domain.StatusRemoved}

// eventsFromCodes turns generator codes into a chronological event log over four users
func eventsFromCodes(codes []int) []domain.StatusEvent {
	events := make([]domain.StatusEvent, len(codes))
	for i, code := range codes {
		events[i] = domain.StatusEvent{
			User:   fmt.Sprintf("user-%d", code/len(propertyStatuses)),
			Status: propertyStatuses[code%len(propertyStatuses)],
			At:     at(0).Add(time.Duration(i) * time.Minute),
		}
	}
	return events
}

func propertyParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return parameters
}

// Only the chronologically last status event of a user decides whether they are a departure candidate
func TestProperty_LastEventDecides(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("departure candidates match each user's last event", prop.ForAll(
		func(codes []int) bool {
			events := eventsFromCodes(codes)
			got := LatestDepartures(events)

			last := map[string]domain.StatusEvent{}
			for _, event := range events {
				last[event.User] = event
			}

			for user, event := range last {
				leftAt, isCandidate := got[user]
				if isCandidate != event.Status.IsDeparture() {
					return false
				}
				if isCandidate && !leftAt.Equal(event.At) {
					return false
				}
			}
			for user := range got {
				if _, ok := last[user]; !ok {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 4*len(propertyStatuses)-1)),
	))

	properties.TestingRun(t)
}

// Replaying the log a second time (shifted later) leaves the candidate set unchanged
func TestProperty_ReplayIsStable(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("replayed log yields the same users", prop.ForAll(
		func(codes []int) bool {
			once := LatestDepartures(eventsFromCodes(codes))
			twice := LatestDepartures(eventsFromCodes(append(append([]int{}, codes...), codes...)))

			if len(once) != len(twice) {
				return false
			}
			for user := range once {
				if _, ok := twice[user]; !ok {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 4*len(propertyStatuses)-1)),
	))

	properties.TestingRun(t)
}

// neverPosted marks a generated candidate without any message
const neverPosted = 6

// A candidate stays departed unless they posted strictly after their departure
func TestProperty_ReactivationIsStrict(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("departed iff no later message", prop.ForAll(
		func(offsets []int) bool {
			candidates := map[string]time.Time{}
			lastSeen := map[string]time.Time{}
			for i, offset := range offsets {
				user := fmt.Sprintf("user-%d", i)
				leftAt := at(30)
				candidates[user] = leftAt
				if offset != neverPosted {
					lastSeen[user] = leftAt.Add(time.Duration(offset) * time.Second)
				}
			}

			departed := ResolveDepartures(candidates, lastSeen)
			for i, offset := range offsets {
				user := fmt.Sprintf("user-%d", i)
				wantDeparted := offset == neverPosted || offset <= 0
				if departed.Contains(user) != wantDeparted {
					return false
				}
			}
			return len(departed) <= len(candidates)
		},
		gen.SliceOf(gen.IntRange(-5, neverPosted)),
	))

	properties.TestingRun(t)
}
