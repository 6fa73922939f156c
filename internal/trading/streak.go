package trading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atharvakonge/paper-trading-api/internal/metrics"
	"github.com/atharvakonge/paper-trading-api/internal/models"
	"github.com/atharvakonge/paper-trading-api/internal/store"
)

// DailyReward is the amount credited for the first login of a UTC
// calendar day.
const DailyReward = 100.00

// calendarDate truncates t to its UTC calendar date.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UpdateLoginStreak advances the login-streak state machine for userID.
//
// The machine runs on UTC calendar dates, not wall-clock durations, and
// keeps two independent comparisons: the last-login date drives streak
// continuity, the last-claim date drives reward eligibility. They are
// deliberately not collapsed into one check; after a date rollover the
// login date can advance while the claim stamp has not, and that
// interleaving must not grant a second reward.
func (s *Service) UpdateLoginStreak(ctx context.Context, userID int64) (*models.StreakResult, error) {
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	user, err := s.users.FindUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()

	// First-ever claim: start the streak and grant the reward.
	if user.StreakRewardClaimed == nil {
		user.Streak = 1
		user.LastLogin = &now
		user.StreakRewardClaimed = &now
		user.CashBalance = round2(user.CashBalance + DailyReward)
		if err := s.users.UpsertUser(ctx, user); err != nil {
			return nil, err
		}
		metrics.StreakRewards.Inc()
		return &models.StreakResult{
			Message: "First login! Streak started!",
			Streak:  1,
			Reward:  DailyReward,
		}, nil
	}

	lastLogin := *user.StreakRewardClaimed
	if user.LastLogin != nil {
		lastLogin = *user.LastLogin
	}

	currentDate := calendarDate(now)
	lastLoginDate := calendarDate(lastLogin)
	lastRewardDate := calendarDate(*user.StreakRewardClaimed)

	streak := user.Streak

	if currentDate.After(lastLoginDate) {
		if currentDate.Equal(lastLoginDate.AddDate(0, 0, 1)) {
			streak++
		} else {
			streak = 1
		}

		if currentDate.After(lastRewardDate) {
			user.Streak = streak
			user.LastLogin = &now
			user.StreakRewardClaimed = &now
			user.CashBalance = round2(user.CashBalance + DailyReward)
			if err := s.users.UpsertUser(ctx, user); err != nil {
				return nil, err
			}
			metrics.StreakRewards.Inc()
			return &models.StreakResult{
				Message: fmt.Sprintf("Daily login streak: %d days! Reward claimed: $%.0f", streak, DailyReward),
				Streak:  streak,
				Reward:  DailyReward,
			}, nil
		}
	}

	// Same-day login, or the date advanced but the reward was already
	// claimed today.
	user.Streak = streak
	user.LastLogin = &now
	if err := s.users.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	return &models.StreakResult{
		Message: fmt.Sprintf("Welcome back! Current streak: %d days", streak),
		Streak:  streak,
		Reward:  0,
	}, nil
}
