package services

import (
	"fmt"
	"time"

	"github.com/ad/go-telegram-gorbushka/internal/models"
)

const ResubmitCooldown = 5 * time.Minute

const TextAlreadyApproved = "Ваша заявка уже одобрена, вы зарегистрированы в системе"

type ApplicationHistory interface {
	FindAllByUserID(userID int64) ([]*models.Application, error)
}

// EligibilityGate decides whether a user may (re)enter the intake flow.
type EligibilityGate struct {
	apps ApplicationHistory
	now  func() time.Time
}

func NewEligibilityGate(apps ApplicationHistory, now func() time.Time) *EligibilityGate {
	if now == nil {
		now = time.Now
	}
	return &EligibilityGate{apps: apps, now: now}
}

// Check returns an empty string when the user may proceed, otherwise the
// message explaining why not. An approved application blocks for good; a
// rejection blocks until the cooldown has passed since the latest decision.
func (g *EligibilityGate) Check(userID int64) (string, error) {
	apps, err := g.apps.FindAllByUserID(userID)
	if err != nil {
		return "", fmt.Errorf("load applications of %d: %w", userID, err)
	}

	var (
		rejected   bool
		minElapsed time.Duration
	)
	now := g.now()
	for _, app := range apps {
		switch app.Status {
		case models.ApplicationStatusApproved:
			return TextAlreadyApproved, nil
		case models.ApplicationStatusRejected:
			if app.DecisionAt == nil {
				continue
			}
			elapsed := now.Sub(*app.DecisionAt)
			if elapsed < 0 {
				elapsed = 0
			}
			if !rejected || elapsed < minElapsed {
				minElapsed = elapsed
			}
			rejected = true
		}
	}

	if rejected && minElapsed < ResubmitCooldown {
		remaining := int(ResubmitCooldown.Minutes()) - int(minElapsed.Minutes())
		return fmt.Sprintf("Подождите %d мин. перед повторной подачей заявки. ⏳", remaining), nil
	}
	return "", nil
}
