package models

import "time"

type ApplicationStatus string

const (
	ApplicationStatusNew      ApplicationStatus = "NEW"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

const (
	RoleSeller = "Оптовик"
	RoleBuyer  = "Покупатель"
)

// Application is an applicant's intake form. Status moves from NEW to a
// decided status exactly once; DecisionUserID and DecisionAt are set iff
// the status is not NEW.
type Application struct {
	ID             int64
	UserID         int64
	Username       *string
	FIO            string
	Phone          string
	Role           string
	OfficeNumber   *string
	Status         ApplicationStatus
	DecisionUserID *int64
	DecisionAt     *time.Time
	CreatedAt      time.Time
}

// IsDecided reports whether the application was approved or rejected. An
// empty status is a form not yet stored and counts as NEW.
func (a *Application) IsDecided() bool {
	return a.Status == ApplicationStatusApproved || a.Status == ApplicationStatusRejected
}

func (a *Application) Approve(decidedBy int64, at time.Time) error {
	return a.decide(ApplicationStatusApproved, decidedBy, at)
}

func (a *Application) Reject(decidedBy int64, at time.Time) error {
	return a.decide(ApplicationStatusRejected, decidedBy, at)
}

func (a *Application) decide(status ApplicationStatus, decidedBy int64, at time.Time) error {
	if a.IsDecided() {
		return ErrAlreadyDecided
	}
	a.Status = status
	a.DecisionUserID = &decidedBy
	a.DecisionAt = &at
	return nil
}
