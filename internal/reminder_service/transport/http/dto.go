package http

import (
	"database/sql"
	"time"

	"github.com/qaremind/golang_services/internal/reminder_service/domain"
	"github.com/qaremind/golang_services/internal/reminder_service/repository"
)

// CreateReminderRequestDTO mirrors the user-facing create contract: non-empty
// bounded title, E.164-normalizable destination, required schedule time and
// enumerated recurrence/method values.
type CreateReminderRequestDTO struct {
	Title              string     `json:"title" validate:"required,max=200"`
	Description        *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	PhoneNumber        string     `json:"phoneNumber" validate:"required,min=10,max=16"`
	ScheduledFor       time.Time  `json:"scheduledFor" validate:"required"`
	RecurrenceType     string     `json:"recurrenceType,omitempty" validate:"omitempty,oneof=none daily weekly monthly"`
	RecurrenceEndDate  *time.Time `json:"recurrenceEndDate,omitempty"`
	NotificationMethod string     `json:"notificationMethod,omitempty" validate:"omitempty,oneof=sms call"`
}

// UpdateReminderRequestDTO carries a partial update; absent fields stay
// unchanged. Status and completed are deliberately not updatable here.
type UpdateReminderRequestDTO struct {
	Title              *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description        *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	PhoneNumber        *string    `json:"phoneNumber,omitempty" validate:"omitempty,min=10,max=16"`
	ScheduledFor       *time.Time `json:"scheduledFor,omitempty"`
	RecurrenceType     *string    `json:"recurrenceType,omitempty" validate:"omitempty,oneof=none daily weekly monthly"`
	RecurrenceEndDate  *time.Time `json:"recurrenceEndDate,omitempty"`
	NotificationMethod *string    `json:"notificationMethod,omitempty" validate:"omitempty,oneof=sms call"`
}

// ReminderDTO is the JSON shape of a reminder on the wire.
type ReminderDTO struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        *string    `json:"description,omitempty"`
	PhoneNumber        string     `json:"phoneNumber"`
	ScheduledFor       time.Time  `json:"scheduledFor"`
	Status             string     `json:"status"`
	Completed          bool       `json:"completed"`
	RecurrenceType     string     `json:"recurrenceType"`
	RecurrenceEndDate  *time.Time `json:"recurrenceEndDate,omitempty"`
	NotificationMethod string     `json:"notificationMethod"`
	FailureReason      *string    `json:"failureReason,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func toReminderDTO(r *domain.Reminder) ReminderDTO {
	dto := ReminderDTO{
		ID:                 r.ID.String(),
		Title:              r.Title,
		PhoneNumber:        r.PhoneNumber,
		ScheduledFor:       r.ScheduledFor,
		Status:             string(r.Status),
		Completed:          r.Completed,
		RecurrenceType:     string(r.RecurrenceType),
		NotificationMethod: string(r.NotificationMethod),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.Description.Valid {
		dto.Description = &r.Description.String
	}
	if r.RecurrenceEndDate.Valid {
		dto.RecurrenceEndDate = &r.RecurrenceEndDate.Time
	}
	if r.FailureReason.Valid {
		dto.FailureReason = &r.FailureReason.String
	}
	return dto
}

func (dto *UpdateReminderRequestDTO) toReminderUpdate() repository.ReminderUpdate {
	update := repository.ReminderUpdate{
		Title:        dto.Title,
		Description:  dto.Description,
		ScheduledFor: dto.ScheduledFor,
	}
	if dto.PhoneNumber != nil {
		update.PhoneNumber = dto.PhoneNumber
	}
	if dto.RecurrenceType != nil {
		rt := domain.RecurrenceType(*dto.RecurrenceType)
		update.RecurrenceType = &rt
	}
	if dto.RecurrenceEndDate != nil {
		end := sql.NullTime{Time: dto.RecurrenceEndDate.UTC(), Valid: true}
		update.RecurrenceEndDate = &end
	}
	if dto.NotificationMethod != nil {
		nm := domain.NotificationMethod(*dto.NotificationMethod)
		update.NotificationMethod = &nm
	}
	return update
}
