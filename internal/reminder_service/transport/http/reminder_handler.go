package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/qaremind/golang_services/internal/reminder_service/domain"
	"github.com/qaremind/golang_services/internal/reminder_service/middleware"
	"github.com/qaremind/golang_services/internal/reminder_service/repository"
)

// Loose E.164 shape; an optional "+" so bare national numbers are accepted
// and normalized at dispatch time.
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

type ReminderHandler struct {
	repo     repository.ReminderRepository
	logger   *slog.Logger
	validate *validator.Validate
}

func NewReminderHandler(repo repository.ReminderRepository, logger *slog.Logger, validate *validator.Validate) *ReminderHandler {
	return &ReminderHandler{
		repo:     repo,
		logger:   logger,
		validate: validate,
	}
}

// RegisterRoutes registers reminder routes on a chi router. AuthMiddleware
// must be mounted above this subtree.
func (h *ReminderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListReminders)
	r.Post("/", h.CreateReminder)
	r.Get("/{id}", h.GetReminder)
	r.Patch("/{id}", h.UpdateReminder)
	r.Patch("/{id}/complete", h.CompleteReminder)
	r.Delete("/{id}", h.DeleteReminder)
}

func (h *ReminderHandler) ownerFromContext(w http.ResponseWriter, r *http.Request) (middleware.AuthenticatedUser, bool) {
	authUser, ok := r.Context().Value(middleware.AuthenticatedUserContextKey).(middleware.AuthenticatedUser)
	if !ok || authUser.ID == "" {
		h.logger.ErrorContext(r.Context(), "AuthenticatedUser not found in context; AuthMiddleware must run first")
		http.Error(w, "User authentication details not found", http.StatusUnauthorized)
		return middleware.AuthenticatedUser{}, false
	}
	return authUser, true
}

func (h *ReminderHandler) reminderIDFromURL(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid reminder ID in URL", "error", err)
		http.Error(w, "Invalid reminder ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ReminderHandler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to encode response", "error", err)
	}
}

// mapRepositoryError distinguishes "no such resource" from storage faults.
func (h *ReminderHandler) mapRepositoryError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "Reminder not found", http.StatusNotFound)
		return
	}
	h.logger.ErrorContext(r.Context(), "Repository operation failed", "operation", operation, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	authUser, ok := h.ownerFromContext(w, r)
	if !ok {
		return
	}

	reminders, err := h.repo.ListByOwner(r.Context(), authUser.ID)
	if err != nil {
		h.mapRepositoryError(w, r, err, "ListReminders")
		return
	}

	dtos := make([]ReminderDTO, 0, len(reminders))
	for _, reminder := range reminders {
		dtos = append(dtos, toReminderDTO(reminder))
	}
	h.writeJSON(w, r, http.StatusOK, dtos)
}

func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	authUser, ok := h.ownerFromContext(w, r)
	if !ok {
		return
	}

	var reqDTO CreateReminderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body for CreateReminder", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate.StructCtx(r.Context(), reqDTO); err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed for CreateReminder", "error", err)
		http.Error(w, fmt.Sprintf("Validation error: %s", err.Error()), http.StatusBadRequest)
		return
	}
	if !phonePattern.MatchString(reqDTO.PhoneNumber) {
		http.Error(w, "Invalid phone number format (E.164 format recommended)", http.StatusBadRequest)
		return
	}

	recurrenceType := domain.RecurrenceNone
	if reqDTO.RecurrenceType != "" {
		recurrenceType = domain.RecurrenceType(reqDTO.RecurrenceType)
	}
	method := domain.MethodSMS
	if reqDTO.NotificationMethod != "" {
		method = domain.NotificationMethod(reqDTO.NotificationMethod)
	}

	description := sql.NullString{}
	if reqDTO.Description != nil {
		description = sql.NullString{String: *reqDTO.Description, Valid: true}
	}
	endDate := sql.NullTime{}
	if reqDTO.RecurrenceEndDate != nil {
		endDate = sql.NullTime{Time: reqDTO.RecurrenceEndDate.UTC(), Valid: true}
	}

	reminder := domain.NewReminder(
		authUser.ID,
		reqDTO.Title,
		description,
		reqDTO.PhoneNumber,
		reqDTO.ScheduledFor,
		recurrenceType,
		endDate,
		method,
	)

	if err := h.repo.Create(r.Context(), reminder); err != nil {
		h.mapRepositoryError(w, r, err, "CreateReminder")
		return
	}
	h.writeJSON(w, r, http.StatusCreated, toReminderDTO(reminder))
}

func (h *ReminderHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	authUser, ok := h.ownerFromContext(w, r)
	if !ok {
		return
	}
	id, ok := h.reminderIDFromURL(w, r)
	if !ok {
		return
	}

	reminder, err := h.repo.GetByID(r.Context(), authUser.ID, id)
	if err != nil {
		h.mapRepositoryError(w, r, err, "GetReminder")
		return
	}
	h.writeJSON(w, r, http.StatusOK, toReminderDTO(reminder))
}

func (h *ReminderHandler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	authUser, ok := h.ownerFromContext(w, r)
	if !ok {
		return
	}
	id, ok := h.reminderIDFromURL(w, r)
	if !ok {
		return
	}

	var reqDTO UpdateReminderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body for UpdateReminder", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate.StructCtx(r.Context(), reqDTO); err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed for UpdateReminder", "error", err)
		http.Error(w, fmt.Sprintf("Validation error: %s", err.Error()), http.StatusBadRequest)
		return
	}
	if reqDTO.PhoneNumber != nil && !phonePattern.MatchString(*reqDTO.PhoneNumber) {
		http.Error(w, "Invalid phone number format (E.164 format recommended)", http.StatusBadRequest)
		return
	}

	reminder, err := h.repo.Update(r.Context(), authUser.ID, id, reqDTO.toReminderUpdate())
	if err != nil {
		h.mapRepositoryError(w, r, err, "UpdateReminder")
		return
	}
	h.writeJSON(w, r, http.StatusOK, toReminderDTO(reminder))
}

func (h *ReminderHandler) CompleteReminder(w http.ResponseWriter, r *http.Request) {
	authUser, ok := h.ownerFromContext(w, r)
	if !ok {
		return
	}
	id, ok := h.reminderIDFromURL(w, r)
	if !ok {
		return
	}

	reminder, err := h.repo.MarkCompleted(r.Context(), authUser.ID, id)
	if err != nil {
		h.mapRepositoryError(w, r, err, "CompleteReminder")
		return
	}
	h.writeJSON(w, r, http.StatusOK, toReminderDTO(reminder))
}

func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	authUser, ok := h.ownerFromContext(w, r)
	if !ok {
		return
	}
	id, ok := h.reminderIDFromURL(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), authUser.ID, id); err != nil {
		h.mapRepositoryError(w, r, err, "DeleteReminder")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
