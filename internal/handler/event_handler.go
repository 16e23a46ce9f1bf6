package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"weekly-agenda-api/internal/metrics"
	"weekly-agenda-api/internal/middleware"
	"weekly-agenda-api/internal/model"
	"weekly-agenda-api/internal/store"
	"weekly-agenda-api/internal/validation"
	"weekly-agenda-api/internal/webutil"
)

const (
	msgEventNotFound = "Event not found"
	msgInvalidDay    = "Invalid day of week"
	msgNoEventsOnDay = "No events found for the specified day"
)

type createEventResponse struct {
	Message string      `json:"message"`
	Event   model.Event `json:"event"`
}

type deleteByDayResponse struct {
	Message       string        `json:"message"`
	DeletedCount  int           `json:"deletedCount"`
	DeletedEvents []model.Event `json:"deletedEvents"`
}

// CreateEvent stores the payload as given. The token's user is logged but
// not compared with userId.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) error {
	var p validation.Payload
	if err := webutil.DecodeJSON(w, r, &p); err != nil {
		return err
	}
	if err := validation.CreateEventSchema.Validate(p); err != nil {
		return webutil.ErrValidation(validation.Messages(err))
	}

	ctx := r.Context()
	e := &model.Event{
		Description: p.String("description"),
		DayOfWeek:   p.String("dayOfWeek"),
		UserID:      p.String("userId"),
	}
	if err := h.store.CreateEvent(ctx, e); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("event_id", e.ID).
		Str("token_user", middleware.UserID(ctx)).
		Msg("event created")
	webutil.RespondWithJSON(w, http.StatusCreated, createEventResponse{
		Message: "Event created successfully",
		Event:   *e,
	})
	return nil
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) error {
	p := validation.FromQuery(r.URL.Query())
	if err := validation.QueryEventSchema.Validate(p); err != nil {
		return webutil.ErrValidation(validation.Messages(err))
	}

	events, err := h.store.ListEvents(r.Context(), store.EventFilter{
		DayOfWeek:   p.String("dayOfWeek"),
		Description: p.String("description"),
	})
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, events)
	return nil
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) error {
	e, err := h.store.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		return webutil.ErrNotFound(msgEventNotFound)
	}
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, e)
	return nil
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) error {
	err := h.store.DeleteEvent(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		return webutil.ErrNotFound(msgEventNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	metrics.EventsDeleted.WithLabelValues("single").Inc()
	webutil.RespondWithJSON(w, http.StatusOK, message{"Event deleted successfully"})
	return nil
}

func (h *Handler) DeleteEventsByDay(w http.ResponseWriter, r *http.Request) error {
	day := r.URL.Query().Get("dayOfWeek")
	if !model.ValidDay(day) {
		return webutil.ErrBadRequest(msgInvalidDay, nil)
	}

	ctx := r.Context()
	deleted, err := h.store.DeleteEventsByDay(ctx, day)
	if err != nil {
		return fmt.Errorf("delete events by day: %w", err)
	}
	if len(deleted) == 0 {
		return webutil.ErrNotFound(msgNoEventsOnDay)
	}

	metrics.EventsDeleted.WithLabelValues("by_day").Add(float64(len(deleted)))
	zerolog.Ctx(ctx).Info().Str("day", day).Int("count", len(deleted)).Msg("events deleted")
	webutil.RespondWithJSON(w, http.StatusOK, deleteByDayResponse{
		Message:       "Events deleted successfully",
		DeletedCount:  len(deleted),
		DeletedEvents: deleted,
	})
	return nil
}
