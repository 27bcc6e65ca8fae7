// Package handler wires event management endpoints.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tekfest/internal/event/models"
	"tekfest/internal/event/service"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
	"tekfest/pkg/platform/httputil"
)

type Handler struct {
	service *service.EventService
	logger  *slog.Logger
}

func New(service *service.EventService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts event endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events", h.HandleCreateEvent)
	r.Get("/events", h.HandleListEvents)
	r.Get("/events/{eventID}", h.HandleGetEvent)
}

type createEventRequest struct {
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	RubricVersion string    `json:"rubric_version"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
}

type eventResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	RubricVersion string    `json:"rubric_version"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
}

func fromEvent(e *models.Event) eventResponse {
	return eventResponse{
		ID:            e.ID.String(),
		Name:          e.Name,
		Slug:          e.Slug,
		RubricVersion: e.RubricVersion,
		StartsAt:      e.StartsAt,
		EndsAt:        e.EndsAt,
	}
}

// HandleCreateEvent handles POST /events.
func (h *Handler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[createEventRequest](w, r, h.logger)
	if !ok {
		return
	}

	event, err := h.service.CreateEvent(ctx, req.Name, req.Slug, req.RubricVersion, req.StartsAt, req.EndsAt)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "event created", "event_id", event.ID, "slug", event.Slug)
	httputil.WriteJSON(w, http.StatusCreated, fromEvent(event))
}

// HandleListEvents handles GET /events.
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, fromEvent(e))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]eventResponse{"events": out})
}

// HandleGetEvent handles GET /events/{eventID}.
func (h *Handler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "event id is not a valid UUID"))
		return
	}

	event, err := h.service.GetEvent(r.Context(), eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromEvent(event))
}
