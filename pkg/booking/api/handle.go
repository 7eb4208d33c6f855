package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/lettable/booking-admin/pkg/admin"
	"github.com/lettable/booking-admin/pkg/auth"
	"github.com/lettable/booking-admin/pkg/booking"
)

// Handle serves the property and booking endpoints.
type Handle struct {
	service *booking.Service
}

// NewHandle creates the booking API handler.
func NewHandle(service *booking.Service) *Handle {
	return &Handle{service: service}
}

// PropertyResponse is the wire form of a property.
type PropertyResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// BookingResponse is the wire form of a booking.
type BookingResponse struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	TenantID   string    `json:"tenant_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
}

type errorBody struct {
	Code    admin.Code `json:"code"`
	Message string     `json:"message"`
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := admin.CodeOf(err)
	if code == admin.CodeInternal {
		slog.Error("Booking operation failed", "err", err)
	}
	render.Status(r, code.HTTPStatus())
	render.JSON(w, r, map[string]errorBody{
		"error": {Code: code, Message: admin.MessageOf(err)},
	})
}

func toPropertyResponse(prop booking.Property) PropertyResponse {
	var resp PropertyResponse
	copier.Copy(&resp, &prop)
	resp.ID = prop.ID.String()
	return resp
}

func toBookingResponse(b booking.Booking) BookingResponse {
	var resp BookingResponse
	copier.Copy(&resp, &b)
	resp.ID = b.ID.String()
	resp.PropertyID = b.PropertyID.String()
	resp.TenantID = b.TenantID.String()
	resp.Status = b.Status.String()
	return resp
}

// CreateProperty adds a property.
// (POST /api/properties)
func (h *Handle) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, admin.InvalidArgument("invalid request body"))
		return
	}

	caller := auth.CallerFromContext(r.Context())
	prop, err := h.service.CreateProperty(r.Context(), caller, booking.CreatePropertyParams{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toPropertyResponse(prop))
}

// ListProperties returns all properties.
// (GET /api/properties)
func (h *Handle) ListProperties(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFromContext(r.Context())
	props, err := h.service.ListProperties(r.Context(), caller)
	if err != nil {
		renderError(w, r, err)
		return
	}

	result := make([]PropertyResponse, 0, len(props))
	for _, prop := range props {
		result = append(result, toPropertyResponse(prop))
	}
	render.JSON(w, r, map[string][]PropertyResponse{"properties": result})
}

// DeleteProperty removes a property.
// (DELETE /api/properties/{id})
func (h *Handle) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, admin.InvalidArgument("malformed property id"))
		return
	}

	caller := auth.CallerFromContext(r.Context())
	if err := h.service.DeleteProperty(r.Context(), caller, id); err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"message": "property deleted"})
}

// CreateBooking records a new pending booking.
// (POST /api/bookings)
func (h *Handle) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PropertyID string    `json:"property_id"`
		TenantID   string    `json:"tenant_id"`
		StartDate  time.Time `json:"start_date"`
		EndDate    time.Time `json:"end_date"`
		Notes      string    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, admin.InvalidArgument("invalid request body"))
		return
	}

	caller := auth.CallerFromContext(r.Context())
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		renderError(w, r, admin.InvalidArgument("malformed property id"))
		return
	}

	// Tenants omit tenant_id; it defaults to the caller.
	tenantID := uuid.Nil
	if caller != nil {
		tenantID = caller.ID
	}
	if req.TenantID != "" {
		tenantID, err = uuid.Parse(req.TenantID)
		if err != nil {
			renderError(w, r, admin.InvalidArgument("malformed tenant id"))
			return
		}
	}

	b, err := h.service.CreateBooking(r.Context(), caller, booking.CreateBookingParams{
		PropertyID: propertyID,
		TenantID:   tenantID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Notes:      req.Notes,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toBookingResponse(b))
}

// ListBookings returns the bookings visible to the caller.
// (GET /api/bookings)
func (h *Handle) ListBookings(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFromContext(r.Context())
	bookings, err := h.service.ListBookings(r.Context(), caller)
	if err != nil {
		renderError(w, r, err)
		return
	}

	result := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, toBookingResponse(b))
	}
	render.JSON(w, r, map[string][]BookingResponse{"bookings": result})
}

// GetBooking returns one booking.
// (GET /api/bookings/{id})
func (h *Handle) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, admin.InvalidArgument("malformed booking id"))
		return
	}

	caller := auth.CallerFromContext(r.Context())
	b, err := h.service.GetBooking(r.Context(), caller, id)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, toBookingResponse(b))
}

// SetBookingStatus updates a booking's lifecycle state.
// (PUT /api/bookings/{id}/status)
func (h *Handle) SetBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, admin.InvalidArgument("malformed booking id"))
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, admin.InvalidArgument("invalid request body"))
		return
	}

	caller := auth.CallerFromContext(r.Context())
	b, err := h.service.SetBookingStatus(r.Context(), caller, id, booking.Status(req.Status))
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, toBookingResponse(b))
}

// DeleteBooking removes a booking.
// (DELETE /api/bookings/{id})
func (h *Handle) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, admin.InvalidArgument("malformed booking id"))
		return
	}

	caller := auth.CallerFromContext(r.Context())
	if err := h.service.DeleteBooking(r.Context(), caller, id); err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"message": "booking deleted"})
}

// RegisterRoutes mounts the booking endpoints on the router.
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/api/properties", func(r chi.Router) {
		r.Post("/", h.CreateProperty)
		r.Get("/", h.ListProperties)
		r.Delete("/{id}", h.DeleteProperty)
	})
	r.Route("/api/bookings", func(r chi.Router) {
		r.Post("/", h.CreateBooking)
		r.Get("/", h.ListBookings)
		r.Get("/{id}", h.GetBooking)
		r.Put("/{id}/status", h.SetBookingStatus)
		r.Delete("/{id}", h.DeleteBooking)
	})
}
