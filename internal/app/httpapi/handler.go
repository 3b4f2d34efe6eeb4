// Package httpapi exposes the REST surface of the back office. It shares its
// request and response shapes with the RPC surface through internal/app/api.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/domunity/backend/internal/errors"

	app "github.com/domunity/backend/internal/app"
	"github.com/domunity/backend/internal/app/api"
	"github.com/domunity/backend/internal/app/domain/event"
	"github.com/domunity/backend/internal/app/domain/user"
	"github.com/domunity/backend/internal/app/metrics"
	"github.com/domunity/backend/internal/app/services/auth"
	"github.com/domunity/backend/internal/app/services/contacts"
	"github.com/domunity/backend/internal/middleware"
	"github.com/domunity/backend/pkg/logger"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewHandler returns a router exposing the REST API. Tracing, CORS and
// bearer authentication are applied here; rate limiting and metrics
// instrumentation wrap the handler at the server edge.
func NewHandler(application *app.Application, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application}

	r := chi.NewRouter()
	r.Use(middleware.NewTracingMiddleware(log).Handler)
	r.Use(middleware.NewCORSMiddleware([]string{"*"}).Handler)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, apperrors.NotFound("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, apperrors.NotFound("route not found"))
	})

	r.Get("/health", h.health)
	r.Handle("/metrics", metrics.Handler())

	// Public API.
	r.Group(func(r chi.Router) {
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/refresh", h.refresh)
		r.Post("/api/auth/forgot-password", h.forgotPassword)
		r.Post("/api/contact/form", h.contactForm)
		r.Post("/api/contact/offer", h.contactOffer)
		r.Post("/api/contact/presentation", h.contactPresentation)
	})

	// Authenticated API.
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(application.Auth, log, nil).Handler)
		r.Get("/api/user/profile", h.getProfile)
		r.Put("/api/user/profile", h.updateProfile)
		r.Get("/api/user/apartment", h.getApartment)
		r.Get("/api/admin/residents", h.listResidents)
		r.Get("/api/building/{id}", h.getBuilding)
		r.Get("/api/building/{id}/apartments", h.listApartments)
		r.Get("/api/building/{id}/maintenance", h.listMaintenance)
		r.Post("/api/building/{id}/maintenance", h.createMaintenance)
		r.Get("/api/building/{id}/events", h.listEvents)
		r.Post("/api/building/{id}/events", h.createEvent)
	})

	return r
}

// Auth endpoints ----------------------------------------------------------

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload api.LoginRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	session, err := h.app.Auth.Login(r.Context(), payload.Email, payload.Password)
	metrics.RecordLoginAttempt(err == nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.LoginResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		User:         api.NewUserSummary(session.User),
	})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload api.RegisterRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.app.Auth.Register(r.Context(), payload.Email, payload.Password, payload.FullName, payload.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.RegisterResponse{UserID: created.ID})
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	var payload api.RefreshRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	token, err := h.app.Auth.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.RefreshResponse{AccessToken: token})
}

func (h *handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload api.ForgotPasswordRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	if err := h.app.Auth.ForgotPassword(r.Context(), payload.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "if the email exists, reset instructions have been sent"})
}

// User endpoints ----------------------------------------------------------

func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) {
	u, err := requestUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.app.Users.GetProfile(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewProfileResponse(view))
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	u, err := requestUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var payload api.UpdateProfileRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.app.Users.UpdateProfile(r.Context(), u.ID, payload.FullName, payload.Phone); err != nil {
		writeError(w, err)
		return
	}
	view, err := h.app.Users.GetProfile(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewProfileResponse(view))
}

func (h *handler) getApartment(w http.ResponseWriter, r *http.Request) {
	u, err := requestUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.app.Users.GetApartment(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewApartmentViewResponse(view))
}

// Admin endpoints ---------------------------------------------------------

func (h *handler) listResidents(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		writeError(w, err)
		return
	}
	roster, err := h.app.Buildings.ResidentRoster(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewResidentListResponse(roster))
}

// Building endpoints ------------------------------------------------------

func (h *handler) getBuilding(w http.ResponseWriter, r *http.Request) {
	id, err := buildingID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	bld, err := h.app.Buildings.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewBuildingResponse(bld))
}

func (h *handler) listApartments(w http.ResponseWriter, r *http.Request) {
	id, err := buildingID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	groups, err := h.app.Buildings.ListApartmentDebt(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewBuildingApartmentsResponse(id, groups))
}

func (h *handler) listMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := buildingID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	records, err := h.app.Buildings.ListMaintenance(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewMaintenanceListResponse(records))
}

func (h *handler) createMaintenance(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		writeError(w, err)
		return
	}
	id, err := buildingID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var payload api.CreateMaintenanceRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	rec, err := api.NewMaintenanceRecord(id, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.app.Buildings.CreateMaintenance(r.Context(), rec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.NewMaintenanceResponse(created))
}

// Event endpoints ---------------------------------------------------------

func (h *handler) listEvents(w http.ResponseWriter, r *http.Request) {
	id, err := buildingID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperrors.Validation("invalid limit"))
			return
		}
	}
	events, err := h.app.Events.List(r.Context(), id, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewEventListResponse(events))
}

func (h *handler) createEvent(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		writeError(w, err)
		return
	}
	id, err := buildingID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var payload api.CreateEventRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	date, err := api.ParseDate(payload.Date)
	if err != nil {
		writeError(w, apperrors.Validation("invalid date, expected YYYY-MM-DD"))
		return
	}
	created, err := h.app.Events.Create(r.Context(), event.Event{
		BuildingID:  id,
		Date:        date,
		Title:       payload.Title,
		Description: payload.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.NewEventResponse(created))
}

// Contact endpoints -------------------------------------------------------

func (h *handler) contactForm(w http.ResponseWriter, r *http.Request) {
	var payload api.ContactFormRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.app.Contacts.SubmitForm(r.Context(), payload.Name, payload.Phone, payload.Email, payload.Message); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.MessageResponse{Message: "request received"})
}

func (h *handler) contactOffer(w http.ResponseWriter, r *http.Request) {
	var payload api.OfferFormRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	req := contacts.OfferRequest{
		Phone:          payload.Phone,
		Email:          payload.Email,
		City:           payload.City,
		NumProperties:  payload.NumProperties,
		Address:        payload.Address,
		AdditionalInfo: payload.AdditionalInfo,
	}
	if _, err := h.app.Contacts.RequestOffer(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.MessageResponse{Message: "request received"})
}

func (h *handler) contactPresentation(w http.ResponseWriter, r *http.Request) {
	var payload api.PresentationFormRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}
	req := contacts.PresentationRequest{
		Date:           payload.Date,
		BuildingType:   payload.BuildingType,
		Phone:          payload.Phone,
		Email:          payload.Email,
		Address:        payload.Address,
		AdditionalInfo: payload.AdditionalInfo,
	}
	if _, err := h.app.Contacts.RequestPresentation(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.MessageResponse{Message: "request received"})
}

// Health ------------------------------------------------------------------

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	status := h.app.Health.Check(r.Context())
	writeJSON(w, http.StatusOK, api.NewHealthResponse(status))
}

// Helpers -----------------------------------------------------------------

func requestUser(r *http.Request) (user.User, error) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return user.User{}, apperrors.Unauthorized("authentication required")
	}
	return u, nil
}

func requireAdmin(r *http.Request) error {
	u, err := requestUser(r)
	if err != nil {
		return err
	}
	return auth.RequireAdmin(u)
}

func buildingID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid building id")
	}
	return id, nil
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.Validation("invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	svcErr := apperrors.GetServiceError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": svcErr.Message})
}
