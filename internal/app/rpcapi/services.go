package rpcapi

import (
	"context"
	"sort"

	"google.golang.org/grpc"

	apperrors "github.com/domunity/backend/internal/errors"

	app "github.com/domunity/backend/internal/app"
	"github.com/domunity/backend/internal/app/api"
	"github.com/domunity/backend/internal/app/domain/event"
	"github.com/domunity/backend/internal/app/domain/user"
	"github.com/domunity/backend/internal/app/metrics"
	"github.com/domunity/backend/internal/app/services/auth"
	"github.com/domunity/backend/internal/app/services/contacts"
	"github.com/domunity/backend/internal/middleware"
)

// RPC-only request and response shapes. Identifier fields travel in the
// payload because there is no URL to carry them.

type Empty struct{}

type GetBuildingRequest struct {
	BuildingID int64 `json:"building_id"`
}

type ListApartmentsRequest struct {
	BuildingID int64 `json:"building_id"`
}

type ListMaintenanceRequest struct {
	BuildingID int64 `json:"building_id"`
}

type ListMaintenanceResponse struct {
	Maintenance []api.MaintenanceResponse `json:"maintenance"`
}

type CreateMaintenanceRequest struct {
	BuildingID  int64  `json:"building_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Cost        string `json:"cost"`
	Status      string `json:"status"`
}

type GetFinancialReportRequest struct {
	BuildingID int64 `json:"building_id"`
}

type ListEventsRequest struct {
	BuildingID int64 `json:"building_id"`
	Limit      int   `json:"limit"`
}

type ListEventsResponse struct {
	Events []api.EventResponse `json:"events"`
}

type CreateEventRequest struct {
	BuildingID  int64  `json:"building_id"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type DiscoveryResponse struct {
	Services []string `json:"services"`
}

// unary decodes the payload and routes it through the server interceptor,
// mirroring what generated grpc code does for proto services.
func unary[Req any](srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor, fullMethod string, invoke func(context.Context, *Req) (interface{}, error)) (interface{}, error) {
	req := new(Req)
	if err := dec(req); err != nil {
		return nil, toStatusError(apperrors.Validation("malformed request payload"))
	}
	if interceptor == nil {
		return invoke(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
	return interceptor(ctx, req, info, func(ctx context.Context, r interface{}) (interface{}, error) {
		return invoke(ctx, r.(*Req))
	})
}

func callerUser(ctx context.Context) (user.User, error) {
	u, ok := middleware.UserFromContext(ctx)
	if !ok {
		return user.User{}, apperrors.Unauthorized("authentication required")
	}
	return u, nil
}

// AuthService --------------------------------------------------------------

type authService struct {
	app *app.Application
}

func (s *authService) login(ctx context.Context, req *api.LoginRequest) (interface{}, error) {
	session, err := s.app.Auth.Login(ctx, req.Email, req.Password)
	metrics.RecordLoginAttempt(err == nil)
	if err != nil {
		return nil, err
	}
	return api.LoginResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		User:         api.NewUserSummary(session.User),
	}, nil
}

func (s *authService) register(ctx context.Context, req *api.RegisterRequest) (interface{}, error) {
	created, err := s.app.Auth.Register(ctx, req.Email, req.Password, req.FullName, req.Phone)
	if err != nil {
		return nil, err
	}
	return api.RegisterResponse{UserID: created.ID}, nil
}

func (s *authService) refreshToken(ctx context.Context, req *api.RefreshRequest) (interface{}, error) {
	token, err := s.app.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	return api.RefreshResponse{AccessToken: token}, nil
}

func (s *authService) forgotPassword(ctx context.Context, req *api.ForgotPasswordRequest) (interface{}, error) {
	if err := s.app.Auth.ForgotPassword(ctx, req.Email); err != nil {
		return nil, err
	}
	return api.MessageResponse{Message: "if the email exists, reset instructions have been sent"}, nil
}

// UserService --------------------------------------------------------------

type userService struct {
	app *app.Application
}

func (s *userService) getProfile(ctx context.Context, _ *Empty) (interface{}, error) {
	u, err := callerUser(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.app.Users.GetProfile(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return api.NewProfileResponse(view), nil
}

func (s *userService) updateProfile(ctx context.Context, req *api.UpdateProfileRequest) (interface{}, error) {
	u, err := callerUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.app.Users.UpdateProfile(ctx, u.ID, req.FullName, req.Phone); err != nil {
		return nil, err
	}
	view, err := s.app.Users.GetProfile(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return api.NewProfileResponse(view), nil
}

func (s *userService) getApartment(ctx context.Context, _ *Empty) (interface{}, error) {
	u, err := callerUser(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.app.Users.GetApartment(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return api.NewApartmentViewResponse(view), nil
}

func (s *userService) listResidents(ctx context.Context, _ *Empty) (interface{}, error) {
	u, err := callerUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireAdmin(u); err != nil {
		return nil, err
	}
	roster, err := s.app.Buildings.ResidentRoster(ctx)
	if err != nil {
		return nil, err
	}
	return api.NewResidentListResponse(roster), nil
}

// BuildingService ----------------------------------------------------------

type buildingService struct {
	app *app.Application
}

func (s *buildingService) getBuilding(ctx context.Context, req *GetBuildingRequest) (interface{}, error) {
	bld, err := s.app.Buildings.Get(ctx, req.BuildingID)
	if err != nil {
		return nil, err
	}
	return api.NewBuildingResponse(bld), nil
}

func (s *buildingService) listApartments(ctx context.Context, req *ListApartmentsRequest) (interface{}, error) {
	groups, err := s.app.Buildings.ListApartmentDebt(ctx, req.BuildingID)
	if err != nil {
		return nil, err
	}
	return api.NewBuildingApartmentsResponse(req.BuildingID, groups), nil
}

func (s *buildingService) listMaintenance(ctx context.Context, req *ListMaintenanceRequest) (interface{}, error) {
	records, err := s.app.Buildings.ListMaintenance(ctx, req.BuildingID)
	if err != nil {
		return nil, err
	}
	return ListMaintenanceResponse{Maintenance: api.NewMaintenanceListResponse(records)}, nil
}

func (s *buildingService) createMaintenance(ctx context.Context, req *CreateMaintenanceRequest) (interface{}, error) {
	u, err := callerUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireAdmin(u); err != nil {
		return nil, err
	}
	rec, err := api.NewMaintenanceRecord(req.BuildingID, api.CreateMaintenanceRequest{
		Date:        req.Date,
		Description: req.Description,
		Cost:        req.Cost,
		Status:      req.Status,
	})
	if err != nil {
		return nil, err
	}
	created, err := s.app.Buildings.CreateMaintenance(ctx, rec)
	if err != nil {
		return nil, err
	}
	return api.NewMaintenanceResponse(created), nil
}

// FinancialService ---------------------------------------------------------

type financialService struct {
	app *app.Application
}

func (s *financialService) getFinancialReport(ctx context.Context, req *GetFinancialReportRequest) (interface{}, error) {
	report, err := s.app.Financial.GetFinancialReport(ctx, req.BuildingID)
	if err != nil {
		return nil, err
	}
	return api.NewFinancialReportResponse(req.BuildingID, report), nil
}

func (s *financialService) getPaymentHistory(ctx context.Context, _ *Empty) (interface{}, error) {
	u, err := callerUser(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := s.app.Financial.GetPaymentHistory(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return api.NewPaymentSummaryResponse(summary), nil
}

// EventService -------------------------------------------------------------

type eventService struct {
	app *app.Application
}

func (s *eventService) listEvents(ctx context.Context, req *ListEventsRequest) (interface{}, error) {
	events, err := s.app.Events.List(ctx, req.BuildingID, req.Limit)
	if err != nil {
		return nil, err
	}
	return ListEventsResponse{Events: api.NewEventListResponse(events)}, nil
}

func (s *eventService) createEvent(ctx context.Context, req *CreateEventRequest) (interface{}, error) {
	u, err := callerUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireAdmin(u); err != nil {
		return nil, err
	}
	date, err := api.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.Validation("invalid date, expected YYYY-MM-DD")
	}
	created, err := s.app.Events.Create(ctx, event.Event{
		BuildingID:  req.BuildingID,
		Date:        date,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	return api.NewEventResponse(created), nil
}

// ContactService -----------------------------------------------------------

type contactService struct {
	app *app.Application
}

func (s *contactService) sendContactForm(ctx context.Context, req *api.ContactFormRequest) (interface{}, error) {
	if _, err := s.app.Contacts.SubmitForm(ctx, req.Name, req.Phone, req.Email, req.Message); err != nil {
		return nil, err
	}
	return api.MessageResponse{Message: "request received"}, nil
}

func (s *contactService) requestOffer(ctx context.Context, req *api.OfferFormRequest) (interface{}, error) {
	_, err := s.app.Contacts.RequestOffer(ctx, contacts.OfferRequest{
		Phone:          req.Phone,
		Email:          req.Email,
		City:           req.City,
		NumProperties:  req.NumProperties,
		Address:        req.Address,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		return nil, err
	}
	return api.MessageResponse{Message: "request received"}, nil
}

func (s *contactService) requestPresentation(ctx context.Context, req *api.PresentationFormRequest) (interface{}, error) {
	_, err := s.app.Contacts.RequestPresentation(ctx, contacts.PresentationRequest{
		Date:           req.Date,
		BuildingType:   req.BuildingType,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		return nil, err
	}
	return api.MessageResponse{Message: "request received"}, nil
}

// HealthService ------------------------------------------------------------

type healthService struct {
	app *app.Application
}

func (s *healthService) check(ctx context.Context, _ *Empty) (interface{}, error) {
	return api.NewHealthResponse(s.app.Health.Check(ctx)), nil
}

// DiscoveryService ---------------------------------------------------------

type discoveryService struct {
	srv *grpc.Server
}

func (s *discoveryService) listServices(_ context.Context, _ *Empty) (interface{}, error) {
	info := s.srv.GetServiceInfo()
	names := make([]string, 0, len(info))
	for name := range info {
		names = append(names, name)
	}
	sort.Strings(names)
	return DiscoveryResponse{Services: names}, nil
}

// Service descriptors -------------------------------------------------------

// Per-service interfaces exist because grpc.ServiceDesc.HandlerType must be
// a pointer to an interface the registered implementation satisfies.

type authServiceServer interface {
	login(ctx context.Context, req *api.LoginRequest) (interface{}, error)
	register(ctx context.Context, req *api.RegisterRequest) (interface{}, error)
	refreshToken(ctx context.Context, req *api.RefreshRequest) (interface{}, error)
	forgotPassword(ctx context.Context, req *api.ForgotPasswordRequest) (interface{}, error)
}

type userServiceServer interface {
	getProfile(ctx context.Context, req *Empty) (interface{}, error)
	updateProfile(ctx context.Context, req *api.UpdateProfileRequest) (interface{}, error)
	getApartment(ctx context.Context, req *Empty) (interface{}, error)
	listResidents(ctx context.Context, req *Empty) (interface{}, error)
}

type buildingServiceServer interface {
	getBuilding(ctx context.Context, req *GetBuildingRequest) (interface{}, error)
	listApartments(ctx context.Context, req *ListApartmentsRequest) (interface{}, error)
	listMaintenance(ctx context.Context, req *ListMaintenanceRequest) (interface{}, error)
	createMaintenance(ctx context.Context, req *CreateMaintenanceRequest) (interface{}, error)
}

type financialServiceServer interface {
	getFinancialReport(ctx context.Context, req *GetFinancialReportRequest) (interface{}, error)
	getPaymentHistory(ctx context.Context, req *Empty) (interface{}, error)
}

type eventServiceServer interface {
	listEvents(ctx context.Context, req *ListEventsRequest) (interface{}, error)
	createEvent(ctx context.Context, req *CreateEventRequest) (interface{}, error)
}

type contactServiceServer interface {
	sendContactForm(ctx context.Context, req *api.ContactFormRequest) (interface{}, error)
	requestOffer(ctx context.Context, req *api.OfferFormRequest) (interface{}, error)
	requestPresentation(ctx context.Context, req *api.PresentationFormRequest) (interface{}, error)
}

type healthServiceServer interface {
	check(ctx context.Context, req *Empty) (interface{}, error)
}

type discoveryServiceServer interface {
	listServices(ctx context.Context, req *Empty) (interface{}, error)
}

func method[Req any](name, fullMethod string, invoke func(interface{}) func(context.Context, *Req) (interface{}, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			return unary(srv, ctx, dec, interceptor, fullMethod, invoke(srv))
		},
	}
}

func registerServices(srv *grpc.Server, application *app.Application) {
	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "domunity.AuthService",
		HandlerType: (*authServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			method("Login", "/domunity.AuthService/Login", func(s interface{}) func(context.Context, *api.LoginRequest) (interface{}, error) {
				return s.(*authService).login
			}),
			method("Register", "/domunity.AuthService/Register", func(s interface{}) func(context.Context, *api.RegisterRequest) (interface{}, error) {
				return s.(*authService).register
			}),
			method("RefreshToken", "/domunity.AuthService/RefreshToken", func(s interface{}) func(context.Context, *api.RefreshRequest) (interface{}, error) {
				return s.(*authService).refreshToken
			}),
			method("ForgotPassword", "/domunity.AuthService/ForgotPassword", func(s interface{}) func(context.Context, *api.ForgotPasswordRequest) (interface{}, error) {
				return s.(*authService).forgotPassword
			}),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "domunity/auth",
	}, &authService{app: application})

	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "domunity.UserService",
		HandlerType: (*userServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			method("GetProfile", "/domunity.UserService/GetProfile", func(s interface{}) func(context.Context, *Empty) (interface{}, error) {
				return s.(*userService).getProfile
			}),
			method("UpdateProfile", "/domunity.UserService/UpdateProfile", func(s interface{}) func(context.Context, *api.UpdateProfileRequest) (interface{}, error) {
				return s.(*userService).updateProfile
			}),
			method("GetApartment", "/domunity.UserService/GetApartment", func(s interface{}) func(context.Context, *Empty) (interface{}, error) {
				return s.(*userService).getApartment
			}),
			method("ListResidents", "/domunity.UserService/ListResidents", func(s interface{}) func(context.Context, *Empty) (interface{}, error) {
				return s.(*userService).listResidents
			}),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "domunity/user",
	}, &userService{app: application})

	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "domunity.BuildingService",
		HandlerType: (*buildingServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			method("GetBuilding", "/domunity.BuildingService/GetBuilding", func(s interface{}) func(context.Context, *GetBuildingRequest) (interface{}, error) {
				return s.(*buildingService).getBuilding
			}),
			method("ListApartments", "/domunity.BuildingService/ListApartments", func(s interface{}) func(context.Context, *ListApartmentsRequest) (interface{}, error) {
				return s.(*buildingService).listApartments
			}),
			method("ListMaintenance", "/domunity.BuildingService/ListMaintenance", func(s interface{}) func(context.Context, *ListMaintenanceRequest) (interface{}, error) {
				return s.(*buildingService).listMaintenance
			}),
			method("CreateMaintenance", "/domunity.BuildingService/CreateMaintenance", func(s interface{}) func(context.Context, *CreateMaintenanceRequest) (interface{}, error) {
				return s.(*buildingService).createMaintenance
			}),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "domunity/building",
	}, &buildingService{app: application})

	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "domunity.FinancialService",
		HandlerType: (*financialServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			method("GetFinancialReport", "/domunity.FinancialService/GetFinancialReport", func(s interface{}) func(context.Context, *GetFinancialReportRequest) (interface{}, error) {
				return s.(*financialService).getFinancialReport
			}),
			method("GetPaymentHistory", "/domunity.FinancialService/GetPaymentHistory", func(s interface{}) func(context.Context, *Empty) (interface{}, error) {
				return s.(*financialService).getPaymentHistory
			}),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "domunity/financial",
	}, &financialService{app: application})

	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "domunity.EventService",
		HandlerType: (*eventServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			method("ListEvents", "/domunity.EventService/ListEvents", func(s interface{}) func(context.Context, *ListEventsRequest) (interface{}, error) {
				return s.(*eventService).listEvents
			}),
			method("CreateEvent", "/domunity.EventService/CreateEvent", func(s interface{}) func(context.Context, *CreateEventRequest) (interface{}, error) {
				return s.(*eventService).createEvent
			}),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "domunity/event",
	}, &eventService{app: application})

	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "domunity.ContactService",
		HandlerType: (*contactServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			method("SendContactForm", "/domunity.ContactService/SendContactForm", func(s interface{}) func(context.Context, *api.ContactFormRequest) (interface{}, error) {
				return s.(*contactService).sendContactForm
			}),
			method("RequestOffer", "/domunity.ContactService/RequestOffer", func(s interface{}) func(context.Context, *api.OfferFormRequest) (interface{}, error) {
				return s.(*contactService).requestOffer
			}),
			method("RequestPresentation", "/domunity.ContactService/RequestPresentation", func(s interface{}) func(context.Context, *api.PresentationFormRequest) (interface{}, error) {
				return s.(*contactService).requestPresentation
			}),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "domunity/contact",
	}, &contactService{app: application})

	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "domunity.HealthService",
		HandlerType: (*healthServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			method("Check", "/domunity.HealthService/Check", func(s interface{}) func(context.Context, *Empty) (interface{}, error) {
				return s.(*healthService).check
			}),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "domunity/health",
	}, &healthService{app: application})

	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "domunity.DiscoveryService",
		HandlerType: (*discoveryServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			method("ListServices", "/domunity.DiscoveryService/ListServices", func(s interface{}) func(context.Context, *Empty) (interface{}, error) {
				return s.(*discoveryService).listServices
			}),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "domunity/discovery",
	}, &discoveryService{srv: srv})
}
