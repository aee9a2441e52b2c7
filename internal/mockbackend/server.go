// Package mockbackend is an in-memory stand-in for the campus ordering
// backend, used for local development and integration tests.
package mockbackend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/itsneelabh/campusbite/pkg/logger"
	"github.com/itsneelabh/campusbite/pkg/models"
	"github.com/itsneelabh/campusbite/pkg/telemetry"
)

type ctxKey struct{}

// Server routes HTTP requests to a Store
type Server struct {
	store  *Store
	logger logger.Logger
	router chi.Router
}

// NewServer builds the router over store
func NewServer(store *Store, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &Server{store: store, logger: log}
	s.router = s.routes()
	return s
}

// Store exposes the backing store for test drivers
func (s *Server) Store() *Store { return s.store }

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(telemetry.Middleware("campusbite-mock", "/health"))
	r.Use(telemetry.CorrelationMiddleware)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "campusbite-mock"})
	})

	r.Post("/auth/login", s.login)
	r.Post("/auth/verify-otp", s.verifyOTP)

	r.Group(func(r chi.Router) {
		r.Use(s.requireBearer)

		r.Get("/vendors", s.listVendors)
		r.Get("/vendors/{vendorID}", s.getVendor)
		r.Get("/vendors/{vendorID}/menus", s.listMenus)
		r.Get("/vendors/{vendorID}/slots", s.listSlots)
		r.Get("/menus/{menuID}/items", s.listItems)

		r.Post("/orders", s.placeOrder)
		r.Get("/orders", s.listOrders)
		r.Get("/orders/{orderID}", s.getOrder)
		r.Delete("/orders/{orderID}", s.cancelOrder)
		r.Get("/orders/{orderID}/status", s.orderStatus)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("Request served", telemetry.EnrichLogFields(r.Context(), map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}))
	})
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Missing bearer token"})
			return
		}
		phone, ok := s.store.Authenticate(token)
		if !ok {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid or expired token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, phone)))
	})
}

func phoneFrom(ctx context.Context) string {
	phone, _ := ctx.Value(ctxKey{}).(string)
	return phone
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if !decode(w, r, &req) {
		return
	}
	otp, err := s.store.RequestOTP(req.Phone)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "OTP sent successfully", "otp": otp})
}

func (s *Server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if !decode(w, r, &req) {
		return
	}
	auth, err := s.store.VerifyOTP(req.Phone, req.OTP)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, auth)
}

func (s *Server) listVendors(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Vendors())
}

func (s *Server) getVendor(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.Vendor(chi.URLParam(r, "vendorID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (s *Server) listMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := s.store.Menus(chi.URLParam(r, "vendorID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, menus)
}

func (s *Server) listSlots(w http.ResponseWriter, r *http.Request) {
	if date := r.URL.Query().Get("date"); date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"detail": []map[string]string{{"msg": "date must be YYYY-MM-DD"}},
			})
			return
		}
	}
	slots, err := s.store.Slots(chi.URLParam(r, "vendorID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slots)
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Items(chi.URLParam(r, "menuID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := s.store.PlaceOrder(phoneFrom(r.Context()), req)
	if err != nil {
		respondError(w, err)
		return
	}
	s.logger.Info("Order booked", map[string]interface{}{"order_id": order.ID, "slot_id": req.SlotID})
	respondJSON(w, http.StatusCreated, order)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Orders(phoneFrom(r.Context())))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.store.Order(phoneFrom(r.Context()), chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.store.CancelOrder(phoneFrom(r.Context()), chi.URLParam(r, "orderID")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order cancelled"})
}

func (s *Server) orderStatus(w http.ResponseWriter, r *http.Request) {
	order, err := s.store.Order(phoneFrom(r.Context()), chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, err)
		return
	}
	report := models.StatusReport{Status: order.Status}
	if !order.Status.IsTerminal() && order.Status != models.OrderReady {
		report.EstimatedTime = "15 min"
	}
	respondJSON(w, http.StatusOK, report)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid request body"})
		return false
	}
	return true
}

func respondError(w http.ResponseWriter, err error) {
	var se *Error
	if errors.As(err, &se) {
		respondJSON(w, se.Status, map[string]string{"detail": se.Detail})
		return
	}
	respondJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
