package http

import (
	"net/http"

	"doctor-duty-notifier/internal/delivery/http/handler"
	"doctor-duty-notifier/internal/delivery/http/middleware"
	"doctor-duty-notifier/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	scheduleHandler     *handler.ScheduleHandler
	notificationHandler *handler.NotificationHandler
	deviceHandler       *handler.DeviceHandler
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	scheduleHandler *handler.ScheduleHandler,
	notificationHandler *handler.NotificationHandler,
	deviceHandler *handler.DeviceHandler,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		scheduleHandler:     scheduleHandler,
		notificationHandler: notificationHandler,
		deviceHandler:       deviceHandler,
		corsMiddleware:      corsMiddleware,
	}
}

// Setup registers all routes. CORS wraps the whole router so that
// preflight requests reach it before method matching.
func (r *Router) Setup() http.Handler {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Schedule routes
	schedules := api.PathPrefix("/schedules").Subrouter()
	schedules.HandleFunc("", r.scheduleHandler.GetSchedules).Methods(http.MethodGet)
	schedules.HandleFunc("/upcoming", r.scheduleHandler.GetUpcoming).Methods(http.MethodGet)
	schedules.HandleFunc("/ingest", r.scheduleHandler.Ingest).Methods(http.MethodPost)
	schedules.HandleFunc("/runs", r.scheduleHandler.GetScrapeRuns).Methods(http.MethodGet)

	// Email / web push subscriptions
	notifications := api.PathPrefix("/notifications").Subrouter()
	notifications.HandleFunc("/subscribe", r.notificationHandler.Subscribe).Methods(http.MethodPost)
	notifications.HandleFunc("/unsubscribe", r.notificationHandler.Unsubscribe).Methods(http.MethodPost)
	notifications.HandleFunc("/subscriptions", r.notificationHandler.ListSubscriptions).Methods(http.MethodGet)

	// Mobile devices (FCM)
	fcm := api.PathPrefix("/fcm").Subrouter()
	fcm.HandleFunc("/register-token", r.deviceHandler.RegisterToken).Methods(http.MethodPost)
	fcm.HandleFunc("/subscribe-doctor", r.deviceHandler.SubscribeDoctor).Methods(http.MethodPost)
	fcm.HandleFunc("/unsubscribe-doctor", r.deviceHandler.UnsubscribeDoctor).Methods(http.MethodPost)
	fcm.HandleFunc("/subscriptions/{deviceId}", r.deviceHandler.GetDeviceSubscriptions).Methods(http.MethodGet)

	return r.corsMiddleware.Handle(r.router)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
