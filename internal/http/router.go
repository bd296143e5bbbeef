package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter builds the routing tree: an open guest surface and a JWT-guarded
// staff surface.
func NewRouter(public *PublicHandler, iot *IoTHandler, auth *AuthVerifier, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RecoverJSON(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(RequestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/api/public", func(pub chi.Router) {
		pub.Post("/actions/open-lock", public.OpenLock)
	})

	r.Route("/iot", func(staff chi.Router) {
		staff.Use(auth.RequireStaff)

		staff.Post("/open-door", iot.OpenDoor)
		staff.Get("/device/{deviceId}/status", func(w http.ResponseWriter, r *http.Request) {
			iot.DeviceStatus(w, r, chi.URLParam(r, "deviceId"))
		})
		staff.Post("/device/{deviceId}/access-code", func(w http.ResponseWriter, r *http.Request) {
			iot.AccessCode(w, r, chi.URLParam(r, "deviceId"))
		})
		staff.Get("/providers", iot.Providers)
		staff.Get("/access-logs", iot.AccessLogs)
		staff.Get("/access-logs/export", iot.AccessLogsExport)
	})

	return r
}
