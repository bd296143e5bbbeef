package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/provider"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/repository"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/service"

	"go.uber.org/zap"
)

// IoTHandler 员工端设备管理接口（JWT 保护，绕过访客凭证网关）
type IoTHandler struct {
	commands service.CommandService
	registry *provider.Registry
	logs     repository.AccessLogsRepo
	logger   *zap.Logger
}

func NewIoTHandler(commands service.CommandService, registry *provider.Registry, logs repository.AccessLogsRepo, logger *zap.Logger) *IoTHandler {
	return &IoTHandler{commands: commands, registry: registry, logs: logs, logger: logger}
}

type openDoorRequest struct {
	DeviceID string `json:"deviceId"`
}

// OpenDoor handles POST /iot/open-door.
func (h *IoTHandler) OpenDoor(w http.ResponseWriter, r *http.Request) {
	var req openDoorRequest
	if err := readBodyJSON(r, 16*1024, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}
	req.DeviceID = strings.TrimSpace(req.DeviceID)
	if req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "deviceId is required")
		return
	}

	if claims, ok := StaffFromContext(r.Context()); ok {
		h.logger.Info("Staff open-door request",
			zap.String("subject", claims.Subject),
			zap.String("role", claims.Role),
			zap.String("device_id", req.DeviceID),
		)
	}

	result, err := h.commands.OpenByDeviceID(r.Context(), req.DeviceID, clientIP(r))
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DeviceStatus handles GET /iot/device/{deviceId}/status.
func (h *IoTHandler) DeviceStatus(w http.ResponseWriter, r *http.Request, deviceID string) {
	result, err := h.commands.Status(r.Context(), deviceID)
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type accessCodeRequest struct {
	ValidFrom time.Time `json:"validFrom"`
	ValidTo   time.Time `json:"validTo"`
}

// AccessCode handles POST /iot/device/{deviceId}/access-code.
func (h *IoTHandler) AccessCode(w http.ResponseWriter, r *http.Request, deviceID string) {
	var req accessCodeRequest
	if err := readBodyJSON(r, 16*1024, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}
	if req.ValidFrom.IsZero() || req.ValidTo.IsZero() || !req.ValidTo.After(req.ValidFrom) {
		writeError(w, http.StatusBadRequest, "invalid_request", "validFrom and validTo must form a non-empty window")
		return
	}

	result, err := h.commands.GenerateAccessCode(r.Context(), deviceID, req.ValidFrom, req.ValidTo)
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Providers handles GET /iot/providers.
func (h *IoTHandler) Providers(w http.ResponseWriter, _ *http.Request) {
	type providerInfo struct {
		Name               string `json:"name"`
		SupportsStatus     bool   `json:"supportsStatus"`
		SupportsClose      bool   `json:"supportsClose"`
		SupportsAccessCode bool   `json:"supportsAccessCode"`
	}

	var items []providerInfo
	for _, name := range h.registry.ListEnabled() {
		items = append(items, providerInfo{
			Name:               name,
			SupportsStatus:     h.registry.SupportsStatus(name),
			SupportsClose:      h.registry.SupportsClose(name),
			SupportsAccessCode: h.registry.SupportsAccessCodes(name),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": items})
}

// AccessLogs handles GET /iot/access-logs.
func (h *IoTHandler) AccessLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.logs.List(r.Context(), h.logFilter(r))
	if err != nil {
		h.logger.Error("Failed to list access logs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": entries,
		"total": len(entries),
	})
}

// AccessLogsExport handles GET /iot/access-logs/export.
func (h *IoTHandler) AccessLogsExport(w http.ResponseWriter, r *http.Request) {
	entries, err := h.logs.List(r.Context(), h.logFilter(r))
	if err != nil {
		h.logger.Error("Failed to list access logs for export", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	data, err := GenerateAccessLogExport(entries)
	if err != nil {
		h.logger.Error("Failed to generate access log export", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	filename := "access-logs-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *IoTHandler) logFilter(r *http.Request) repository.AccessLogFilter {
	return repository.AccessLogFilter{
		UnitID:   strings.TrimSpace(r.URL.Query().Get("unitId")),
		DeviceID: strings.TrimSpace(r.URL.Query().Get("deviceId")),
		Limit:    parseInt(r.URL.Query().Get("limit"), 0),
	}
}

func (h *IoTHandler) writeCommandError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Device not found")
		return
	}
	h.logger.Error("Device command failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}
