package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/service"

	"go.uber.org/zap"
)

// PublicHandler 访客端入口：无登录，凭 slug + one-time token 开门
type PublicHandler struct {
	unlock service.UnlockService
	logger *zap.Logger
}

func NewPublicHandler(unlock service.UnlockService, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{unlock: unlock, logger: logger}
}

type openLockRequest struct {
	Slug     string `json:"slug"`
	DeviceID string `json:"deviceId"`
	Token    string `json:"token"`
}

// OpenLock handles POST /api/public/actions/open-lock.
func (h *PublicHandler) OpenLock(w http.ResponseWriter, r *http.Request) {
	var req openLockRequest
	if err := readBodyJSON(r, 16*1024, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}
	req.Slug = strings.TrimSpace(req.Slug)
	req.DeviceID = strings.TrimSpace(req.DeviceID)
	req.Token = strings.TrimSpace(req.Token)
	if req.Slug == "" || req.DeviceID == "" || req.Token == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "slug, deviceId and token are required")
		return
	}

	resp, err := h.unlock.Unlock(r.Context(), service.UnlockRequest{
		Slug:     req.Slug,
		DeviceID: req.DeviceID,
		Token:    req.Token,
		IP:       clientIP(r),
	})
	if err != nil {
		var derr *service.DispatchError
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token")
		case errors.Is(err, service.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "Device not available for this unit")
		case errors.As(err, &derr):
			writeError(w, http.StatusBadGateway, "dispatch_failed", derr.Result.Message)
		default:
			h.logger.Error("Unlock failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
