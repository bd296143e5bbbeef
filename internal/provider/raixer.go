package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/config"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Raixer 智能锁厂家 adapter。
// 本系统里唯一带重试的 adapter：Raixer 的开锁是瞬时脉冲，重复下发无副作用，
// 所以对不稳定的厂家 API 做有界重试是安全的。
type Raixer struct {
	enabled     bool
	http        *resty.Client
	timeout     time.Duration
	maxRetries  int
	backoffBase time.Duration
	logger      *zap.Logger
}

type raixerOpenResponse struct {
	LockID       string `json:"lockId"`
	BatteryLevel int    `json:"batteryLevel"`
}

type raixerErrorResponse struct {
	Error string `json:"error"`
}

// NewRaixer builds the adapter from startup config. Missing credentials leave
// it disabled; construction never fails.
func NewRaixer(cfg config.RaixerConfig, logger *zap.Logger) *Raixer {
	p := &Raixer{
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
		backoffBase: 500 * time.Millisecond,
		logger:      logger,
	}
	if p.maxRetries < 1 {
		p.maxRetries = 1
	}

	if !cfg.Enabled {
		logger.Warn("Raixer provider disabled (IOT_RAIXER_ENABLED != true)")
		return p
	}
	if cfg.APIURL == "" || cfg.APIKey == "" {
		logger.Error("Raixer enabled but credentials missing (IOT_RAIXER_API_URL, IOT_RAIXER_API_KEY), starting disabled")
		return p
	}

	p.http = resty.New().
		SetBaseURL(cfg.APIURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-API-Key", cfg.APIKey)
	p.enabled = true
	logger.Info("Raixer provider enabled")
	return p
}

func (p *Raixer) Name() string  { return "RAIXER" }
func (p *Raixer) Enabled() bool { return p.enabled }

// Open dispatches the unlock with bounded retries: up to maxRetries attempts,
// exponential backoff starting at 500ms doubling per attempt, each attempt
// bounded by the per-attempt timeout. The backoff wait is cancellable by the
// caller's context. Retries in the result counts failed attempts.
func (p *Raixer) Open(ctx context.Context, device *domain.Device) domain.CommandResult {
	if !p.enabled {
		return disabledResult(domain.OperationOpen, "Raixer")
	}

	lockID := externalID(device, "")
	if lockID == "" {
		return domain.NewFailureResult(domain.OperationOpen,
			"device has no external device id configured", domain.ErrCodeVendorError)
	}

	p.logger.Info("Opening Raixer lock",
		zap.String("device_id", device.DeviceID),
		zap.String("lock_id", lockID),
	)

	var lastErr string
	lastCode := domain.ErrCodeVendorError
	attempt := 0
	for ; attempt < p.maxRetries; attempt++ {
		if attempt > 0 {
			delay := p.backoffBase << (attempt - 1)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				res := domain.NewFailureResult(domain.OperationOpen,
					"request cancelled during retry backoff", domain.ErrCodeTimeout)
				res.Retries = attempt
				return res
			case <-timer.C:
			}
		}

		out, code, err := p.executeOpen(ctx, lockID)
		if err == nil {
			p.logger.Info("Raixer lock opened",
				zap.String("lock_id", lockID),
				zap.Int("attempt", attempt+1),
			)
			res := domain.NewSuccessResult(domain.OperationOpen, "Lock opened successfully", map[string]any{
				"lockId":       out.LockID,
				"batteryLevel": out.BatteryLevel,
				"provider":     p.Name(),
			})
			res.Retries = attempt
			return res
		}

		lastErr = err.Error()
		lastCode = code
		p.logger.Warn("Raixer open attempt failed",
			zap.String("lock_id", lockID),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", p.maxRetries),
			zap.Error(err),
		)

		// Caller gave up; no point burning the remaining attempts.
		if ctx.Err() != nil {
			break
		}
	}

	// The loop index may be short of maxRetries when the caller's context
	// ended the loop; report only the attempts actually made.
	performed := attempt + 1
	if performed > p.maxRetries {
		performed = p.maxRetries
	}
	p.logger.Error("Raixer open failed",
		zap.String("lock_id", lockID),
		zap.Int("attempts", performed),
	)
	res := domain.NewFailureResult(domain.OperationOpen,
		fmt.Sprintf("open failed after %d attempts: %s", performed, lastErr), lastCode)
	res.Retries = performed - 1
	return res
}

func (p *Raixer) executeOpen(ctx context.Context, lockID string) (*raixerOpenResponse, string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var out raixerOpenResponse
	var apiErr raixerErrorResponse
	resp, err := p.http.R().
		SetContext(attemptCtx).
		SetResult(&out).
		SetError(&apiErr).
		Post(fmt.Sprintf("/locks/%s/open", url.PathEscape(lockID)))
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, domain.ErrCodeTimeout, fmt.Errorf("timeout after %s", p.timeout)
		}
		return nil, domain.ErrCodeVendorError, err
	}
	if !resp.IsSuccess() {
		msg := apiErr.Error
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode())
		}
		return nil, domain.ErrCodeVendorError, errors.New(msg)
	}
	return &out, "", nil
}

// Status is declared but not served by the vendor yet.
func (p *Raixer) Status(_ context.Context, _ *domain.Device) domain.CommandResult {
	if !p.enabled {
		return disabledResult(domain.OperationStatus, "Raixer")
	}
	return domain.NewFailureResult(domain.OperationStatus,
		"status endpoint not available from vendor", domain.ErrCodeUnsupportedOperation)
}
