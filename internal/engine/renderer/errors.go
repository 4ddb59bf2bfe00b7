package renderer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/enroth-render/internal/engine/errs"
)

// Error taxonomy. Match with errors.Is.
var (
	ErrInitialization = errs.ErrInitialization
	ErrResource       = errs.ErrResource
	ErrInvalidState   = errs.ErrInvalidState
	ErrDecode         = errs.ErrDecode
)

// invalid reports a state machine violation by op. In strict mode it
// panics; otherwise it logs and returns the error so the call is a no-op.
func (r *Renderer) invalid(op string, format string, args ...any) error {
	return r.misuse(op, fmt.Errorf("%w: %s: %s", ErrInvalidState, op, fmt.Sprintf(format, args...)))
}

// misuse routes an error through the strict-mode policy when it is an
// ErrInvalidState and returns it unchanged otherwise.
func (r *Renderer) misuse(op string, err error) error {
	if err == nil || !errors.Is(err, ErrInvalidState) {
		return err
	}
	r.stats.Invalid++
	if r.cfg.Strict {
		panic(err)
	}
	r.rejectLog.Warn("render call rejected", zap.String("op", op), zap.Error(err))
	return err
}

// skip records a primitive dropped for a per-frame resource problem. It
// never fails the frame.
func (r *Renderer) skip(op, texture string, reason string) {
	r.stats.Skipped++
	r.skipLog.Debug("primitive skipped",
		zap.String("op", op),
		zap.String("texture", texture),
		zap.String("reason", reason),
	)
}
