package session

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/vujjini/bm-assist/internal/backend"
	"github.com/vujjini/bm-assist/internal/domain"
)

// UploadAPI is the slice of the backend client the upload controller needs.
type UploadAPI interface {
	UploadSingle(ctx context.Context, f backend.File) (domain.UploadResult, error)
	UploadBatch(ctx context.Context, files []backend.File) (domain.UploadResult, error)
	UploadZip(ctx context.Context, f backend.File) (domain.UploadResult, error)
	UploadManual(ctx context.Context, f backend.File) (domain.UploadResult, error)
}

// UploadController manages the selected upload mode, validates file
// selections against it and drives the request. Uploads are single-flight;
// a second submit while one is in flight is rejected, never queued.
type UploadController struct {
	mu       sync.Mutex
	api      UploadAPI
	notifier Notifier
	log      *zap.Logger

	mode      domain.UploadMode
	uploading bool
	pending   []backend.File
	result    domain.UploadResult
	lastErr   string
}

// NewUploadController creates an upload controller starting in single mode.
func NewUploadController(api UploadAPI, notifier Notifier, logger *zap.Logger) *UploadController {
	return &UploadController{
		api:      api,
		notifier: notifier,
		log:      logger,
		mode:     domain.UploadModeSingle,
	}
}

// Mode returns the active upload mode.
func (u *UploadController) Mode() domain.UploadMode {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.mode
}

// SelectMode switches the active mode. Disallowed while an upload is in
// flight. Switching does not clear previously shown results.
func (u *UploadController) SelectMode(mode domain.UploadMode) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.uploading {
		return false
	}
	u.mode = mode
	return true
}

// Uploading reports whether an upload is in flight.
func (u *UploadController) Uploading() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.uploading
}

// Result returns the last successful upload result, nil if none.
func (u *UploadController) Result() domain.UploadResult {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.result
}

// LastError returns the classified text of the last failed attempt, empty
// after a success.
func (u *UploadController) LastError() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastErr
}

// Begin validates the selection against the active mode and moves the
// controller to its uploading state. Validation failures are reported
// before any network activity. Empty selections and in-flight uploads are
// rejected without a toast.
func (u *UploadController) Begin(files []backend.File) error {
	u.mu.Lock()

	if u.uploading {
		u.mu.Unlock()
		return domain.ErrBusy
	}
	if len(files) == 0 {
		u.mu.Unlock()
		return domain.ErrNoFiles
	}

	if u.mode == domain.UploadModeManual {
		if len(files) != 1 || !hasExt(files[0].Name, ".pdf") {
			u.lastErr = domain.ErrManualRequiresPDF.Error()
			u.mu.Unlock()
			if u.notifier != nil {
				u.notifier.Error("Upload error: " + domain.ErrManualRequiresPDF.Error())
			}
			return domain.ErrManualRequiresPDF
		}
	}

	u.uploading = true
	u.pending = files
	u.result = nil
	u.lastErr = ""
	u.mu.Unlock()
	return nil
}

// Finish routes the selection accepted by Begin to the matching endpoint
// and records the outcome.
func (u *UploadController) Finish(ctx context.Context) error {
	u.mu.Lock()
	mode := u.mode
	files := u.pending
	u.mu.Unlock()

	result, err := u.dispatch(ctx, mode, files)

	u.mu.Lock()
	u.uploading = false
	u.pending = nil
	if err != nil {
		u.lastErr = backend.ErrorText(err)
	} else {
		u.result = result
		u.lastErr = ""
	}
	errText := u.lastErr
	u.mu.Unlock()

	// Notify outside the lock: the toast callback may re-enter the UI loop,
	// which reads controller state.
	if err != nil {
		if u.log != nil {
			u.log.Warn("upload failed",
				zap.String("mode", string(mode)),
				zap.Error(err),
			)
		}
		if u.notifier != nil {
			u.notifier.Error("Upload error: " + errText)
		}
		return err
	}

	if u.notifier != nil {
		msg := result.UploadMessage()
		if msg == "" {
			msg = "Upload completed"
		}
		u.notifier.Success(msg)
	}
	return nil
}

// Submit is the full upload: Begin plus Finish.
func (u *UploadController) Submit(ctx context.Context, files []backend.File) error {
	if err := u.Begin(files); err != nil {
		return err
	}
	return u.Finish(ctx)
}

// dispatch applies the mode routing rules. Anything not matched by a more
// specific rule goes to the batch endpoint, including the zip mode's
// intentional fallthrough for non-zip selections.
func (u *UploadController) dispatch(ctx context.Context, mode domain.UploadMode, files []backend.File) (domain.UploadResult, error) {
	switch mode {
	case domain.UploadModeManual:
		return u.api.UploadManual(ctx, files[0])
	case domain.UploadModeSingle:
		if len(files) == 1 {
			if hasExt(files[0].Name, ".zip") {
				return u.api.UploadZip(ctx, files[0])
			}
			return u.api.UploadSingle(ctx, files[0])
		}
		return u.api.UploadBatch(ctx, files)
	case domain.UploadModeZip:
		if len(files) == 1 && hasExt(files[0].Name, ".zip") {
			return u.api.UploadZip(ctx, files[0])
		}
		return u.api.UploadBatch(ctx, files)
	default:
		return u.api.UploadBatch(ctx, files)
	}
}

func hasExt(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}
