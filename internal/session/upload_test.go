package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vujjini/bm-assist/internal/backend"
	"github.com/vujjini/bm-assist/internal/domain"
)

type fakeUploader struct {
	mu      sync.Mutex
	calls   []string
	result  domain.UploadResult
	err     error
	release chan struct{}
}

func (f *fakeUploader) record(endpoint string) (domain.UploadResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, endpoint)
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	return f.result, f.err
}

func (f *fakeUploader) UploadSingle(ctx context.Context, file backend.File) (domain.UploadResult, error) {
	return f.record("single")
}

func (f *fakeUploader) UploadBatch(ctx context.Context, files []backend.File) (domain.UploadResult, error) {
	return f.record("batch")
}

func (f *fakeUploader) UploadZip(ctx context.Context, file backend.File) (domain.UploadResult, error) {
	return f.record("zip")
}

func (f *fakeUploader) UploadManual(ctx context.Context, file backend.File) (domain.UploadResult, error) {
	return f.record("manual")
}

func memFiles(names ...string) []backend.File {
	files := make([]backend.File, 0, len(names))
	for _, n := range names {
		files = append(files, backend.MemoryFile(n, []byte("data")))
	}
	return files
}

func TestUploadRouting(t *testing.T) {
	tests := []struct {
		name  string
		mode  domain.UploadMode
		files []string
		want  string
	}{
		{"multiple always batches", domain.UploadModeMultiple, []string{"a.pdf", "b.zip", "c.xlsx"}, "batch"},
		{"multiple batches a lone zip", domain.UploadModeMultiple, []string{"docs.zip"}, "batch"},
		{"single routes zip by extension", domain.UploadModeSingle, []string{"docs.zip"}, "zip"},
		{"single routes zip case-insensitively", domain.UploadModeSingle, []string{"DOCS.ZIP"}, "zip"},
		{"single routes non-zip to single endpoint", domain.UploadModeSingle, []string{"budget.xlsx"}, "single"},
		{"single with several files batches", domain.UploadModeSingle, []string{"a.pdf", "b.pdf"}, "batch"},
		{"zip routes one zip to zip endpoint", domain.UploadModeZip, []string{"docs.zip"}, "zip"},
		{"zip falls through to batch on non-zip", domain.UploadModeZip, []string{"a.pdf"}, "batch"},
		{"zip falls through to batch on several files", domain.UploadModeZip, []string{"a.zip", "b.zip"}, "batch"},
		{"manual routes one pdf to manual endpoint", domain.UploadModeManual, []string{"spec.pdf"}, "manual"},
		{"manual accepts uppercase extension", domain.UploadModeManual, []string{"SPEC.PDF"}, "manual"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeUploader{result: &domain.SingleFileResult{Message: "ok"}}
			u := NewUploadController(api, &fakeNotifier{}, nil)
			require.True(t, u.SelectMode(tt.mode))

			require.NoError(t, u.Submit(context.Background(), memFiles(tt.files...)))
			assert.Equal(t, []string{tt.want}, api.calls)
		})
	}
}

// Manual mode validation fails before any network activity.
func TestManualValidation(t *testing.T) {
	tests := []struct {
		name  string
		files []string
	}{
		{"non-pdf file", []string{"budget.xlsx"}},
		{"several pdfs", []string{"a.pdf", "b.pdf"}},
		{"zip archive", []string{"docs.zip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeUploader{}
			notifier := &fakeNotifier{}
			u := NewUploadController(api, notifier, nil)
			u.SelectMode(domain.UploadModeManual)

			err := u.Submit(context.Background(), memFiles(tt.files...))
			assert.ErrorIs(t, err, domain.ErrManualRequiresPDF)
			assert.Empty(t, api.calls, "no network call may be issued")
			require.Len(t, notifier.errors, 1)
			assert.NotEmpty(t, u.LastError())
			assert.False(t, u.Uploading())
		})
	}
}

func TestSubmitEmptySelectionIsNoOp(t *testing.T) {
	api := &fakeUploader{}
	notifier := &fakeNotifier{}
	u := NewUploadController(api, notifier, nil)

	assert.ErrorIs(t, u.Submit(context.Background(), nil), domain.ErrNoFiles)
	assert.Empty(t, api.calls)
	assert.Empty(t, notifier.errors)
}

func TestSubmitIsSingleFlight(t *testing.T) {
	api := &fakeUploader{
		result:  &domain.SingleFileResult{Message: "ok"},
		release: make(chan struct{}),
	}
	u := NewUploadController(api, &fakeNotifier{}, nil)

	require.NoError(t, u.Begin(memFiles("a.xlsx")))
	done := make(chan error, 1)
	go func() { done <- u.Finish(context.Background()) }()

	assert.ErrorIs(t, u.Begin(memFiles("b.xlsx")), domain.ErrBusy)
	assert.False(t, u.SelectMode(domain.UploadModeZip), "mode switch is disabled while uploading")

	close(api.release)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"single"}, api.calls)
	assert.True(t, u.SelectMode(domain.UploadModeZip))
}

func TestUploadSuccessEmitsBackendMessage(t *testing.T) {
	api := &fakeUploader{result: &domain.FolderResult{
		Message:             "Processed 2 files: 2 successful, 0 failed",
		TotalFilesProcessed: 2,
		SuccessfulFiles:     2,
	}}
	notifier := &fakeNotifier{}
	u := NewUploadController(api, notifier, nil)
	u.SelectMode(domain.UploadModeMultiple)

	require.NoError(t, u.Submit(context.Background(), memFiles("a.pdf", "b.xlsx")))

	require.Len(t, notifier.successes, 1)
	assert.Equal(t, "Processed 2 files: 2 successful, 0 failed", notifier.successes[0])

	folder, ok := u.Result().(*domain.FolderResult)
	require.True(t, ok)
	assert.Equal(t, 2, folder.TotalFilesProcessed)
	assert.Empty(t, u.LastError())
}

func TestUploadFailureRetainsNoResult(t *testing.T) {
	api := &fakeUploader{err: &backend.APIError{Status: 500, Detail: "vector store unavailable"}}
	notifier := &fakeNotifier{}
	u := NewUploadController(api, notifier, nil)

	require.Error(t, u.Submit(context.Background(), memFiles("a.xlsx")))

	assert.Nil(t, u.Result())
	assert.Equal(t, "vector store unavailable", u.LastError())
	require.Len(t, notifier.errors, 1)
	assert.Equal(t, "Upload error: vector store unavailable", notifier.errors[0])
	assert.False(t, u.Uploading())

	// The controller is re-entrant after a failure.
	api.err = nil
	api.result = &domain.SingleFileResult{Message: "ok"}
	require.NoError(t, u.Submit(context.Background(), memFiles("a.xlsx")))
	assert.Empty(t, u.LastError())
	assert.NotNil(t, u.Result())
}

func TestModeSwitchKeepsShownResult(t *testing.T) {
	api := &fakeUploader{result: &domain.SingleFileResult{Message: "ok", Filename: "a.xlsx"}}
	u := NewUploadController(api, &fakeNotifier{}, nil)

	require.NoError(t, u.Submit(context.Background(), memFiles("a.xlsx")))
	require.NotNil(t, u.Result())

	u.SelectMode(domain.UploadModeManual)
	assert.NotNil(t, u.Result(), "switching modes does not clear shown results")
}
