package app

import (
	"context"
	"time"

	"github.com/pgtui/gridq/drivers"
	"github.com/pgtui/gridq/logger"
	"github.com/pgtui/gridq/storage"
	"github.com/pgtui/gridq/ui/sqlpreview"
)

// recordingExecutor decorates the connection executor: every statement
// the engine runs is pushed to the preview pane and, for saved
// connections, logged to app storage. Recording failures never fail the
// statement itself.
type recordingExecutor struct {
	inner   drivers.Executor
	preview *sqlpreview.Model
	connID  int64
}

func newRecordingExecutor(inner drivers.Executor, preview *sqlpreview.Model, connID int64) *recordingExecutor {
	return &recordingExecutor{inner: inner, preview: preview, connID: connID}
}

func (e *recordingExecutor) Execute(ctx context.Context, sqlText string) ([]drivers.Row, error) {
	start := time.Now()
	result, err := e.inner.Execute(ctx, sqlText)

	e.preview.Push(sqlText)
	if e.connID != 0 {
		execError := ""
		if err != nil {
			execError = drivers.ErrorMessage(err)
		}
		if _, logErr := storage.AddStatement(e.connID, sqlText, time.Since(start).Milliseconds(), int64(len(result)), execError); logErr != nil {
			logger.Error("statement log write failed", map[string]any{"error": logErr.Error()})
		}
	}
	return result, err
}
