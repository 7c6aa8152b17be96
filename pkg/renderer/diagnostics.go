package renderer

import (
	"context"
	"fmt"
	"log/slog"

	rerrors "github.com/vango-dev/reconcile/internal/errors"
)

// Diagnostic is a recoverable problem found while rendering. Nothing
// reported as a Diagnostic stops reconciliation.
type Diagnostic struct {
	Code      string
	Message   string
	Component string
	Err       error
}

// Error implements error.
func (d Diagnostic) Error() string {
	return d.Err.Error()
}

func (r *Renderer) diagnose(code string, component string) *rerrors.ReconcileError {
	err := rerrors.New(code)
	if component != "" {
		err.With("component", component)
	}
	return err
}

// report logs err, counts it and hands it to the diagnostic handler.
func (r *Renderer) report(err *rerrors.ReconcileError) {
	level := slog.LevelWarn
	switch err.Category {
	case rerrors.CategoryAsync, rerrors.CategoryEffect, rerrors.CategoryScheduler:
		level = slog.LevelError
	}
	r.logger.Log(context.Background(), level, err.Message, err.LogArgs()...)
	r.metrics.ObserveDiagnostic(err.Code)

	if r.onDiag == nil {
		return
	}
	d := Diagnostic{Code: err.Code, Message: err.Message, Err: err}
	if c, ok := err.Attr("component"); ok {
		d.Component = fmt.Sprint(c)
	}
	r.onDiag(d)
}

// reportError reports an error raised outside the renderer, such as a
// scheduler recursion overflow.
func (r *Renderer) reportError(err error) {
	re, ok := err.(*rerrors.ReconcileError)
	if !ok {
		re = rerrors.FromError(err, "R011")
	}
	r.report(re)
}
