package pipeline

import (
	"context"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/logfields"
)

// RunStages executes stages in order, recording timing and stopping on the
// first error. Every stage error is fatal.
func RunStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	recorder := bs.Recorder()
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := NewCanceledStageError(st.Name, ctx.Err())
			bs.Report.StageErrorKinds[st.Name] = se.Kind
			bs.Report.Errors = append(bs.Report.Errors, se)
			bs.Report.RecordStageResult(st.Name, StageResultCanceled, recorder)
			return se
		default:
		}

		slog.Debug("Stage started", logfields.Stage(string(st.Name)), logfields.BuildID(bs.Report.BuildID))
		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		bs.Report.StageDurations[st.Name] = dur
		recorder.ObserveStageDuration(string(st.Name), dur)

		if err == nil {
			bs.Report.RecordStageResult(st.Name, StageResultSuccess, recorder)
			slog.Debug("Stage completed", logfields.Stage(string(st.Name)), logfields.Elapsed(t0))
			continue
		}

		se := classifyStageError(ctx, st.Name, err)
		bs.Report.StageErrorKinds[st.Name] = se.Kind
		bs.Report.Errors = append(bs.Report.Errors, se)
		res := StageResultFatal
		if se.Kind == StageErrorCanceled {
			res = StageResultCanceled
		}
		bs.Report.RecordStageResult(st.Name, res, recorder)
		slog.Error("Stage failed",
			logfields.Stage(string(st.Name)),
			logfields.Elapsed(t0),
			logfields.Error(err))
		return se
	}
	return nil
}

func classifyStageError(ctx context.Context, stage StageName, err error) *StageError {
	if ctx.Err() != nil || ferrors.HasCategory(err, ferrors.CategoryCanceled) {
		return NewCanceledStageError(stage, err)
	}
	return NewFatalStageError(stage, err)
}
