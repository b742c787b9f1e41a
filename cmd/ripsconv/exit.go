package main

import (
	"errors"
	"os"

	"github.com/rs/zerolog"

	"github.com/gyeh/ripsconv/internal/convert"
	"github.com/gyeh/ripsconv/internal/exitcode"
	"github.com/gyeh/ripsconv/internal/model"
	"github.com/gyeh/ripsconv/internal/reconstitute"
)

// exitCode maps a pipeline failure onto the process exit status.
func exitCode(err error) int {
	var (
		malformed *model.MalformedInputError
		missing   *reconstitute.MissingSheetError
		multiple  *reconstitute.MultipleInvoicesError
		coercion  *reconstitute.CoercionError
		pe        *convert.PipelineError
	)
	switch {
	case errors.As(err, &malformed):
		return exitcode.MalformedInput
	case errors.As(err, &missing):
		return exitcode.MissingSheet
	case errors.As(err, &multiple):
		return exitcode.MultipleInvoice
	case errors.As(err, &coercion):
		return exitcode.CoercionError
	case errors.As(err, &pe) && (pe.Phase == convert.PhaseWrite || pe.Phase == convert.PhaseEncode):
		return exitcode.WriteError
	}
	return exitcode.UsageError
}

func fail(log zerolog.Logger, msg string, err error) {
	var pe *convert.PipelineError
	if errors.As(err, &pe) {
		log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg(msg)
	} else {
		log.Error().Err(err).Msg(msg)
	}
	os.Exit(exitCode(err))
}
