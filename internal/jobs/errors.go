package jobs

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	envelopeInvalidCode  = "JOB_ENVELOPE_INVALID"
	jobValidationCode    = "JOB_VALIDATION_FAILED"
	jobContextCode       = "JOB_CONTEXT_ERROR"
	jobExecuteFailedCode = "JOB_EXECUTION_FAILED"
)

var (
	// ErrMarkdownMissing signals an index-for-search job whose precondition
	// (the Markdown object already written) does not hold yet. Retryable: a
	// convert job for the same note may still be in flight.
	ErrMarkdownMissing = errors.New("jobs: markdown not generated yet")

	// ErrUnknownJobType signals an envelope whose type is not handled.
	// Permanent: redelivery cannot change the type.
	ErrUnknownJobType = errors.New("jobs: unknown job type")

	// ErrEnvelopeInvalid signals a message body that fails schema validation
	// or carries malformed identifiers. Permanent.
	ErrEnvelopeInvalid = errors.New("jobs: invalid job envelope")

	// ErrIndexerUnavailable signals an index job on a consumer wired without
	// an indexing collaborator. Permanent: a retry hits the same wiring.
	ErrIndexerUnavailable = errors.New("jobs: indexer not configured")
)

// IsPermanent reports whether a failure cannot be cured by redelivery. A
// permanent failure skips the remaining retry budget and goes straight to
// the dead-letter archive.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnknownJobType) || errors.Is(err, ErrEnvelopeInvalid) || errors.Is(err, ErrIndexerUnavailable) {
		return true
	}
	return goerrors.IsCategory(err, goerrors.CategoryValidation)
}

func wrapEnvelopeError(err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(errors.Join(ErrEnvelopeInvalid, err), goerrors.CategoryValidation, "job envelope rejected").
		WithTextCode(envelopeInvalidCode)
}

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "job validation failed").
		WithTextCode(jobValidationCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "job context error").
		WithTextCode(jobContextCode)
}

func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "job execution failed").
		WithTextCode(jobExecuteFailedCode)
}
