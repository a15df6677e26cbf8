package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrToolNotFound is returned when a required external tool is not installed.
	ErrToolNotFound = zerr.New("required external tool not found")

	// ErrToolFailed is returned when an external tool exits with an error.
	ErrToolFailed = zerr.New("external tool failed")

	// ErrMetadataParseFailed is returned when package metadata from a source cannot be parsed.
	ErrMetadataParseFailed = zerr.New("failed to parse package metadata")

	// ErrPackageNotFound is returned when a package is unknown to every source.
	ErrPackageNotFound = zerr.New("package not found")

	// ErrSourceRequestFailed is returned when a request to a remote package source fails.
	ErrSourceRequestFailed = zerr.New("package source request failed")

	// ErrSourceTimeout is returned when a remote package source does not answer in time.
	ErrSourceTimeout = zerr.New("package source request timed out")

	// ErrComputationTimeout is returned when a worker computation exceeds its deadline.
	ErrComputationTimeout = zerr.New("computation deadline exceeded")

	// ErrWorkerPanicked is returned when a worker computation panics.
	ErrWorkerPanicked = zerr.New("worker computation panicked")

	// ErrWorkerChannelClosed is returned when a worker closes its result channel.
	ErrWorkerChannelClosed = zerr.New("worker channel closed unexpectedly")

	// ErrSubsystemDisabled is returned when work is submitted to a disabled subsystem.
	ErrSubsystemDisabled = zerr.New("subsystem disabled for this session")

	// ErrUnknownWorkKind is returned when a work item has no matching worker.
	ErrUnknownWorkKind = zerr.New("unknown work kind")

	// ErrPlanBlocking is returned when a plan with conflicts is executed without override.
	ErrPlanBlocking = zerr.New("plan has conflicts, explicit override required")

	// ErrNoPlan is returned when execution is requested before a plan is ready.
	ErrNoPlan = zerr.New("no plan available")

	// ErrPlanIncomplete is returned when a plan is executed before all sections resolved.
	ErrPlanIncomplete = zerr.New("plan is not fully resolved")

	// ErrSessionBusy is returned when a session is started while another one is active.
	ErrSessionBusy = zerr.New("another execution session is active")

	// ErrSessionNotFound is returned when a request names an unknown session.
	ErrSessionNotFound = zerr.New("execution session not found")

	// ErrSessionNotWaiting is returned when a credential is supplied to a session that did not ask for one.
	ErrSessionNotWaiting = zerr.New("execution session is not waiting for a credential")

	// ErrAbortNotAllowed is returned when aborting a session whose command is not abortable.
	ErrAbortNotAllowed = zerr.New("command cannot be aborted")

	// ErrInvalidCommand is returned when a command fails validation.
	ErrInvalidCommand = zerr.New("invalid command")

	// ErrAmbiguousSession is returned when a session is given both a plan and an ad-hoc command.
	ErrAmbiguousSession = zerr.New("session must reference exactly one plan or ad-hoc command")

	// ErrProcessStartFailed is returned when the child process cannot be spawned.
	ErrProcessStartFailed = zerr.New("failed to start process")

	// ErrProcessFailed is returned when the child process exits with a non-zero status.
	ErrProcessFailed = zerr.New("process exited with non-zero status")

	// ErrCredentialRejected is returned when the supplied secret is refused too many times.
	ErrCredentialRejected = zerr.New("credential rejected")

	// ErrCredentialLockout is returned when the elevation tool reports a locked account.
	ErrCredentialLockout = zerr.New("account locked after failed authentication")

	// ErrCredentialCancelled is returned when the user cancels a credential prompt.
	ErrCredentialCancelled = zerr.New("credential prompt cancelled")

	// ErrSessionAborted is returned when the user aborts a running session.
	ErrSessionAborted = zerr.New("execution aborted by user")

	// ErrCacheReadFailed is returned when the persisted cache cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read cache file")

	// ErrCacheWriteFailed is returned when the persisted cache cannot be written.
	ErrCacheWriteFailed = zerr.New("failed to write cache file")

	// ErrCacheMarshalFailed is returned when a cache record cannot be encoded.
	ErrCacheMarshalFailed = zerr.New("failed to marshal cache record")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when the config file fails validation.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrWatcherFailed is returned when the package database watcher cannot start.
	ErrWatcherFailed = zerr.New("failed to watch package database")

	// ErrNoTargetsSpecified is returned when an operation is requested without packages.
	ErrNoTargetsSpecified = zerr.New("no packages specified")

	// ErrUnknownAction is returned when a command names an action that does not exist.
	ErrUnknownAction = zerr.New("unknown action")

	// ErrOperationDeclined is returned when the user declines to proceed.
	ErrOperationDeclined = zerr.New("operation declined")

	// ErrNoInteractiveView is returned when no interactive view is wired.
	ErrNoInteractiveView = zerr.New("interactive view is not available")

	// ErrExecutionFailed is returned when an execution session does not complete.
	ErrExecutionFailed = zerr.New("execution failed")
)

// Kind classifies an error for propagation decisions.
type Kind uint8

const (
	// KindUnknown is an unclassified error.
	KindUnknown Kind = iota
	// KindNotFound means a required external tool is missing.
	KindNotFound
	// KindParseError means a source returned malformed metadata.
	KindParseError
	// KindConflictBlocking means the plan has conflicts and needs an override.
	KindConflictBlocking
	// KindCredentialRejected means the secret was wrong or the account is locked.
	KindCredentialRejected
	// KindTimeout means a network or worker deadline expired.
	KindTimeout
	// KindCancelled means the user aborted.
	KindCancelled
	// KindFatal means a channel closed or an internal invariant broke.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindParseError:
		return "parse_error"
	case KindConflictBlocking:
		return "conflict_blocking"
	case KindCredentialRejected:
		return "credential_rejected"
	case KindTimeout:
		return "timeout"
	case KindCancelled:
		return "cancelled"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error attaches a Kind to an error chain.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify tags err with kind. A nil err stays nil.
func Classify(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the outermost Kind in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
