package builder

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

var (
	errMissingClient  = errors.New("pagebuilder: schema client not configured")
	errMissingProject = errors.New("pagebuilder: project id is required")
	errSessionClosed  = errors.New("pagebuilder: editor session is not open")
	errSessionOpen    = errors.New("pagebuilder: editor session already open")
	errNotCarousel    = errors.New("pagebuilder: editor is not editing a carousel")
	errNotLink        = errors.New("pagebuilder: editor is not editing a link widget")
)

// Text codes attached to categorised errors.
const (
	CodeValidationFailed   = "WIDGET_VALIDATION_FAILED"
	CodeUnknownWidget      = "WIDGET_KIND_UNKNOWN"
	CodeDestinationsFailed = "UPLOAD_DESTINATIONS_FAILED"
	CodeRewriteFailed      = "CONTENT_REWRITE_FAILED"
	CodeSchemaSaveFailed   = "SCHEMA_SAVE_FAILED"
	CodeSchemaFetchFailed  = "SCHEMA_FETCH_FAILED"
)

func validationError(err error, message string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, message).
		WithTextCode(CodeValidationFailed)
}

func unknownKindError(kind WidgetKind) error {
	return goerrors.Wrap(errors.New("pagebuilder: unknown widget kind "+string(kind)), goerrors.CategoryValidation, "unknown widget kind").
		WithTextCode(CodeUnknownWidget)
}

func boundaryError(err error, message, code string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).
		WithTextCode(code)
}

// IsValidationError reports whether err was rejected before any network call.
func IsValidationError(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryValidation)
}

// IsSessionStateError reports whether err came from an editor operation that
// does not fit the current session state.
func IsSessionStateError(err error) bool {
	return errors.Is(err, errSessionClosed) ||
		errors.Is(err, errSessionOpen) ||
		errors.Is(err, errNotCarousel) ||
		errors.Is(err, errNotLink)
}
