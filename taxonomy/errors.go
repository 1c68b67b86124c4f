package taxonomy

import "errors"

// Caller-input failures surfaced by the folder core. Handlers match these
// with errors.Is and map them to 400-class responses; anything else is a
// store failure and maps to 500.
var (
	ErrEmptyName        = errors.New("folder name cannot be empty")
	ErrFolderNotFound   = errors.New("folder does not exist")
	ErrParentNotFound   = errors.New("parent folder does not exist")
	ErrInvalidParent    = errors.New("folder cannot be moved into itself or one of its descendants")
	ErrInvalidColor     = errors.New("color must be a hex value like #fff or #ffcc00")
	ErrInvalidMediaID   = errors.New("one or more media ids do not refer to a media item")
	ErrMediaIDsRequired = errors.New("media_ids is required and must be a non-empty array")
)
