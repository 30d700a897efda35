package content

import "errors"

var (
	// ErrEmptyContent indicates no content field was provided.
	ErrEmptyContent = errors.New("at least one content field is required")
	// ErrNotOwner indicates the acting user does not own the entity.
	ErrNotOwner = errors.New("only the author may modify this entity")
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("entity not found")
)
