package schema

import "errors"

var (
	// ErrInvalidCharacter indicates a record failed validation.
	ErrInvalidCharacter = errors.New("invalid character")
	// ErrInvalidID indicates a character id could not be parsed.
	ErrInvalidID = errors.New("invalid character id")
	// ErrCharacterNotFound indicates no record carries the requested id.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrPersist indicates the backing document could not be written.
	ErrPersist = errors.New("persist failed")
	// ErrCatalogUnavailable indicates the remote catalog could not be reached or answered non-200.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrDetailsNotFound indicates the remote catalog has no details for a name.
	ErrDetailsNotFound = errors.New("character details not found")
	// ErrImageUnavailable indicates an image could not be downloaded.
	ErrImageUnavailable = errors.New("image unavailable")
	// ErrUnknownCommand indicates no handler answers to a command token.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrDuplicateAlias indicates two handlers claim the same alias.
	ErrDuplicateAlias = errors.New("duplicate command alias")
)
