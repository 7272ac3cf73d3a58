package schema

import (
	"fmt"
	"strings"
)

// CharacterID identifies a character record within the store.
type CharacterID int

// Character is a single catalog entry.
type Character struct {
	ID             CharacterID `json:"id"`
	Name           string      `json:"name"`
	Type           string      `json:"type"`
	Health         int         `json:"health"`
	Attack         int         `json:"attack"`
	ImageURL       string      `json:"image_url"`
	LocalImagePath string      `json:"local_image_path"`
}

// HasLocalImage reports whether the character image is cached on disk.
func (c Character) HasLocalImage() bool {
	return c.LocalImagePath != ""
}

// Validate checks the fields a record must carry before it is stored.
func (c Character) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidCharacter)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCharacter)
	}
	if c.Health <= 0 {
		return fmt.Errorf("%w: health must be positive", ErrInvalidCharacter)
	}
	if c.Attack <= 0 {
		return fmt.Errorf("%w: attack must be positive", ErrInvalidCharacter)
	}
	return nil
}
