package model

import "time"

// Character is a reusable cast member owned by a user and shared across scripts.
type Character struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Personality string    `json:"personality,omitempty"`
	Goals       string    `json:"goals,omitempty"`
	Voice       string    `json:"voice,omitempty"`
	Backstory   string    `json:"backstory,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CharacterCreateRequest represents the request body for creating a character
type CharacterCreateRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Personality string `json:"personality" validate:"omitempty,max=2000"`
	Goals       string `json:"goals" validate:"omitempty,max=2000"`
	Voice       string `json:"voice" validate:"omitempty,max=2000"`
	Backstory   string `json:"backstory" validate:"omitempty,max=5000"`
}

// CharacterUpdateRequest represents the request body for updating a character
type CharacterUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Personality *string `json:"personality" validate:"omitempty,max=2000"`
	Goals       *string `json:"goals" validate:"omitempty,max=2000"`
	Voice       *string `json:"voice" validate:"omitempty,max=2000"`
	Backstory   *string `json:"backstory" validate:"omitempty,max=5000"`
}
