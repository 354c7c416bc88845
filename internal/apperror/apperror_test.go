package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFound(t *testing.T) {
	err := NotFound("review", "abc123")

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound() should wrap ErrNotFound")
	}
	if err.Message != "review not found with id abc123" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestValidationFailed(t *testing.T) {
	err := ValidationFailed("content", "content is required")

	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationFailed() should wrap ErrValidation")
	}
	if err.Field != "content" {
		t.Errorf("Field = %q, want %q", err.Field, "content")
	}
	if err.Error() != "content is required" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestUnauthorized(t *testing.T) {
	err := Unauthorized("sign in to leave a review")

	if !errors.Is(err, ErrUnauthorized) {
		t.Error("Unauthorized() should wrap ErrUnauthorized")
	}
}

// Wrapping an AppError with fmt.Errorf("%w") must keep the sentinel
// reachable — the HTTP layer relies on errors.Is through the whole chain.
func TestWrappedChain(t *testing.T) {
	inner := ValidationFailed("stars", "stars must be between 1 and 5")
	outer := fmt.Errorf("creating review: %w", inner)

	if !errors.Is(outer, ErrValidation) {
		t.Error("wrapped AppError lost ErrValidation")
	}

	var appErr *AppError
	if !errors.As(outer, &appErr) {
		t.Fatal("errors.As failed to extract *AppError")
	}
	if appErr.Field != "stars" {
		t.Errorf("Field = %q, want %q", appErr.Field, "stars")
	}
}
