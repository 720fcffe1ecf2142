package ai

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// DecodeStrict parses model output into out and validates the result
// against out's `validate` struct tags. Anything that does not fit is an
// error; callers must not fall back to partially decoded data.
func DecodeStrict(input string, out any) error {
	if err := UnmarshalFlexible(input, out); err != nil {
		return err
	}
	if err := Validator().Struct(out); err != nil {
		return fmt.Errorf("model output failed validation: %w", err)
	}
	return nil
}
