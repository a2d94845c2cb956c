package session

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/typist/internal/model"
)

var validate = validator.New()

// KeystrokeInput is one uploaded key event. Timestamps are epoch seconds.
type KeystrokeInput struct {
	Key            string   `json:"key" validate:"required"`
	DownTS         *float64 `json:"down_ts" validate:"required,gte=0"`
	UpTS           *float64 `json:"up_ts" validate:"required,gte=0"`
	TargetChar     *string  `json:"target_char,omitempty" validate:"omitempty,len=1"`
	PositionInText *int     `json:"position_in_text,omitempty" validate:"omitempty,gte=0"`
	IsCorrection   *string  `json:"is_correction,omitempty" validate:"omitempty,oneof=backspace delete"`
	IsError        *string  `json:"is_error,omitempty" validate:"omitempty,oneof=substitution insertion deletion transposition"`
}

// ValidateBatch checks every event and converts the batch. The first
// invalid event rejects the whole batch.
func ValidateBatch(batch []KeystrokeInput) ([]model.KeystrokeEvent, error) {
	events := make([]model.KeystrokeEvent, 0, len(batch))
	for i, in := range batch {
		if err := validate.Struct(in); err != nil {
			return nil, fmt.Errorf("%w: keystroke %d: %v", model.ErrValidation, i, err)
		}
		if *in.UpTS < *in.DownTS {
			return nil, fmt.Errorf("%w: keystroke %d: up_ts precedes down_ts", model.ErrValidation, i)
		}
		events = append(events, model.KeystrokeEvent{
			Key:            in.Key,
			DownTS:         *in.DownTS,
			UpTS:           *in.UpTS,
			TargetChar:     in.TargetChar,
			PositionInText: in.PositionInText,
			IsCorrection:   in.IsCorrection,
			IsError:        in.IsError,
		})
	}
	return events, nil
}
