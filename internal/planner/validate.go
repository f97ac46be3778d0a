package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/focuspulse/internal/model"
)

// ErrInvalidBlock is returned when block input fails validation.
var ErrInvalidBlock = errors.New("invalid block")

// Duration bounds in minutes.
const (
	MinDuration = 15
	MaxDuration = 480
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := ParseClock(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// BlockInput is the user-editable part of a planned block.
type BlockInput struct {
	Title       string `validate:"required,max=100"`
	DayOfWeek   int    `validate:"min=0,max=6"`
	StartTime   string `validate:"required,clock"`
	Duration    int    `validate:"min=15,max=480"`
	IsRecurring bool
}

// BlockPatch carries optional updates; nil fields keep the current value.
type BlockPatch struct {
	Title       *string
	DayOfWeek   *time.Weekday
	StartTime   *string
	Duration    *int
	IsRecurring *bool
}

// Touches reports whether the patch changes the block's schedule.
func (p BlockPatch) Touches() bool {
	return p.DayOfWeek != nil || p.StartTime != nil || p.Duration != nil
}

// InputOf returns the editable fields of b.
func InputOf(b model.PlannedBlock) BlockInput {
	return BlockInput{
		Title:       b.Title,
		DayOfWeek:   int(b.DayOfWeek),
		StartTime:   b.StartTime,
		Duration:    b.Duration,
		IsRecurring: b.IsRecurring,
	}
}

// Apply overlays the patch onto in.
func (p BlockPatch) Apply(in BlockInput) BlockInput {
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.DayOfWeek != nil {
		in.DayOfWeek = int(*p.DayOfWeek)
	}
	if p.StartTime != nil {
		in.StartTime = *p.StartTime
	}
	if p.Duration != nil {
		in.Duration = *p.Duration
	}
	if p.IsRecurring != nil {
		in.IsRecurring = *p.IsRecurring
	}
	return in
}

// Validate trims the input and checks it. The returned error wraps ErrInvalidBlock.
func Validate(in BlockInput) (BlockInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.StartTime = strings.TrimSpace(in.StartTime)
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return in, fmt.Errorf("%w: %s", ErrInvalidBlock, describe(verrs[0]))
		}
		return in, fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}
	return in, nil
}

// Candidate returns the schedule of a validated input.
func (in BlockInput) Candidate() Candidate {
	return Candidate{DayOfWeek: time.Weekday(in.DayOfWeek), StartTime: in.StartTime, Duration: in.Duration}
}

func describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "Title":
		if fe.Tag() == "required" {
			return "title is required"
		}
		return "title must be at most 100 characters"
	case "DayOfWeek":
		return "day of week must be between 0 (Sunday) and 6 (Saturday)"
	case "StartTime":
		return "start time must be HH:MM between 00:00 and 23:59"
	case "Duration":
		return fmt.Sprintf("duration must be between %d and %d minutes", MinDuration, MaxDuration)
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
