package story

import (
	"github.com/go-playground/validator/v10"

	"github.com/datastorylab/showtell/core"
)

// NewStory is the validated input of the Input -> Analysis transition.
type NewStory struct {
	StudentName string `json:"student_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Title       string `json:"title" validate:"required"`
	Story       string `json:"story" validate:"required"`
}

// Clean normalizes the fields; email is the case-insensitive student key.
func (ns *NewStory) Clean() {
	ns.StudentName = core.CleanString(ns.StudentName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Title = core.CleanString(ns.Title)
	ns.Story = core.CleanString(ns.Story)
}

func (ns *NewStory) Validate(validate *validator.Validate) error {
	ns.Clean()
	return validate.Struct(ns)
}
