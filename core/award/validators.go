package award

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/msaada/core"
)

var (
	semesterTag   = "semester"
	semesterText  = "semester must be of form YYYY-S1 or YYYY-S2"
	semesterRegex = regexp.MustCompile(`^\d{4}-S[12]$`)
)

// InitValidators registers award-specific validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(semesterTag, semesterValidation)
	core.RegisterCustomTranslation(validate, translator, semesterTag, semesterText)
}

func semesterValidation(fl validator.FieldLevel) bool {
	return semesterRegex.MatchString(fl.Field().String())
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	na.StudentID = core.CleanString(na.StudentID, true /* lower */)
	na.Semester = core.CleanString(na.Semester)
	na.Name = core.CleanString(na.Name)
	return validate.Struct(na)
}

func (tr *TransitionRequest) Validate(validate *validator.Validate) error {
	tr.Comment = core.CleanString(tr.Comment)
	return validate.Struct(tr)
}
