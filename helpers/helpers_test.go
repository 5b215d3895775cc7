package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	UserCode string `json:"user_code" validate:"required,alphanum,max=20"`
	Platform string `json:"platform" validate:"omitempty,oneof=desktop mobile"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(sample{UserCode: "p1"}))

	errs := Validate(sample{Platform: "tv"})
	assert.ElementsMatch(t, []FieldError{
		{Field: "user_code", Rule: "required"},
		{Field: "platform", Rule: "oneof", Param: "desktop mobile"},
	}, errs)
}

func TestGenerateBranchCode(t *testing.T) {
	code := GenerateBranchCode()
	assert.Len(t, code, 4)
	assert.Equal(t, byte('0'), code[0])
	assert.Len(t, GenerateSecret(32), 32)
}
