package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// reported by glslangValidator
	GLSLValidationError   Code = 1001
	GLSLValidationWarning Code = 1002
	GLSLValidatorFailed   Code = 1003

	// configuration
	CfgInvalidOption Code = 2001
	CfgLoadFailed    Code = 2002

	// environment
	SysUnsupportedPlatform Code = 3001
	SysValidatorIO         Code = 3002
	SysReadSource          Code = 3003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		GLSLValidationError:    "GLSL validation error",
		GLSLValidationWarning:  "GLSL validation warning",
		GLSLValidatorFailed:    "GLSL validation failed",
		CfgInvalidOption:       "Invalid configuration option",
		CfgLoadFailed:          "Configuration could not be loaded",
		SysUnsupportedPlatform: "Platform not supported",
		SysValidatorIO:         "Validator could not be run",
		SysReadSource:          "Shader source could not be read",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("GLSL%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SYS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
