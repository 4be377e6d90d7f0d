package cli

import (
	"regexp"

	"github.com/eoscanada/eos-go"
	"gopkg.in/go-playground/validator.v9"
)

var (
	eosNameRegex   = regexp.MustCompile("^[a-z1-5.]{1,12}$")
	eosSymbolRegex = regexp.MustCompile("^[A-Z]{1,7}$")
)

type Validator struct {
	validator *validator.Validate
}

func NewValidator() *Validator {
	v := &Validator{
		validator: validator.New(),
	}

	v.RegisterAlias("optional", "omitempty")

	v.RegisterValidation("eos_name", isEOSName)
	v.RegisterValidation("eos_symbol", isEOSSymbol)

	return v
}

func (v *Validator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func (v *Validator) RegisterValidation(tag string, fn validator.Func) {
	_ = v.validator.RegisterValidation(tag, fn)
}

func (v *Validator) RegisterAlias(alias string, tags string) {
	v.validator.RegisterAlias(alias, tags)
}

// isEOSName accepts names which survive the 64 bit encoding unchanged.
// Trailing dots are dropped by the encoding.
func isEOSName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !eosNameRegex.MatchString(s) {
		return false
	}
	n, err := eos.StringToName(s)
	if err != nil {
		return false
	}
	return eos.NameToString(n) == s
}

func isEOSSymbol(fl validator.FieldLevel) bool {
	return eosSymbolRegex.MatchString(fl.Field().String())
}
