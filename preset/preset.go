// Package preset keeps a catalog of named masks so callers can ask for "cpf"
// instead of repeating "###.###.###-##" everywhere.
package preset

import (
	"strings"

	"github.com/vortex-fintech/go-mask/mask"
)

// Preset is a named mask or mask set.
type Preset struct {
	Name        string   `yaml:"name" json:"name" validate:"required,max=64"`
	Masks       []string `yaml:"masks" json:"masks" validate:"required,min=1,max=16,dive,mask"`
	Raw         bool     `yaml:"raw" json:"raw"`
	Description string   `yaml:"description" json:"description,omitempty" validate:"max=256"`
}

// Pattern returns a single-mask pattern for one mask, a dynamic one otherwise.
func (p Preset) Pattern() mask.Pattern {
	if len(p.Masks) == 1 {
		return mask.Single(p.Masks[0])
	}
	return mask.Dynamic(p.Masks...)
}

// Formatter binds the preset to tokens; nil tokens mean the default table.
func (p Preset) Formatter(tokens mask.TokenTable) mask.Formatter {
	return mask.Formatter{Pattern: p.Pattern(), Raw: p.Raw, Tokens: tokens}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (p Preset) clone() Preset {
	p.Masks = append([]string(nil), p.Masks...)
	return p
}

var builtins = []Preset{
	{Name: "phone-br", Masks: []string{"(##) ####-####", "(##) #####-####"}, Description: "Brazilian landline or mobile number"},
	{Name: "cpf", Masks: []string{"###.###.###-##"}, Description: "Brazilian individual taxpayer number"},
	{Name: "cnpj", Masks: []string{"##.###.###/####-##"}, Description: "Brazilian company registry number"},
	{Name: "cpf-cnpj", Masks: []string{"###.###.###-##", "##.###.###/####-##"}, Description: "CPF or CNPJ chosen by length"},
	{Name: "cep", Masks: []string{"#####-###"}, Description: "Brazilian postal code"},
	{Name: "date", Masks: []string{"##/##/####"}, Description: "Day, month and year"},
	{Name: "time", Masks: []string{"##:##"}, Description: "Hours and minutes"},
	{Name: "card", Masks: []string{"#### #### #### ####"}, Description: "Payment card number"},
	{Name: "plate", Masks: []string{"AAA-####"}, Description: "Vehicle plate, letters upper-cased"},
	{Name: "hex-color", Masks: []string{"!#XXXXXX"}, Description: "Hex color with a literal leading #"},
}

// Builtins returns copies of the presets every registry starts with.
func Builtins() []Preset {
	out := make([]Preset, len(builtins))
	for i, p := range builtins {
		out[i] = p.clone()
	}
	return out
}
