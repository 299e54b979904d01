package gravity

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/san-kum/cowell/pkg/dynamo"
)

// Argument keys.
const (
	KeyMu   = "mu"
	KeyJ2   = "J2"
	KeyReq  = "R_eq"
	KeyRmin = "rmin"
)

// Params is the typed view of the gravity arguments.
type Params struct {
	Mu   float64 `mapstructure:"mu" yaml:"mu" json:"mu"`
	J2   float64 `mapstructure:"J2" yaml:"J2,omitempty" json:"J2,omitempty"`
	Req  float64 `mapstructure:"R_eq" yaml:"R_eq,omitempty" json:"R_eq,omitempty"`
	Rmin float64 `mapstructure:"rmin" yaml:"rmin,omitempty" json:"rmin,omitempty"`
}

// DefaultParams is a point mass in canonical units.
func DefaultParams() Params {
	return Params{Mu: 1, Req: 1}
}

// DecodeParams reads Params from args. Integer leaves are accepted; unknown
// keys are ignored so other force models can share the tree.
func DecodeParams(args dynamo.Args) (Params, error) {
	p := DefaultParams()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Params{}, err
	}
	if err := dec.Decode(map[string]any(args)); err != nil {
		return Params{}, fmt.Errorf("decode gravity args: %w", err)
	}
	if p.Rmin == 0 {
		p.Rmin = p.Req
	}
	return p, p.Validate()
}

func (p Params) Validate() error {
	if p.Mu <= 0 {
		return fmt.Errorf("gravitational parameter must be positive, got %g", p.Mu)
	}
	if p.Req < 0 || p.Rmin < 0 {
		return fmt.Errorf("radii must be non-negative (R_eq=%g, rmin=%g)", p.Req, p.Rmin)
	}
	return nil
}

// Args returns a fresh argument tree for p. Zero J2 and Rmin are left out.
func (p Params) Args() dynamo.Args {
	args := dynamo.Args{KeyMu: p.Mu}
	if p.J2 != 0 {
		args[KeyJ2] = p.J2
		args[KeyReq] = p.Req
	}
	if p.Rmin != 0 {
		args[KeyRmin] = p.Rmin
	}
	return args
}
