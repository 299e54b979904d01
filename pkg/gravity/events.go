package gravity

import "github.com/san-kum/cowell/pkg/dynamo"

// RadiusBelow fires when |r| drops to rmin (falling back to R_eq, then 1).
func RadiusBelow() dynamo.Event {
	return dynamo.NewEvent("radius_below", radiusMargin)
}

func radiusMargin(t float64, y dynamo.State, args dynamo.Args) float64 {
	rmin, ok := args.Float(KeyRmin)
	if !ok {
		rmin = args.FloatOr(KeyReq, 1)
	}
	return y.Position().Norm() - rmin
}
