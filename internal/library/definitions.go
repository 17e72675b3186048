package library

import (
	"github.com/san-kum/bondgraph/internal/bondgraph"
	"github.com/san-kum/bondgraph/internal/symbolic"
)

// Library names.
const (
	Base    = "base"
	BioChem = "BioChem"
)

func onePort() []bondgraph.Port  { return []bondgraph.Port{{Index: 0}} }
func twoPorts() []bondgraph.Port { return []bondgraph.Port{{Index: 0}, {Index: 1}} }

var baseDefinitions = []bondgraph.Definition{
	{
		Type: "R", Description: "Generalised linear resistor",
		Ports: onePort(), Params: []string{"r"},
		Relations: []string{"e_0 - r*f_0"},
	},
	{
		Type: "C", Description: "Generalised linear capacitor",
		Ports: onePort(), Params: []string{"C"}, States: 1,
		Relations: []string{"x_0 - C*e_0", "dx_0 - f_0"},
	},
	{
		Type: "I", Description: "Generalised linear inductor",
		Ports: onePort(), Params: []string{"L"}, States: 1,
		Relations: []string{"x_0 - L*f_0", "dx_0 - e_0"},
	},
	{
		Type: "Se", Description: "Effort source",
		Ports: onePort(), Params: []string{"e"},
		Relations: []string{"e_0 - e"},
	},
	{
		Type: "Sf", Description: "Flow source",
		Ports: onePort(), Params: []string{"f"},
		Relations: []string{"f_0 + f"},
	},
	{
		Type: "TF", Description: "Linear transformer",
		Ports: twoPorts(), Params: []string{"r"},
		Relations: []string{"e_1 - r*e_0", "f_0 + r*f_1"},
	},
	{
		Type: "GY", Description: "Linear gyrator",
		Ports: twoPorts(), Params: []string{"r"},
		Relations: []string{"e_1 + r*f_0", "e_0 - r*f_1"},
	},
	{Type: "0", Description: "Equal effort junction", Kind: bondgraph.ZeroJunction},
	{Type: "1", Description: "Equal flow junction", Kind: bondgraph.OneJunction},
}

var bioChemDefinitions = []bondgraph.Definition{
	{
		Type: "Ce", Description: "Concentration of chemical species",
		Ports: onePort(), Params: []string{"k", "R", "T"}, States: 1,
		Relations: []string{"e_0 - R*T*log(k*x_0)", "f_0 - dx_0"},
	},
	{
		Type: "Re", Description: "Biochemical reaction",
		Ports: twoPorts(), Params: []string{"r", "R", "T"},
		Relations: []string{"f_0 + f_1", "f_0 - r*(exp(e_0/(R*T)) - exp(e_1/(R*T)))"},
	},
	{
		Type: "Y", Description: "Stoichiometric junction",
		Kind:  bondgraph.StoichiometricJunction,
		Ports: []bondgraph.Port{{Index: 0, Name: "Complex", Weight: symbolic.Int(-1)}},
	},
}
