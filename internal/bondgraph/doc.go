// Package bondgraph assembles the equations of bond graph models.
//
// A model is an arena of components joined by bonds. Every component
// contributes local constitutive relations over its own variables:
//
//   - x_i, dx_i: state variables and their derivatives
//   - e_i, f_i: effort and flow at port i, flows oriented into the owner
//   - control variables, named after parameters that carry no value
//
// Junctions (0, 1 and the weighted stoichiometric Y) are components whose
// relations are generated from the ports they currently have.
//
// # Assembly
//
// [Model.SystemRep] maps every local variable into a global coordinate
// vector ordered as
//
//	[dx_0 ... dx_n, e_0, f_0, ..., e_m, f_m, x_0 ... x_n, u_0 ... u_k]
//
// where the ports are the model's exposed ports. Component ports are
// private coordinates that are eliminated by symbolic row reduction and
// substitution. The result is a linear operator over the coordinates plus
// a vector of nonlinear residuals, one row per reduced relation.
//
//	m := bondgraph.Compose(r, l, c, kvl)
//	_ = m.Connect(bondgraph.Implicit(r), bondgraph.Implicit(kvl))
//	rels, err := m.ConstitutiveRelations()
//
// # Thread Safety
//
// Models are single-writer. Nothing is cached, so every derived artifact
// reflects the graph at the time of the call.
package bondgraph
