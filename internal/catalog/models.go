package catalog

import (
	"github.com/san-kum/bondgraph/internal/bondgraph"
	"github.com/san-kum/bondgraph/internal/library"
)

// wiring collects components and bonds, keeping the first error.
type wiring struct {
	lib *library.Registry
	m   *bondgraph.Model
	err error
}

func newWiring(lib *library.Registry) *wiring {
	return &wiring{lib: lib, m: bondgraph.NewModel("")}
}

func (w *wiring) add(typ string, value any) *bondgraph.Component {
	if w.err != nil {
		return nil
	}
	var opts []library.Option
	if value != nil {
		opts = append(opts, library.WithValue(value))
	}
	c, err := w.lib.New(typ, opts...)
	if err != nil {
		w.err = err
		return nil
	}
	w.m.Add(c)
	return c
}

func (w *wiring) connect(a, b bondgraph.Endpoint) {
	if w.err != nil {
		return
	}
	w.err = w.m.Connect(a, b)
}

func (w *wiring) done() (*bondgraph.Model, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.m, nil
}

// rlc wires unit R, I and C in parallel on a 0-junction. The inductor is
// added first so x_0 is its flux and x_1 the capacitor charge.
func rlc(w *wiring) *bondgraph.Component {
	r := w.add("R", 1)
	l := w.add("I", 1)
	c := w.add("C", 1)
	kvl := w.add("0", nil)
	if w.err != nil {
		return nil
	}
	w.connect(bondgraph.Implicit(r), bondgraph.Implicit(kvl))
	w.connect(bondgraph.Implicit(l), bondgraph.Implicit(kvl))
	w.connect(bondgraph.Implicit(c), bondgraph.Implicit(kvl))
	return kvl
}

func RLC(lib *library.Registry) (*bondgraph.Model, error) {
	w := newWiring(lib)
	rlc(w)
	return w.done()
}

// DrivenRLC exposes the RLC junction as external port 0.
func DrivenRLC(lib *library.Registry) (*bondgraph.Model, error) {
	w := newWiring(lib)
	kvl := rlc(w)
	if w.err == nil {
		port := w.m.MakePort()
		w.connect(w.m.Exposed(port), bondgraph.Implicit(kvl))
	}
	return w.done()
}

// TransformerLC couples a capacitor and an inductor through a 1/2 ratio
// transformer.
func TransformerLC(lib *library.Registry) (*bondgraph.Model, error) {
	w := newWiring(lib)
	tf := w.add("TF", 0.5)
	l := w.add("I", 1)
	c := w.add("C", 1)
	if w.err == nil {
		w.connect(bondgraph.Implicit(l), bondgraph.At(tf, 1))
		w.connect(bondgraph.Implicit(c), bondgraph.At(tf, 0))
	}
	return w.done()
}

// SourceCapacitor drives a unit capacitor from a unit effort source.
func SourceCapacitor(lib *library.Registry) (*bondgraph.Model, error) {
	w := newWiring(lib)
	se := w.add("Se", 1)
	c := w.add("C", 1)
	if w.err == nil {
		w.connect(bondgraph.Implicit(se), bondgraph.Implicit(c))
	}
	return w.done()
}
