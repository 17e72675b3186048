// Package export writes assembled systems as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/san-kum/bondgraph/internal/bondgraph"
)

type Variable struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
	Local string `json:"local"`
}

type Data struct {
	Model     string            `json:"model"`
	Coords    []string          `json:"coords"`
	Relations []string          `json:"relations"`
	Linear    [][]string        `json:"linear"`
	Nonlinear []string          `json:"nonlinear"`
	States    []Variable        `json:"states"`
	Controls  []Variable        `json:"controls"`
	Params    map[string]string `json:"params,omitempty"`
}

// FromModel assembles m and captures the result.
func FromModel(m *bondgraph.Model) (*Data, error) {
	sys, err := m.SystemRep()
	if err != nil {
		return nil, err
	}
	data := &Data{
		Model:     m.String(),
		Coords:    make([]string, len(sys.Coords)),
		Linear:    make([][]string, sys.Linear.Rows()),
		Nonlinear: make([]string, len(sys.Nonlinear)),
	}
	for i, c := range sys.Coords {
		data.Coords[i] = c.String()
	}
	for _, r := range sys.Relations() {
		data.Relations = append(data.Relations, r.String())
	}
	for i := range data.Linear {
		row := sys.Linear.Row(i)
		data.Linear[i] = make([]string, len(row))
		for j, v := range row {
			data.Linear[i][j] = v.String()
		}
		data.Nonlinear[i] = sys.Nonlinear[i].String()
	}

	b := m.BasisVectors()
	for _, s := range b.States {
		data.States = append(data.States, Variable{Name: s.X.String(), Owner: s.OwnerName, Local: s.Local})
	}
	for _, u := range b.Controls {
		data.Controls = append(data.Controls, Variable{Name: u.U.String(), Owner: u.OwnerName, Local: u.Local})
	}
	if params := m.Params(); len(params) > 0 {
		data.Params = make(map[string]string, len(params))
		for _, p := range params {
			data.Params[p.Component.Name()+"."+p.Name] = p.Value.String()
		}
	}
	return data, nil
}

func WriteJSON(w io.Writer, data *Data) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV writes the augmented matrix: one column per coordinate followed
// by the nonlinear part, one row per relation.
func WriteCSV(w io.Writer, data *Data) error {
	cw := csv.NewWriter(w)
	header := append(append([]string(nil), data.Coords...), "nonlinear")
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, row := range data.Linear {
		record := append(append([]string(nil), row...), data.Nonlinear[i])
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
