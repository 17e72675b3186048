package bondgraph

import (
	"errors"
	"fmt"
)

// Domain errors for model construction and assembly.
var (
	// ErrInvalidPort indicates a connect or disconnect against a port that
	// does not exist, is already bonded or is not part of the model.
	ErrInvalidPort = errors.New("bondgraph: invalid port")

	// ErrModelConsistency indicates contradictory constraints or a
	// coordinate that cannot be eliminated.
	ErrModelConsistency = errors.New("bondgraph: model is inconsistent")

	// ErrUnknownParameter indicates a parameter name the component does not declare.
	ErrUnknownParameter = errors.New("bondgraph: unknown parameter")

	// ErrInvalidDefinition indicates a component definition whose relations
	// cannot be parsed.
	ErrInvalidDefinition = errors.New("bondgraph: invalid component definition")
)

// PortError names the offending endpoint of a failed port operation.
type PortError struct {
	Endpoint string
	Reason   string
}

func (e *PortError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvalidPort, e.Endpoint, e.Reason)
}

func (e *PortError) Unwrap() error {
	return ErrInvalidPort
}

// ConsistencyError carries the model and the violated constraint.
type ConsistencyError struct {
	Model    string
	Relation string
	Reason   string
}

func (e *ConsistencyError) Error() string {
	if e.Relation == "" {
		return fmt.Sprintf("%v: %s: %s", ErrModelConsistency, e.Model, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s (%s = 0)", ErrModelConsistency, e.Model, e.Reason, e.Relation)
}

func (e *ConsistencyError) Unwrap() error {
	return ErrModelConsistency
}
