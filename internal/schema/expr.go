package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Expr is a raw default expression. Structured documents may carry it as a
// string, a number or a boolean; it is always emitted verbatim.
type Expr string

// UnmarshalJSON accepts strings, numbers, booleans and null.
// false and null mean "no default".
func (e *Expr) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*e = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = Expr(s)
		return nil
	case bytes.Equal(data, []byte("true")):
		*e = "true"
		return nil
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*e = Expr(n.String())
		return nil
	default:
		return fmt.Errorf("default must be a string, number or boolean, got %s", data)
	}
}

// UnmarshalYAML applies the same rules as UnmarshalJSON to scalar nodes.
func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: default must be a scalar", node.Line)
	}
	switch node.Tag {
	case "!!null":
		*e = ""
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		if b {
			*e = "true"
		} else {
			*e = ""
		}
	default:
		*e = Expr(node.Value)
	}
	return nil
}
