package phparray

import "fmt"

// AllowedConstants is the closed set of bare constant references this
// package will resolve. Anything else is an evaluation error: this
// dialect never executes arbitrary PHP, so there is no general constant
// table to fall back to.
var AllowedConstants = map[string]any{
	"PHP_EOL":     "\n",
	"TYPO3_MODE":  "BE",
	"true":        true,
	"false":       false,
	"null":        nil,
}

// Eval lowers a parsed Node into a map[string]any / []any / scalar value
// tree, resolving ConstRefNode against AllowedConstants and folding
// ConcatNode chains into a single string.
func Eval(n Node) (any, error) {
	switch node := n.(type) {
	case ScalarNode:
		return node.Value, nil
	case ConstRefNode:
		v, ok := AllowedConstants[node.Name]
		if !ok {
			return nil, fmt.Errorf("phparray: unresolvable constant reference %q", node.Name)
		}
		return v, nil
	case ConcatNode:
		var out string
		for _, operand := range node.Operands {
			v, err := Eval(operand)
			if err != nil {
				return nil, err
			}
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("phparray: concatenation operand is not a string (%T)", v)
			}
			out += s
		}
		return out, nil
	case ArrayNode:
		return evalArray(node)
	default:
		return nil, fmt.Errorf("phparray: unsupported node type %T", n)
	}
}

// evalArray decides, PHP-array style, whether the result is associative
// (map[string]any) or a plain list ([]any): an array is a list only if
// every entry is unkeyed, in source order, with no explicit keys at all.
func evalArray(node ArrayNode) (any, error) {
	allUnkeyed := true
	for _, e := range node.Entries {
		if e.Key != nil {
			allUnkeyed = false
			break
		}
	}

	if allUnkeyed {
		list := make([]any, len(node.Entries))
		for i, e := range node.Entries {
			v, err := Eval(e.Value)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil
	}

	out := make(map[string]any, len(node.Entries))
	nextIndex := 0
	for _, e := range node.Entries {
		value, err := Eval(e.Value)
		if err != nil {
			return nil, err
		}

		if e.Key == nil {
			out[fmt.Sprintf("%d", nextIndex)] = value
			nextIndex++
			continue
		}

		keyVal, err := Eval(e.Key)
		if err != nil {
			return nil, err
		}
		out[fmt.Sprintf("%v", keyVal)] = value
	}
	return out, nil
}

// ParseAndEval is the package's main entry point: parse src under limits,
// then evaluate the result to a map[string]any (non-array top-level
// results are wrapped under a "value" key so callers always get a map).
func ParseAndEval(src []byte, limits Limits) (map[string]any, error) {
	node, err := Parse(src, limits)
	if err != nil {
		return nil, err
	}
	v, err := Eval(node)
	if err != nil {
		return nil, err
	}
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	if list, ok := v.([]any); ok {
		out := make(map[string]any, len(list))
		for i, item := range list {
			out[fmt.Sprintf("%d", i)] = item
		}
		return out, nil
	}
	return map[string]any{"value": v}, nil
}
