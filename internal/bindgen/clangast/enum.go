package clangast

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// enumerators evaluates every constant of an EnumDecl. Constants without an
// initializer take the previous value plus one, starting at zero.
func enumerators(n *node) ([]Enumerator, error) {
	var out []Enumerator
	known := make(map[string]int64)
	next, nextUnsigned := int64(0), false
	for _, c := range n.Inner {
		if c.Kind != "EnumConstantDecl" {
			continue
		}
		value, unsigned := next, nextUnsigned && next < 0
		if len(c.Inner) > 0 {
			v, err := evalConst(c.Inner[0], known)
			if err != nil {
				return nil, fmt.Errorf("enumerator %s: %w", c.Name, err)
			}
			value, unsigned = v, v < 0 && unsignedExpr(c.Inner[0])
		}
		out = append(out, Enumerator{Name: c.Name, Value: value, Unsigned: unsigned})
		known[c.Name] = value
		next = value + 1
		nextUnsigned = unsigned || value == math.MaxInt64
	}
	return out, nil
}

// evalConst evaluates an integer constant expression. Clang usually wraps the
// initializer in a ConstantExpr carrying the folded value; older dumps only carry
// the expression tree, which is folded here for the operators enum headers use.
func evalConst(n *node, known map[string]int64) (int64, error) {
	if v, ok, err := literalValue(n); ok || err != nil {
		return v, err
	}
	switch n.Kind {
	case "ConstantExpr", "ParenExpr", "ImplicitCastExpr", "CStyleCastExpr":
		if len(n.Inner) == 0 {
			return 0, fmt.Errorf("empty %s", n.Kind)
		}
		return evalConst(n.Inner[0], known)
	case "DeclRefExpr":
		if n.ReferencedDecl != nil {
			if v, ok := known[n.ReferencedDecl.Name]; ok {
				return v, nil
			}
			return 0, fmt.Errorf("reference to unknown constant %s", n.ReferencedDecl.Name)
		}
	case "UnaryOperator":
		if len(n.Inner) == 1 {
			v, err := evalConst(n.Inner[0], known)
			if err != nil {
				return 0, err
			}
			switch n.Opcode {
			case "-":
				return -v, nil
			case "+":
				return v, nil
			case "~":
				return ^v, nil
			case "!":
				if v == 0 {
					return 1, nil
				}
				return 0, nil
			}
		}
	case "BinaryOperator":
		if len(n.Inner) == 2 {
			a, err := evalConst(n.Inner[0], known)
			if err != nil {
				return 0, err
			}
			b, err := evalConst(n.Inner[1], known)
			if err != nil {
				return 0, err
			}
			return binary(n.Opcode, a, b)
		}
	}
	return 0, fmt.Errorf("cannot evaluate %s %s", n.Kind, n.Opcode)
}

func binary(op string, a, b int64) (int64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/", "%":
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		if op == "/" {
			return a / b, nil
		}
		return a % b, nil
	case "<<":
		return a << uint64(b), nil
	case ">>":
		return a >> uint64(b), nil
	case "|":
		return a | b, nil
	case "&":
		return a & b, nil
	case "^":
		return a ^ b, nil
	}
	return 0, fmt.Errorf("unsupported operator %q", op)
}

// unsignedExpr reports whether an initializer has an unsigned type or is a
// literal too large for int64.
func unsignedExpr(n *node) bool {
	if n.Type != nil && (strings.HasPrefix(n.Type.QualType, "unsigned") || strings.HasPrefix(n.Type.DesugaredQualType, "unsigned")) {
		return true
	}
	if len(n.Value) == 0 {
		return false
	}
	_, err := strconv.ParseInt(strings.Trim(string(n.Value), `"`), 10, 64)
	return err != nil
}

// literalValue reads the "value" field of ConstantExpr, IntegerLiteral and
// CharacterLiteral nodes. It is a JSON string for the first two and a number for
// character literals.
func literalValue(n *node) (int64, bool, error) {
	switch n.Kind {
	case "ConstantExpr", "IntegerLiteral", "CharacterLiteral":
	default:
		return 0, false, nil
	}
	if len(n.Value) == 0 {
		return 0, false, nil
	}
	raw := strings.Trim(string(n.Value), `"`)
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, true, nil
	}
	u, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("invalid integer value %s", raw)
	}
	return int64(u), true, nil
}
