package compiler

import (
	"github.com/roach88/cfdl/internal/ast"
	"github.com/roach88/cfdl/internal/ir"
)

// convertValue lifts an AST value into the IR value model. Identifiers and
// strings both become IRString. Numbers written without a fraction or
// exponent stay integral.
func convertValue(v ast.Value) ir.IRValue {
	switch val := v.(type) {
	case nil:
		return ir.IRNull{}
	case ast.Null:
		return ir.IRNull{}
	case ast.String:
		return ir.IRString(val)
	case ast.Ident:
		return ir.IRString(val)
	case ast.Number:
		if val.IsInt {
			return ir.IRInt(val.Int)
		}
		return ir.IRFloat(val.Float)
	case ast.Bool:
		return ir.IRBool(val)
	case ast.List:
		out := make(ir.IRArray, 0, len(val))
		for _, elem := range val {
			out = append(out, convertValue(elem))
		}
		return out
	case *ast.Map:
		out := ir.IRObject{}
		if val == nil {
			return out
		}
		for _, e := range val.Entries {
			out[e.Key] = convertValue(e.Value)
		}
		return out
	default:
		return ir.IRNull{}
	}
}

// typeName describes a value for error messages.
func typeName(v ir.IRValue) string {
	switch v.(type) {
	case nil, ir.IRNull:
		return "null"
	case ir.IRString:
		return "string"
	case ir.IRInt, ir.IRFloat:
		return "number"
	case ir.IRBool:
		return "boolean"
	case ir.IRArray:
		return "list"
	case ir.IRObject:
		return "object"
	default:
		return "unknown"
	}
}
