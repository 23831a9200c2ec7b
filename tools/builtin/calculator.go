// Package builtin provides the stock tools shipped with the module. They
// exist to be wrapped: demos, scenarios, and the MCP surface all guard
// these before running them.
package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/Flames4fun/csl-core/schema"
	"github.com/Flames4fun/csl-core/tools"
)

// Calculator evaluates basic arithmetic expressions.
type Calculator struct {
	*tools.BaseTool
}

// NewCalculator creates a calculator tool.
func NewCalculator() *Calculator {
	toolSchema := tools.CreateToolSchema(
		"Perform basic mathematical calculations",
		map[string]interface{}{
			"expression": tools.StringProperty("Mathematical expression to evaluate (e.g., '2 + 3 * 4')"),
		},
		[]string{"expression"},
	)

	return &Calculator{
		BaseTool: tools.NewBaseTool("calculator", "Perform basic mathematical calculations", toolSchema),
	}
}

// Execute evaluates the expression.
func (c *Calculator) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var params struct {
		Expression string `json:"expression"`
	}

	if err := json.Unmarshal(input, &params); err != nil {
		return nil, schema.NewValidationError("input", string(input), "invalid JSON format")
	}

	expression := strings.TrimSpace(params.Expression)
	if expression == "" {
		return nil, schema.NewValidationError("expression", params.Expression, "expression cannot be empty")
	}

	result, err := evalExpression(expression)
	if err != nil {
		return nil, schema.NewToolError(c.Name(), "evaluate", err)
	}

	return json.Marshal(map[string]interface{}{
		"expression": expression,
		"result":     result,
	})
}

func evalExpression(expr string) (float64, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return 0, fmt.Errorf("invalid expression: %v", err)
	}
	return evalNode(node)
}

func evalNode(node ast.Node) (float64, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		return evalLit(n)
	case *ast.BinaryExpr:
		return evalBinary(n)
	case *ast.UnaryExpr:
		return evalUnary(n)
	case *ast.ParenExpr:
		return evalNode(n.X)
	default:
		return 0, fmt.Errorf("unsupported expression type: %T", n)
	}
}

func evalLit(lit *ast.BasicLit) (float64, error) {
	switch lit.Kind {
	case token.INT:
		val, err := strconv.ParseInt(lit.Value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer: %s", lit.Value)
		}
		return float64(val), nil
	case token.FLOAT:
		val, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid float: %s", lit.Value)
		}
		return val, nil
	default:
		return 0, fmt.Errorf("unsupported literal: %s", lit.Value)
	}
}

func evalBinary(expr *ast.BinaryExpr) (float64, error) {
	left, err := evalNode(expr.X)
	if err != nil {
		return 0, err
	}
	right, err := evalNode(expr.Y)
	if err != nil {
		return 0, err
	}

	switch expr.Op {
	case token.ADD:
		return left + right, nil
	case token.SUB:
		return left - right, nil
	case token.MUL:
		return left * right, nil
	case token.QUO:
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return left / right, nil
	case token.REM:
		if right == 0 {
			return 0, fmt.Errorf("modulo by zero")
		}
		return float64(int64(left) % int64(right)), nil
	default:
		return 0, fmt.Errorf("unsupported operator: %s", expr.Op)
	}
}

func evalUnary(expr *ast.UnaryExpr) (float64, error) {
	operand, err := evalNode(expr.X)
	if err != nil {
		return 0, err
	}
	switch expr.Op {
	case token.SUB:
		return -operand, nil
	case token.ADD:
		return operand, nil
	default:
		return 0, fmt.Errorf("unsupported unary operator: %s", expr.Op)
	}
}
