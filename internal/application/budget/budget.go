package budget

import (
	"fmt"
	"math"
	"strings"

	"github.com/Knetic/govaluate"
)

// DefaultFormula mirrors the built-in budget policy: more options buy a
// larger budget, growing with the square root of the option count.
const DefaultFormula = "round(5 * sqrt(options))"

var exprFunctions = map[string]govaluate.ExpressionFunction{
	"sqrt": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("sqrt expects 1 argument")
		}
		return math.Sqrt(toFloat(args[0])), nil
	},
	"round": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("round expects 1 argument")
		}
		return math.Round(toFloat(args[0])), nil
	},
	"ceil": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("ceil expects 1 argument")
		}
		return math.Ceil(toFloat(args[0])), nil
	},
	"floor": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("floor expects 1 argument")
		}
		return math.Floor(toFloat(args[0])), nil
	},
}

// Policy computes the starting ticket budget for a poll from its option
// count. The formula is configuration, not an invariant: any expression over
// the `options` variable works, with sqrt/round/ceil/floor available.
type Policy struct {
	expr *govaluate.EvaluableExpression
}

// NewPolicy parses a budget formula. An empty formula uses DefaultFormula.
func NewPolicy(formula string) (*Policy, error) {
	f := strings.TrimSpace(formula)
	if f == "" {
		f = DefaultFormula
	}
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(f, exprFunctions)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket formula %q: %w", f, err)
	}
	return &Policy{expr: expr}, nil
}

// StartingTickets evaluates the formula for the given option count.
func (p *Policy) StartingTickets(optionCount int) (int, error) {
	result, err := p.expr.Evaluate(map[string]interface{}{
		"options": float64(optionCount),
	})
	if err != nil {
		return 0, err
	}
	f, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("ticket formula did not evaluate to a number")
	}
	tickets := int(math.Round(f))
	if tickets <= 0 {
		return 0, fmt.Errorf("ticket formula produced non-positive budget %d", tickets)
	}
	return tickets, nil
}

// Default computes the built-in budget without a configured policy.
func Default(optionCount int) int {
	tickets := int(math.Round(5 * math.Sqrt(float64(optionCount))))
	if tickets < 1 {
		tickets = 1
	}
	return tickets
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return math.NaN()
	}
}
