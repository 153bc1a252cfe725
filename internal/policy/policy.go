// Package policy evaluates configurable fraud and risk rules against the
// facts of a payment attempt. Rules are boolean expressions over named
// parameters (amount, currency, flags, collected variables); the first rule
// that evaluates to true blocks the payment.
package policy

import (
	"fmt"

	"github.com/Knetic/govaluate"
)

// RuleConfig is one configurable rule. Expression must evaluate to a
// boolean; a true result means the rule flags the payment.
type RuleConfig struct {
	Name       string
	Expression string
}

type compiledRule struct {
	name string
	expr *govaluate.EvaluableExpression
}

// Decision is the outcome of evaluating all rules.
type Decision struct {
	// Allowed is false when a rule flagged the payment.
	Allowed bool

	// RuleName names the rule that flagged the payment, if any.
	RuleName string
}

// Enforcer holds compiled rules.
type Enforcer struct {
	rules []compiledRule
}

// NewEnforcer compiles the configured rules. Invalid expressions fail fast.
func NewEnforcer(rules []RuleConfig) (*Enforcer, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rc := range rules {
		expr, err := govaluate.NewEvaluableExpression(rc.Expression)
		if err != nil {
			return nil, fmt.Errorf("policy: compiling rule %q: %w", rc.Name, err)
		}
		compiled = append(compiled, compiledRule{name: rc.Name, expr: expr})
	}
	return &Enforcer{rules: compiled}, nil
}

// Evaluate runs every rule against the parameters. Missing parameters make
// the owning rule fail with an error rather than silently passing.
func (e *Enforcer) Evaluate(params map[string]any) (Decision, error) {
	for _, rule := range e.rules {
		result, err := rule.expr.Evaluate(params)
		if err != nil {
			return Decision{}, fmt.Errorf("policy: evaluating rule %q: %w", rule.name, err)
		}
		flagged, ok := result.(bool)
		if !ok {
			return Decision{}, fmt.Errorf("policy: rule %q did not evaluate to a boolean", rule.name)
		}
		if flagged {
			return Decision{Allowed: false, RuleName: rule.name}, nil
		}
	}
	return Decision{Allowed: true}, nil
}
