// Package rulescript turns scenario-defined conditions into placement steps.
//
// A rule rejects a request when its When expression evaluates to true:
//
//	name: no-armour-on-islands
//	when: Requested("armour") > 0 && Production < 2
//	reason: "Armour cannot be raised in {destination}"
package rulescript

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/andrescamacho/placement-go/internal/domain/placement"
)

// Rule is the source form of a scripted step
type Rule struct {
	Name   string `yaml:"name" json:"name"`
	When   string `yaml:"when" json:"when"`
	Reason string `yaml:"reason" json:"reason"`
}

// Step is a compiled Rule. It implements placement.Step.
type Step struct {
	name    string
	reason  string
	program *vm.Program
}

// Compile type-checks the rule's condition against Env
func Compile(r Rule) (*Step, error) {
	if strings.TrimSpace(r.Name) == "" {
		return nil, fmt.Errorf("rule has no name")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return nil, fmt.Errorf("rule %s: reason cannot be empty", r.Name)
	}
	program, err := expr.Compile(r.When, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", r.Name, err)
	}
	return &Step{name: r.Name, reason: r.Reason, program: program}, nil
}

// CompileAll compiles rules in order
func CompileAll(rules []Rule) ([]placement.Step, error) {
	steps := make([]placement.Step, 0, len(rules))
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule %s", r.Name)
		}
		seen[r.Name] = true
		s, err := Compile(r)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func (s *Step) Name() string { return s.name }

// Check runs the condition. Runtime errors abort the request rather than reject it.
func (s *Step) Check(a *placement.Allocator, req placement.Request) (string, error) {
	env := newEnv(a, req)
	result, err := vm.Run(s.program, env)
	if err != nil {
		return "", fmt.Errorf("rule %s: %w", s.name, err)
	}
	if hit, _ := result.(bool); !hit {
		return "", nil
	}
	return strings.NewReplacer(
		"{destination}", env.Destination,
		"{player}", env.Player,
	).Replace(s.reason), nil
}

var _ placement.Step = (*Step)(nil)
