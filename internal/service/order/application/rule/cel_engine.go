// internal/service/order/application/rule/cel_engine.go
package rule

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Engine 把一条配置化的对账规则编译为可复用的 CEL 程序
// 规则表达式的求值对象是订单事实，例如:
//
//	status == 0 && ageMinutes >= threshold
//
// 这是一个典型的适配器：把第三方表达式引擎适配到对账规则这一个窄用途上，
// 阈值调整、规则增减都只改配置，不改代码
type Engine struct {
	expression string
	program    cel.Program
}

// NewEngine 编译一条规则表达式，语法错误在启动期即暴露
func NewEngine(expression string) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("status", cel.IntType),
		cel.Variable("orderType", cel.IntType),
		cel.Variable("ageMinutes", cel.IntType),
		cel.Variable("ageHours", cel.IntType),
		cel.Variable("ageDays", cel.IntType),
		cel.Variable("holdsLocker", cel.BoolType),
		cel.Variable("threshold", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cel env: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid rule expression %q: %w", expression, issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule program: %w", err)
	}

	return &Engine{expression: expression, program: program}, nil
}

// Eval 对一组订单事实求值，返回该订单是否命中规则
func (e *Engine) Eval(fact map[string]interface{}) (bool, error) {
	out, _, err := e.program.Eval(fact)
	if err != nil {
		return false, fmt.Errorf("rule %q evaluation failed: %w", e.expression, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q did not evaluate to a boolean", e.expression)
	}
	return matched, nil
}
