package bridge

// Runner schedules one unit of work onto a scheduler. gopool pools
// satisfy it directly; anything else adapts via RunnerFunc.
type Runner interface {
	Go(fn func())
}

// RunnerFunc adapts a scheduling function to Runner.
type RunnerFunc func(fn func())

func (f RunnerFunc) Go(fn func()) { f(fn) }

// GoRunner runs each unit on its own goroutine.
var GoRunner Runner = RunnerFunc(func(fn func()) { go fn() })
