package pxasync

import (
	"fmt"
	"runtime/debug"
)

type panicstack []panicitem

type panicitem struct {
	value any
	stack []byte
}

func (ps *panicstack) Try(f func()) (ok bool) {
	defer func() {
		if !ok {
			v := recover()
			if v == nil {
				panic("pxasync: pxasync does not support runtime.Goexit()")
			}
			*ps = append(*ps, panicitem{v, debug.Stack()})
		}
	}()
	f()
	return true
}

// Repanic panics with a [*TaskPanic] for the task at index, if ps is not
// empty.
func (ps panicstack) Repanic(index int) {
	if len(ps) != 0 {
		p := ps[len(ps)-1]
		panic(&TaskPanic{Index: index, Value: p.value, Stack: p.stack})
	}
}

// A TaskPanic is the value [Executor.Run] panics with when a task panics.
type TaskPanic struct {
	Index int    // insertion index of the task
	Value any    // value the task panicked with
	Stack []byte // stack trace captured where the task panicked
}

func (p *TaskPanic) Error() string {
	return fmt.Sprintf("pxasync: task %d panicked: %v\n\n%s", p.Index, p.Value, p.Stack)
}

// Unwrap returns the panic value if it is an error.
func (p *TaskPanic) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}
	return nil
}
