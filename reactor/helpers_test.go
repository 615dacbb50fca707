package reactor

import (
	"github.com/portside/ferry/pkg/counter"
)

type countingFuture struct {
	c      *counter.Counter
	limit  int64
	closed *counter.Counter
}

func (f *countingFuture) Poll(ctx Context) error {
	if f.c.Incr() >= f.limit {
		return ErrStop
	}
	ctx.Wake()
	return nil
}

func (f *countingFuture) PollClose(ev CloseEvent) error {
	if f.closed != nil {
		f.closed.Incr()
	}
	return nil
}

type panicFuture struct{}

func (f *panicFuture) Poll(ctx Context) error {
	panic("poll blew up")
}
