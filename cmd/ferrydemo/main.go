package main

import (
	"context"
	"fmt"
	"os"

	"github.com/portside/ferry/bridge"
	"github.com/portside/ferry/demo"
	"github.com/portside/ferry/reactor"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	c, err := demo.NewCtx(demo.Config{})
	if err != nil {
		return err
	}
	defer c.Close()

	f := demo.NewForeign()
	defer f.Close()

	r, err := reactor.NewReactor(reactor.Config{Name: "ferrydemo"})
	if err != nil {
		return err
	}
	r.Start()
	defer r.Close()

	// Await the foreign computation synchronously.
	v, err := bridge.AwaitF64(ctx, f.DotProduct(c))
	if err != nil {
		return err
	}
	fmt.Println(v)

	// Await the same computation via the reactor.
	fut, err := bridge.SpawnF64(r, f.DotProduct(c))
	if err != nil {
		return err
	}
	v, err = bridge.Wait(ctx, fut)
	if err != nil {
		return err
	}
	fmt.Println(v)

	// Drive the native computation through the boundary surface.
	v, err = bridge.AwaitF64(ctx, c.DotProduct())
	if err != nil {
		return err
	}
	fmt.Println(v)

	// Failures decode back to the original message on both sides.
	if _, err = bridge.AwaitF64(ctx, f.NotProduct()); err != nil {
		fmt.Println(err)
	}
	if _, err = bridge.AwaitF64(ctx, c.NotProduct()); err != nil {
		fmt.Println(err)
	}

	// Yield across the boundary repeatedly.
	s, err := bridge.AwaitString(ctx, f.PingPong(c, 0))
	if err != nil {
		return err
	}
	fmt.Println(s)
	return nil
}
