// Copyright (C) 2026, SilverKit Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package micro

import (
	"context"
	"errors"
	"time"
)

// Greeter is the interface-typed reference target used across tests.
type Greeter interface {
	Greet(name string) string
}

// The greeters carry a field so every allocation has a distinct address;
// tests rely on instance identity.
type EnglishGreeter struct{ Punct string }

func (g *EnglishGreeter) Greet(name string) string { return "Hello, " + name + g.Punct }

type CzechGreeter struct{ Punct string }

func (g *CzechGreeter) Greet(name string) string { return "Ahoj, " + name + g.Punct }

// greeterChain is a method-bearing slice type; its instances have no
// comparable identity.
type greeterChain []Greeter

func (c greeterChain) Greet(name string) string {
	var out string
	for _, g := range c {
		out += g.Greet(name)
	}
	return out
}

var errCalcBroken = errors.New("calculator is broken")

// calcService exercises the dispatcher's method shapes.
type calcService struct{}

func (s *calcService) Add(a, b int) int { return a + b }

func (s *calcService) Sum(nums ...int) int {
	total := 0
	for _, n := range nums {
		total += n
	}
	return total
}

func (s *calcService) Pair() (int, string) { return 42, "answer" }

func (s *calcService) Ping() {}

func (s *calcService) Fail() error { return errCalcBroken }

func (s *calcService) Boom() { panic("kaboom") }

func (s *calcService) Slow() string {
	time.Sleep(200 * time.Millisecond)
	return "done"
}

func (s *calcService) Echo(ctx context.Context, msg string) string {
	if ctx == nil {
		return ""
	}
	return msg
}
