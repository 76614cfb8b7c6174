package registry

import "strconv"

// Locals hands out local variable names inside one generated function body.
// Every stem is numbered from 1, skipping names already taken.
type Locals struct {
	taken map[string]struct{}
	last  map[string]int
}

// NewLocals creates a Locals in which the given names are already taken.
func NewLocals(taken ...string) *Locals {
	l := &Locals{
		taken: make(map[string]struct{}, len(taken)),
		last:  make(map[string]int),
	}

	for _, name := range taken {
		l.taken[name] = struct{}{}
	}

	return l
}

// Next returns the next free name for stem: stem1, stem2, ...
func (l *Locals) Next(stem string) string {
	for {
		l.last[stem]++
		name := stem + strconv.Itoa(l.last[stem])

		if _, ok := l.taken[name]; !ok {
			l.taken[name] = struct{}{}
			return name
		}
	}
}
