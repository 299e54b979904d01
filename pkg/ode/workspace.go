package ode

import (
	"sync"

	"github.com/san-kum/cowell/pkg/dynamo"
)

// workspace holds the stage buffers of one integration.
type workspace struct {
	k    []dynamo.State
	ytmp dynamo.State
	y, f dynamo.State
	y1   dynamo.State
	f1   dynamo.State
	yerr dynamo.State
}

var workspacePool = sync.Pool{
	New: func() interface{} {
		return &workspace{}
	},
}

func getWorkspace(n, stages int) *workspace {
	w := workspacePool.Get().(*workspace)
	w.ensure(n, stages)
	return w
}

func putWorkspace(w *workspace) {
	workspacePool.Put(w)
}

func (w *workspace) ensure(n, stages int) {
	if len(w.ytmp) != n {
		w.ytmp = make(dynamo.State, n)
		w.y = make(dynamo.State, n)
		w.f = make(dynamo.State, n)
		w.y1 = make(dynamo.State, n)
		w.f1 = make(dynamo.State, n)
		w.yerr = make(dynamo.State, n)
		w.k = w.k[:0]
	}
	for len(w.k) < stages {
		w.k = append(w.k, make(dynamo.State, n))
	}
}

// swap makes the candidate step the current state.
func (w *workspace) swap() {
	w.y, w.y1 = w.y1, w.y
	w.f, w.f1 = w.f1, w.f
}
