// internal/security/deferred.go
package security

import "sync"

// Deferred is a lazily evaluated security context resolution bound to one
// backing store and one request. Evaluation runs at most once; later calls
// return the memoized result.
type Deferred interface {
	// Get evaluates the resolution on first call and returns the memoized
	// result afterwards. Store I/O failures surface here.
	Get() (*Context, error)

	// IsGenerated reports whether the resolution produced a fresh, empty
	// context because the store had nothing to return. Consistent with Get
	// once either has been called.
	IsGenerated() bool
}

// LoadFunc recovers a security context from a backing store. It returns the
// recovered context, whether the result is generated (nothing was found and
// the context is a fresh empty one), and any store failure.
type LoadFunc func() (*Context, bool, error)

type lazy struct {
	once sync.Once
	load LoadFunc

	ctx       *Context
	generated bool
	err       error
}

// Lazy wraps a recovery function into a memoized Deferred. The function is
// invoked at most once, on first access.
func Lazy(load LoadFunc) Deferred {
	return &lazy{load: load}
}

// Generated returns a Deferred that always reports generated and yields a
// fresh empty context. It stands in for an unconfigured store.
func Generated() Deferred {
	return Lazy(func() (*Context, bool, error) {
		return NewEmptyContext(), true, nil
	})
}

func (l *lazy) eval() {
	l.ctx, l.generated, l.err = l.load()
	if l.ctx == nil {
		// A failed or empty recovery still yields a usable context so
		// downstream consumers never observe nil.
		l.ctx = NewEmptyContext()
		if l.err == nil {
			l.generated = true
		}
	}
}

func (l *lazy) Get() (*Context, error) {
	l.once.Do(l.eval)
	return l.ctx, l.err
}

func (l *lazy) IsGenerated() bool {
	l.once.Do(l.eval)
	return l.generated
}

type composite struct {
	first, second Deferred
}

// Compose combines two deferred resolutions with fallback semantics: the
// first resolution's answer wins whenever it actually found something; the
// second is consulted only when the first is generated. The composite is
// generated only when both children are.
func Compose(first, second Deferred) Deferred {
	return &composite{first: first, second: second}
}

func (c *composite) Get() (*Context, error) {
	ctx, err := c.first.Get()
	if err != nil {
		return nil, err
	}
	if !c.first.IsGenerated() {
		return ctx, nil
	}
	return c.second.Get()
}

func (c *composite) IsGenerated() bool {
	return c.first.IsGenerated() && c.second.IsGenerated()
}

// ChainDeferred folds an ordered list of resolutions left to right into a
// single Deferred: the first non-generated result wins, and the aggregate is
// generated only when every source is. An empty list yields Generated().
func ChainDeferred(ds ...Deferred) Deferred {
	if len(ds) == 0 {
		return Generated()
	}
	chained := ds[0]
	for _, d := range ds[1:] {
		chained = Compose(chained, d)
	}
	return chained
}
