package xpath

import (
	"iter"
	"math"
	"slices"
	"strings"

	"github.com/midbel/xquery/xml"
)

// Iterator pulls the items of a sequence one at a time. Next reports false
// once the sequence is exhausted.
type Iterator interface {
	Next() (Item, bool, error)
}

type iteratorFunc func() (Item, bool, error)

func (fn iteratorFunc) Next() (Item, bool, error) {
	return fn()
}

type source struct {
	items  []Item
	err    error
	open   func() Iterator
	stream Iterator
	peek   []Item
	used   bool
}

// Sequence is an ordered and possibly infinite list of items, produced on
// demand. Sequences built from a slice or with Generate can be traversed
// any number of times. Sequences built with Stream can be traversed once:
// the second traversal fails with ErrConsumed. The zero value is the empty
// sequence.
//
// A sequence is not safe for concurrent traversal.
type Sequence struct {
	src *source
}

func Empty() Sequence {
	return Sequence{}
}

func Singleton(item Item) Sequence {
	return FromSlice([]Item{item})
}

func From(items ...Item) Sequence {
	return FromSlice(items)
}

func FromSlice(items []Item) Sequence {
	if len(items) == 0 {
		return Empty()
	}
	src := source{
		items: slices.Clone(items),
	}
	return Sequence{src: &src}
}

// Generate creates a replayable sequence: open is called once per traversal
// and must return a fresh iterator each time.
func Generate(open func() Iterator) Sequence {
	src := source{
		open: open,
	}
	return Sequence{src: &src}
}

// Stream creates a single pass sequence over next.
func Stream(next Iterator) Sequence {
	src := source{
		stream: next,
	}
	return Sequence{src: &src}
}

func Fail(err error) Sequence {
	src := source{
		err: err,
	}
	return Sequence{src: &src}
}

func (s Sequence) replayable() bool {
	return s.src == nil || s.src.stream == nil
}

// Known returns the length of the sequence when it is available without
// producing any item.
func (s Sequence) Known() (int, bool) {
	if s.src == nil {
		return 0, true
	}
	if s.src.open == nil && s.src.stream == nil && s.src.err == nil {
		return len(s.src.items), true
	}
	return 0, false
}

func (s Sequence) Iter() Iterator {
	if s.src == nil {
		return emptyIterator()
	}
	src := s.src
	switch {
	case src.err != nil:
		return failIterator(src.err)
	case src.open != nil:
		return src.open()
	case src.stream != nil:
		if src.used {
			return failIterator(ErrConsumed)
		}
		src.used = true
		return iteratorFunc(func() (Item, bool, error) {
			if len(src.peek) > 0 {
				item := src.peek[0]
				src.peek = src.peek[1:]
				return item, true, nil
			}
			return src.stream.Next()
		})
	default:
		return sliceIterator(src.items)
	}
}

func (s Sequence) All() iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		it := s.Iter()
		for {
			item, ok, err := it.Next()
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok || !yield(item, nil) {
				return
			}
		}
	}
}

// Items produces every item of the sequence.
func (s Sequence) Items() ([]Item, error) {
	if n, ok := s.Known(); ok {
		if n == 0 {
			return nil, nil
		}
		return slices.Clone(s.src.items), nil
	}
	var list []Item
	for item, err := range s.All() {
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, nil
}

func (s Sequence) Len() (int, error) {
	if n, ok := s.Known(); ok {
		return n, nil
	}
	items, err := s.Items()
	return len(items), err
}

// lookahead makes sure that up to n items are available without consuming
// the sequence and returns them.
func (s Sequence) lookahead(n int) ([]Item, error) {
	if s.src == nil {
		return nil, nil
	}
	src := s.src
	switch {
	case src.err != nil:
		return nil, src.err
	case src.stream != nil:
		if src.used {
			return nil, ErrConsumed
		}
		for len(src.peek) < n {
			item, ok, err := src.stream.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			src.peek = append(src.peek, item)
		}
		return src.peek, nil
	case src.open != nil:
		var (
			it   = src.open()
			list []Item
		)
		for len(list) < n {
			item, ok, err := it.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			list = append(list, item)
		}
		return list, nil
	default:
		return src.items[:min(n, len(src.items))], nil
	}
}

func (s Sequence) IsEmpty() (bool, error) {
	list, err := s.lookahead(1)
	return len(list) == 0, err
}

func (s Sequence) IsSingleton() (bool, error) {
	list, err := s.lookahead(2)
	return len(list) == 1, err
}

// First gives the first item of the sequence or nil when it is empty.
func (s Sequence) First() (Item, error) {
	list, err := s.lookahead(1)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// derive builds a sequence whose iterators wrap the iterators of s. The
// result is replayable when s is.
func (s Sequence) derive(wrap func(Iterator) Iterator) Sequence {
	if s.replayable() {
		return Generate(func() Iterator {
			return wrap(s.Iter())
		})
	}
	return Stream(lazyIterator(func() Iterator {
		return wrap(s.Iter())
	}))
}

func (s Sequence) Map(fn func(Item, int) (Item, error)) Sequence {
	return s.derive(func(it Iterator) Iterator {
		var pos int
		return iteratorFunc(func() (Item, bool, error) {
			item, ok, err := it.Next()
			if err != nil || !ok {
				return nil, ok, err
			}
			pos++
			item, err = fn(item, pos)
			return item, err == nil, err
		})
	})
}

func (s Sequence) Filter(keep func(Item, int) (bool, error)) Sequence {
	return s.derive(func(it Iterator) Iterator {
		var pos int
		return iteratorFunc(func() (Item, bool, error) {
			for {
				item, ok, err := it.Next()
				if err != nil || !ok {
					return nil, ok, err
				}
				pos++
				ok, err = keep(item, pos)
				if err != nil {
					return nil, false, err
				}
				if ok {
					return item, true, nil
				}
			}
		})
	})
}

// FlatMap replaces every item of s by the items of the sequence fn returns
// for it.
func (s Sequence) FlatMap(fn func(Item, int) (Sequence, error)) Sequence {
	return s.derive(func(it Iterator) Iterator {
		var (
			pos   int
			inner Iterator
		)
		return iteratorFunc(func() (Item, bool, error) {
			for {
				if inner != nil {
					item, ok, err := inner.Next()
					if err != nil || ok {
						return item, ok, err
					}
					inner = nil
				}
				item, ok, err := it.Next()
				if err != nil || !ok {
					return nil, ok, err
				}
				pos++
				seq, err := fn(item, pos)
				if err != nil {
					return nil, false, err
				}
				inner = seq.Iter()
			}
		})
	})
}

// MapAll calls fn with every item of s. Nothing is produced before the
// result is pulled for the first time.
func (s Sequence) MapAll(fn func([]Item) (Sequence, error)) Sequence {
	return s.derive(func(it Iterator) Iterator {
		var inner Iterator
		return iteratorFunc(func() (Item, bool, error) {
			if inner == nil {
				items, err := drain(it)
				if err != nil {
					return nil, false, err
				}
				res, err := fn(items)
				if err != nil {
					return nil, false, err
				}
				inner = res.Iter()
			}
			return inner.Next()
		})
	})
}

func (s Sequence) Take(n int) Sequence {
	return s.derive(func(it Iterator) Iterator {
		var count int
		return iteratorFunc(func() (Item, bool, error) {
			if count >= n {
				return nil, false, nil
			}
			count++
			return it.Next()
		})
	})
}

// Concat chains sequences one after the other. The result is replayable
// when every part is.
func Concat(seqs ...Sequence) Sequence {
	open := func() Iterator {
		var (
			ix   int
			curr Iterator
		)
		return iteratorFunc(func() (Item, bool, error) {
			for ix < len(seqs) {
				if curr == nil {
					curr = seqs[ix].Iter()
				}
				item, ok, err := curr.Next()
				if err != nil || ok {
					return item, ok, err
				}
				curr = nil
				ix++
			}
			return nil, false, nil
		})
	}
	for _, s := range seqs {
		if !s.replayable() {
			return Stream(lazyIterator(open))
		}
	}
	return Generate(open)
}

// Memoize returns a replayable sequence over s. Items are pulled from s
// only once and kept for the next traversals.
func (s Sequence) Memoize() Sequence {
	if s.replayable() {
		return s
	}
	var (
		cache []Item
		done  bool
		fail  error
		it    = lazyIterator(s.Iter)
	)
	return Generate(func() Iterator {
		var pos int
		return iteratorFunc(func() (Item, bool, error) {
			if pos < len(cache) {
				pos++
				return cache[pos-1], true, nil
			}
			if fail != nil {
				return nil, false, fail
			}
			if done {
				return nil, false, nil
			}
			item, ok, err := it.Next()
			if err != nil {
				fail = err
				return nil, false, err
			}
			if !ok {
				done = true
				return nil, false, nil
			}
			cache = append(cache, item)
			pos++
			return item, true, nil
		})
	})
}

// EffectiveBooleanValue reduces the sequence to a boolean. A sequence
// starting with a node is true, a singleton atomic is converted by its type
// and any other sequence fails with FORG0006.
func (s Sequence) EffectiveBooleanValue() (bool, error) {
	list, err := s.lookahead(2)
	if err != nil {
		return false, err
	}
	switch {
	case len(list) == 0:
		return false, nil
	case isNode(list[0]):
		return true, nil
	case len(list) > 1:
		return false, errBooleanValue()
	}
	return booleanValue(list[0])
}

func booleanValue(item Item) (bool, error) {
	value, ok := item.(Atomic)
	if !ok {
		return false, errBooleanValue()
	}
	switch value.Type().Category() {
	case CategoryBoolean:
		return value.boolean(), nil
	case CategoryString:
		return value.str() != "", nil
	case CategoryNumeric:
		f := value.double()
		if IsSubtypeOf(value.Type(), TypeInteger) {
			return value.integer() != 0, nil
		}
		if IsSubtypeOf(value.Type(), TypeDecimal) {
			return !value.decimal().IsZero(), nil
		}
		return f != 0 && !math.IsNaN(f), nil
	default:
		return false, newError(CodeBooleanValue, "effective boolean value undefined for %s", value.Type())
	}
}

// Atomize replaces nodes by their typed value and arrays by their members.
func (s Sequence) Atomize(facade xml.Facade) Sequence {
	if facade == nil {
		facade = xml.DefaultFacade()
	}
	return s.FlatMap(func(item Item, _ int) (Sequence, error) {
		return atomizeItem(item, facade)
	})
}

func atomizeItem(item Item, facade xml.Facade) (Sequence, error) {
	switch item := item.(type) {
	case Atomic:
		return Singleton(item), nil
	case NodeItem:
		str := facade.StringValue(item.node)
		switch item.node.Type() {
		case xml.TypeComment, xml.TypeInstruction:
			return Singleton(NewString(str)), nil
		default:
			return Singleton(NewUntyped(str)), nil
		}
	case Array:
		var list []Sequence
		for _, m := range item.members {
			list = append(list, m.Atomize(facade))
		}
		return Concat(list...), nil
	default:
		return Sequence{}, typeError("%s can not be atomized", item.Type())
	}
}

// String renders the sequence in a compact form, mostly useful for tests
// and diagnostics.
func (s Sequence) String() string {
	items, err := s.Items()
	if err != nil {
		return "seq(!" + err.Error() + ")"
	}
	var str strings.Builder
	str.WriteString("seq(")
	for i, item := range items {
		if i > 0 {
			str.WriteString(", ")
		}
		switch item := item.(type) {
		case Atomic:
			str.WriteString(item.Type().String())
			str.WriteString("(")
			str.WriteString(item.String())
			str.WriteString(")")
		case NodeItem:
			str.WriteString("node(")
			str.WriteString(item.node.Identity())
			str.WriteString(")")
		case Array:
			str.WriteString("array[")
			for j, m := range item.members {
				if j > 0 {
					str.WriteString(", ")
				}
				str.WriteString(m.String())
			}
			str.WriteString("]")
		}
	}
	str.WriteString(")")
	return str.String()
}

func drain(it Iterator) ([]Item, error) {
	var list []Item
	for {
		item, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return list, nil
		}
		list = append(list, item)
	}
}

func emptyIterator() Iterator {
	return iteratorFunc(func() (Item, bool, error) {
		return nil, false, nil
	})
}

func failIterator(err error) Iterator {
	return iteratorFunc(func() (Item, bool, error) {
		return nil, false, err
	})
}

func sliceIterator(items []Item) Iterator {
	var pos int
	return iteratorFunc(func() (Item, bool, error) {
		if pos >= len(items) {
			return nil, false, nil
		}
		pos++
		return items[pos-1], true, nil
	})
}

// lazyIterator delays the call to open until the first item is requested.
func lazyIterator(open func() Iterator) Iterator {
	var it Iterator
	return iteratorFunc(func() (Item, bool, error) {
		if it == nil {
			it = open()
		}
		return it.Next()
	})
}
