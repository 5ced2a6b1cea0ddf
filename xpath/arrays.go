package xpath

import (
	"slices"
)

type arrayConstructor struct {
	info
	square  bool
	members []Expr
}

// NewArrayConstructor builds [a, b, ...] when square is set: each expression
// gives one member. Otherwise it builds array { expr }: every item of the
// expressions becomes a member of its own.
func NewArrayConstructor(square bool, members ...Expr) Expr {
	return arrayConstructor{
		info:    combine(Specificity{}, Sorted, members...),
		square:  square,
		members: members,
	}
}

func (a arrayConstructor) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	var list []Sequence
	for _, e := range a.members {
		seq, err := e.Evaluate(ctx, params)
		if err != nil {
			return Sequence{}, err
		}
		if a.square {
			list = append(list, seq.Memoize())
			continue
		}
		items, err := seq.Items()
		if err != nil {
			return Sequence{}, err
		}
		for _, item := range items {
			list = append(list, Singleton(item))
		}
	}
	return Singleton(NewArray(list...)), nil
}

func arrayArg(seq Sequence) (Array, error) {
	item, err := seq.First()
	if err != nil {
		return Array{}, err
	}
	arr, ok := item.(Array)
	if !ok {
		return arr, typeError("array(*) expected")
	}
	return arr, nil
}

func arrayResult(members []Sequence) (Sequence, error) {
	return Singleton(NewArray(members...)), nil
}

func errArrayIndex() error {
	return newError(CodeArrayIndex, "array position out of bounds.")
}

func callArraySize(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	arr, err := arrayArg(args[0])
	if err != nil {
		return Sequence{}, err
	}
	return Singleton(NewInteger(int64(arr.Len()))), nil
}

func callArrayGet(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	arr, err := arrayArg(args[0])
	if err != nil {
		return Sequence{}, err
	}
	pos, err := integerArg(args[1])
	if err != nil {
		return Sequence{}, err
	}
	return arr.Get(pos)
}

func callArrayPut(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	arr, err := arrayArg(args[0])
	if err != nil {
		return Sequence{}, err
	}
	pos, err := integerArg(args[1])
	if err != nil {
		return Sequence{}, err
	}
	if pos < 1 || pos > arr.Len() {
		return Sequence{}, errArrayIndex()
	}
	members := slices.Clone(arr.Members())
	members[pos-1] = args[2]
	return arrayResult(members)
}

func callArrayAppend(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	arr, err := arrayArg(args[0])
	if err != nil {
		return Sequence{}, err
	}
	members := slices.Clone(arr.Members())
	return arrayResult(append(members, args[1]))
}

// callArraySubarray accepts a start equal to size+1: the result is then the
// empty array.
func callArraySubarray(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	arr, err := arrayArg(args[0])
	if err != nil {
		return Sequence{}, err
	}
	start, err := integerArg(args[1])
	if err != nil {
		return Sequence{}, err
	}
	if start < 1 || start > arr.Len()+1 {
		return Sequence{}, errArrayIndex()
	}
	length := arr.Len() - start + 1
	if len(args) > 2 {
		if length, err = integerArg(args[2]); err != nil {
			return Sequence{}, err
		}
		if length < 0 {
			return Sequence{}, newError(CodeArrayLength, "negative array length.")
		}
		if start+length > arr.Len()+1 {
			return Sequence{}, errArrayIndex()
		}
	}
	members := arr.Members()[start-1 : start-1+length]
	return arrayResult(slices.Clone(members))
}

func callArrayRemove(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	arr, err := arrayArg(args[0])
	if err != nil {
		return Sequence{}, err
	}
	drop := make(map[int]struct{})
	for item, err := range args[1].All() {
		if err != nil {
			return Sequence{}, err
		}
		pos, err := integerArg(Singleton(item))
		if err != nil {
			return Sequence{}, err
		}
		if pos < 1 || pos > arr.Len() {
			return Sequence{}, errArrayIndex()
		}
		drop[pos-1] = struct{}{}
	}
	var members []Sequence
	for i, m := range arr.Members() {
		if _, ok := drop[i]; !ok {
			members = append(members, m)
		}
	}
	return arrayResult(members)
}

func callArrayInsertBefore(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	arr, err := arrayArg(args[0])
	if err != nil {
		return Sequence{}, err
	}
	pos, err := integerArg(args[1])
	if err != nil {
		return Sequence{}, err
	}
	if pos < 1 || pos > arr.Len()+1 {
		return Sequence{}, errArrayIndex()
	}
	members := slices.Insert(slices.Clone(arr.Members()), pos-1, args[2])
	return arrayResult(members)
}

func callArrayHead(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	arr, err := arrayArg(args[0])
	if err != nil {
		return Sequence{}, err
	}
	if arr.Len() == 0 {
		return Sequence{}, errArrayIndex()
	}
	return arr.Members()[0], nil
}

func callArrayTail(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	arr, err := arrayArg(args[0])
	if err != nil {
		return Sequence{}, err
	}
	if arr.Len() == 0 {
		return Sequence{}, errArrayIndex()
	}
	return arrayResult(slices.Clone(arr.Members()[1:]))
}

func callArrayReverse(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	arr, err := arrayArg(args[0])
	if err != nil {
		return Sequence{}, err
	}
	members := slices.Clone(arr.Members())
	slices.Reverse(members)
	return arrayResult(members)
}

func callArrayJoin(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	var members []Sequence
	for item, err := range args[0].All() {
		if err != nil {
			return Sequence{}, err
		}
		arr, ok := item.(Array)
		if !ok {
			return Sequence{}, typeError("array(*) expected")
		}
		members = append(members, arr.Members()...)
	}
	return arrayResult(members)
}

// callArrayFlatten replaces every array, at any depth, by its members.
func callArrayFlatten(_ Context, _ *Parameters, args []Sequence) (Sequence, error) {
	return flatten(args[0]), nil
}

func flatten(seq Sequence) Sequence {
	return seq.FlatMap(func(item Item, _ int) (Sequence, error) {
		arr, ok := item.(Array)
		if !ok {
			return Singleton(item), nil
		}
		var list []Sequence
		for _, m := range arr.Members() {
			list = append(list, flatten(m))
		}
		return Concat(list...), nil
	})
}
