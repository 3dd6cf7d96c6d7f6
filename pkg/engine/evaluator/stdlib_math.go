package evaluator

import "math"

func mathBuiltins() []*Builtin {
	return []*Builtin{
		{Name: "round", MinArgs: 2, MaxArgs: 2, Fn: mathRound},
		{Name: "sum", MinArgs: 1, MaxArgs: -1, Fn: mathSum},
		{Name: "avg", MinArgs: 1, MaxArgs: -1, Fn: mathAvg},
		{Name: "min", MinArgs: 1, MaxArgs: -1, Fn: mathMin},
		{Name: "max", MinArgs: 1, MaxArgs: -1, Fn: mathMax},
		{Name: "percentage", MinArgs: 2, MaxArgs: 2, Fn: mathPercentage},
	}
}

func mathRound(args ...Object) Object {
	x, ok := numericValue(args[0])
	if !ok {
		return typeError("expected a number, got %s", args[0].Type())
	}
	digits, ok := args[1].(*Integer)
	if !ok {
		return typeError("digits must be an integer, got %s", args[1].Type())
	}
	shift := math.Pow(10, float64(digits.Value))
	return &Float{Value: math.Round(x*shift) / shift}
}

func mathSum(args ...Object) Object {
	total, err := foldNumbers(args)
	if err != nil {
		return err
	}
	return &Float{Value: total}
}

func mathAvg(args ...Object) Object {
	total, err := foldNumbers(args)
	if err != nil {
		return err
	}
	return &Float{Value: total / float64(len(args))}
}

func mathMin(args ...Object) Object {
	best := math.Inf(1)
	for _, arg := range args {
		v, ok := numericValue(arg)
		if !ok {
			return typeError("expected a number, got %s", arg.Type())
		}
		best = math.Min(best, v)
	}
	return &Float{Value: best}
}

func mathMax(args ...Object) Object {
	best := math.Inf(-1)
	for _, arg := range args {
		v, ok := numericValue(arg)
		if !ok {
			return typeError("expected a number, got %s", arg.Type())
		}
		best = math.Max(best, v)
	}
	return &Float{Value: best}
}

func mathPercentage(args ...Object) Object {
	part, ok := numericValue(args[0])
	if !ok {
		return typeError("expected a number, got %s", args[0].Type())
	}
	whole, ok := numericValue(args[1])
	if !ok {
		return typeError("expected a number, got %s", args[1].Type())
	}
	if whole == 0 {
		return newRenderError(0, 0, "division by zero: the whole is 0")
	}
	return &Float{Value: part / whole * 100}
}

func foldNumbers(args []Object) (float64, *Error) {
	var total float64
	for _, arg := range args {
		v, ok := numericValue(arg)
		if !ok {
			return 0, typeError("expected a number, got %s", arg.Type())
		}
		total += v
	}
	return total, nil
}
