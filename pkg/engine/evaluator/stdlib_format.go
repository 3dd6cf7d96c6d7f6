package evaluator

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

func formatBuiltins(opts Options) []*Builtin {
	return []*Builtin{
		{Name: "currency", MinArgs: 1, MaxArgs: 1, Fn: func(args ...Object) Object {
			v, errObj := argNumber(args[0], "the amount")
			if errObj != nil {
				return errObj
			}
			return formatCurrency(v, opts.currency(), opts.locale())
		}},
		{Name: "number", MinArgs: 1, MaxArgs: 2, Fn: func(args ...Object) Object {
			v, errObj := argNumber(args[0], "the amount")
			if errObj != nil {
				return errObj
			}
			digits := int64(0)
			if len(args) == 2 {
				d, ok := args[1].(*Integer)
				if !ok {
					return typeError("the digit count must be an integer, got %s", args[1].Type())
				}
				if d.Value < 0 {
					return typeError("the digit count must not be negative")
				}
				digits = d.Value
			}
			return formatNumber(v, int(digits), opts.locale())
		}},
		{Name: "percent", MinArgs: 1, MaxArgs: 1, Fn: func(args ...Object) Object {
			v, errObj := argNumber(args[0], "the fraction")
			if errObj != nil {
				return errObj
			}
			return &String{Value: fmt.Sprintf("%.1f%%", v*100)}
		}},
		{Name: "phone", MinArgs: 1, MaxArgs: 1, Fn: formatPhone},
	}
}

// argNumber unwraps a numeric argument, accepting integers and floats.
func argNumber(arg Object, what string) (float64, *Error) {
	switch v := arg.(type) {
	case *Integer:
		return float64(v.Value), nil
	case *Float:
		return v.Value, nil
	default:
		return 0, typeError("%s must be a number, got %s", what, arg.Type())
	}
}

func formatCurrency(value float64, code, locale string) Object {
	cur, err := currency.ParseISO(code)
	if err != nil {
		return typeError("unknown currency code %q", code)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return typeError("unknown locale %q", locale)
	}
	p := message.NewPrinter(tag)
	amount := cur.Amount(value)
	return &String{Value: p.Sprintf("%v", currency.Symbol(amount))}
}

func formatNumber(value float64, digits int, locale string) Object {
	tag, err := language.Parse(locale)
	if err != nil {
		return typeError("unknown locale %q", locale)
	}
	p := message.NewPrinter(tag)
	dec := number.Decimal(value,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits))
	return &String{Value: p.Sprintf("%v", dec)}
}

// formatPhone renders a North American phone number. The input may carry
// punctuation, but must contain exactly ten digits.
func formatPhone(args ...Object) Object {
	raw := args[0].Inspect()
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) != 10 {
		return typeError("a phone number needs exactly 10 digits, got %d in %q", len(d), raw)
	}
	return &String{Value: fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:])}
}
