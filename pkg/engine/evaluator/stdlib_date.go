package evaluator

import (
	"strings"

	"github.com/goodsign/monday"
)

// patternReplacer translates the template date pattern language into a
// Go reference layout: YYYY, MM, DD, HH, mm, ss.
var patternReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"MM", "01",
	"DD", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
)

func dateBuiltins(opts Options) []*Builtin {
	return []*Builtin{
		{Name: "now", MinArgs: 0, MaxArgs: 0, Fn: func(args ...Object) Object {
			return &String{Value: opts.now().Format("2006-01-02 15:04:05")}
		}},
		{Name: "year", MinArgs: 0, MaxArgs: 0, Fn: func(args ...Object) Object {
			return &Integer{Value: int64(opts.now().Year())}
		}},
		{Name: "month", MinArgs: 0, MaxArgs: 0, Fn: func(args ...Object) Object {
			return &Integer{Value: int64(opts.now().Month())}
		}},
		{Name: "day", MinArgs: 0, MaxArgs: 0, Fn: func(args ...Object) Object {
			return &Integer{Value: int64(opts.now().Day())}
		}},
		{Name: "format", MinArgs: 1, MaxArgs: 1, Fn: func(args ...Object) Object {
			pattern, ok := args[0].(*String)
			if !ok {
				return typeError("pattern must be a string, got %s", args[0].Type())
			}
			return &String{Value: opts.now().Format(patternReplacer.Replace(pattern.Value))}
		}},
		{Name: "long", MinArgs: 0, MaxArgs: 0, Fn: func(args ...Object) Object {
			return &String{Value: monday.Format(opts.now(), "Monday, 2 January 2006", mondayLocale(opts.locale()))}
		}},
	}
}

// mondayLocale converts a BCP-47 tag ("en-US") into monday's
// underscore form, falling back to US English.
func mondayLocale(tag string) monday.Locale {
	candidate := monday.Locale(strings.Replace(tag, "-", "_", 1))
	for _, loc := range monday.ListLocales() {
		if loc == candidate {
			return loc
		}
	}
	return monday.LocaleEnUS
}
