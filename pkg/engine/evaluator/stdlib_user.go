package evaluator

func userBuiltins(opts Options) []*Builtin {
	field := func(key string) BuiltinFunction {
		return func(args ...Object) Object {
			if v, ok := opts.User[key]; ok && v != "" {
				return &String{Value: v}
			}
			return typeError("no %s configured for the current user", key)
		}
	}
	return []*Builtin{
		{Name: "name", MinArgs: 0, MaxArgs: 0, Fn: field("name")},
		{Name: "email", MinArgs: 0, MaxArgs: 0, Fn: field("email")},
	}
}
