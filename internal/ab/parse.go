package ab

import (
	"strconv"
	"strings"
	"unicode"
)

type flagSpec struct {
	value bool
	set   func(o *Options, v string) error
}

func intFlag(dst func(o *Options) *int, name string, min int) flagSpec {
	return flagSpec{value: true, set: func(o *Options, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return malformed("option -"+name+" expects an integer, got "+strconv.Quote(v), nil)
		}
		if n < min {
			return malformed("option -"+name+" must be at least "+strconv.Itoa(min), nil)
		}
		*dst(o) = n
		return nil
	}}
}

func stringFlag(dst func(o *Options) *string) flagSpec {
	return flagSpec{value: true, set: func(o *Options, v string) error {
		*dst(o) = v
		return nil
	}}
}

func listFlag(dst func(o *Options) *[]string) flagSpec {
	return flagSpec{value: true, set: func(o *Options, v string) error {
		*dst(o) = append(*dst(o), v)
		return nil
	}}
}

// headerFlag accepts "Name: value" only.
func headerFlag(dst func(o *Options) *[]string) flagSpec {
	return flagSpec{value: true, set: func(o *Options, v string) error {
		name, _, ok := strings.Cut(v, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return malformed("option -H expects 'Name: value', got "+strconv.Quote(v), nil)
		}
		*dst(o) = append(*dst(o), v)
		return nil
	}}
}

func switchFlag(dst func(o *Options) *bool) flagSpec {
	return flagSpec{set: func(o *Options, _ string) error {
		*dst(o) = true
		return nil
	}}
}

var flags = map[byte]flagSpec{
	'n': intFlag(func(o *Options) *int { return &o.Requests }, "n", 1),
	'c': intFlag(func(o *Options) *int { return &o.Concurrency }, "c", 1),
	't': {value: true, set: func(o *Options, v string) error {
		var t int
		if err := intFlag(func(*Options) *int { return &t }, "t", 1).set(o, v); err != nil {
			return err
		}
		o.TimeLimit = &t
		return nil
	}},
	's': intFlag(func(o *Options) *int { return &o.Timeout }, "s", 0),
	'b': {value: true, set: func(o *Options, v string) error {
		var b int
		if err := intFlag(func(*Options) *int { return &b }, "b", 0).set(o, v); err != nil {
			return err
		}
		o.WindowSize = &b
		return nil
	}},
	'B': stringFlag(func(o *Options) *string { return &o.BindAddress }),
	'p': stringFlag(func(o *Options) *string { return &o.PostFile }),
	'u': stringFlag(func(o *Options) *string { return &o.PutFile }),
	'T': stringFlag(func(o *Options) *string { return &o.ContentType }),
	'v': intFlag(func(o *Options) *int { return &o.Verbosity }, "v", 0),
	'w': switchFlag(func(o *Options) *bool { return &o.PrintHTML }),
	'i': switchFlag(func(o *Options) *bool { return &o.UseHead }),
	'x': stringFlag(func(o *Options) *string { return &o.TableAttrs }),
	'y': stringFlag(func(o *Options) *string { return &o.TRAttrs }),
	'z': stringFlag(func(o *Options) *string { return &o.TDAttrs }),
	'C': listFlag(func(o *Options) *[]string { return &o.Cookies }),
	'H': headerFlag(func(o *Options) *[]string { return &o.Headers }),
	'A': stringFlag(func(o *Options) *string { return &o.BasicAuth }),
	'P': stringFlag(func(o *Options) *string { return &o.ProxyAuth }),
	'X': stringFlag(func(o *Options) *string { return &o.Proxy }),
	'V': switchFlag(func(o *Options) *bool { return &o.Version }),
	'k': switchFlag(func(o *Options) *bool { return &o.KeepAlive }),
	'd': switchFlag(func(o *Options) *bool { return &o.NoPercentiles }),
	'S': switchFlag(func(o *Options) *bool { return &o.NoConfidence }),
	'q': switchFlag(func(o *Options) *bool { return &o.NoProgress }),
	'l': switchFlag(func(o *Options) *bool { return &o.VariableLength }),
	'g': stringFlag(func(o *Options) *string { return &o.GnuplotFile }),
	'e': stringFlag(func(o *Options) *string { return &o.CSVFile }),
	'r': switchFlag(func(o *Options) *bool { return &o.IgnoreSocketErrors }),
	'm': stringFlag(func(o *Options) *string { return &o.Method }),
	'h': switchFlag(func(o *Options) *bool { return &o.Help }),
	'I': switchFlag(func(o *Options) *bool { return &o.DisableSNI }),
	'Z': stringFlag(func(o *Options) *string { return &o.CipherSuite }),
	'f': stringFlag(func(o *Options) *string { return &o.TLSProtocol }),
}

// Parse reads an ab option string such as `-n 12 -c 3 "https://host/path"`.
func Parse(meta string) (*Options, error) {
	tokens, err := tokenize(meta)
	if err != nil {
		return nil, err
	}

	o := defaults()
	methodSet := false
	var positional []string

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !isFlag(tok) {
			positional = append(positional, tok)
			continue
		}

		spec, ok := flags[tok[1]]
		if !ok || strings.HasPrefix(tok, "--") {
			return nil, malformed("unknown option "+tok, nil)
		}

		if !spec.value {
			if len(tok) > 2 {
				return nil, malformed("option "+tok[:2]+" takes no value", nil)
			}
			spec.set(o, "")
			continue
		}

		val := tok[2:]
		if val == "" {
			if i+1 >= len(tokens) || isFlag(tokens[i+1]) {
				return nil, malformed("option "+tok+" requires a value", nil)
			}
			i++
			val = tokens[i]
		}
		if err := spec.set(o, unquote(val)); err != nil {
			return nil, err
		}
		if tok[1] == 'm' {
			methodSet = true
		}
	}

	switch {
	case len(positional) > 1:
		return nil, malformed("unrecognized arguments: "+strings.Join(positional[1:], " "), nil)
	case len(positional) == 0 && o.Help:
		o.derive(methodSet)
		return o, nil
	case len(positional) == 0:
		return nil, malformed("a URL is required", nil)
	}

	o.URL, o.Target, err = parseTarget(positional[0])
	if err != nil {
		return nil, err
	}
	if methodSet {
		o.Method = strings.ToUpper(o.Method)
	}
	o.derive(methodSet)
	return o, nil
}

// isFlag matches "-x..." but not "-" alone or negative numbers.
func isFlag(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	_, err := strconv.Atoi(tok)
	return err != nil
}

// tokenize splits on whitespace outside quotes. Quote characters are kept.
func tokenize(s string) ([]string, error) {
	var (
		tokens []string
		cur    strings.Builder
		quote  rune
		inTok  bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			inTok = true
			cur.WriteRune(r)
		case unicode.IsSpace(r):
			if inTok {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inTok = false
			}
		default:
			inTok = true
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, malformed("unbalanced quote in options", nil)
	}
	if inTok {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
