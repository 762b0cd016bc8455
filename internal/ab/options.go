package ab

import (
	"fmt"
	"strconv"
)

const (
	// TimeLimitRequests is the request count ab implies when -t is given.
	TimeLimitRequests = 50000

	DefaultMethod      = "GET"
	DefaultContentType = "text/plain"
	DefaultTimeout     = 30
	DefaultVerbosity   = 2

	// Unknown marks report fields nothing has measured.
	Unknown = "?"
)

// Options is the parsed form of an ab command line.
//
// Fields in the first block shape the generated project. The second block
// is accepted for compatibility with existing invocations and has no effect.
type Options struct {
	URL         string
	Requests    int
	Concurrency int
	TimeLimit   *int
	Method      string
	Headers     []string
	Cookies     []string
	BasicAuth   string
	UseHead     bool
	PostFile    string
	PutFile     string

	Timeout            int
	WindowSize         *int
	BindAddress        string
	ContentType        string
	Verbosity          int
	PrintHTML          bool
	TableAttrs         string
	TRAttrs            string
	TDAttrs            string
	ProxyAuth          string
	Proxy              string
	Version            bool
	KeepAlive          bool
	NoPercentiles      bool
	NoConfidence       bool
	NoProgress         bool
	VariableLength     bool
	GnuplotFile        string
	CSVFile            string
	IgnoreSocketErrors bool
	DisableSNI         bool
	CipherSuite        string
	TLSProtocol        string
	Help               bool

	// Derived
	Duration string
	Target   ParsedURL

	// Filled by a probe when one runs; Unknown otherwise.
	ServerHeader  string
	TLSVersion    string
	RequestLength string
}

func defaults() *Options {
	return &Options{
		Requests:      1,
		Concurrency:   1,
		Method:        DefaultMethod,
		Timeout:       DefaultTimeout,
		ContentType:   DefaultContentType,
		Verbosity:     DefaultVerbosity,
		ServerHeader:  Unknown,
		TLSVersion:    Unknown,
		RequestLength: Unknown,
	}
}

// derive fills Duration and the effective method.
func (o *Options) derive(methodSet bool) {
	if o.TimeLimit != nil {
		o.Requests = TimeLimitRequests
		o.Duration = fmt.Sprintf("%ds", *o.TimeLimit)
	} else {
		o.Duration = fmt.Sprintf("%d iteration", o.Requests)
		if o.Requests != 1 {
			o.Duration += "s"
		}
	}

	if methodSet {
		return
	}
	switch {
	case o.UseHead:
		o.Method = "HEAD"
	case o.PostFile != "":
		o.Method = "POST"
	case o.PutFile != "":
		o.Method = "PUT"
	}
}

// EffectivePort is the explicit port, or the scheme default when none was given.
func (o *Options) EffectivePort() int {
	if o.Target.Port != 0 {
		return o.Target.Port
	}
	return DefaultPort(o.Target.Scheme)
}

// ReportFields returns the named report placeholders this invocation provides.
func (o *Options) ReportFields() map[string]string {
	port := Unknown
	if p := o.EffectivePort(); p != 0 {
		port = strconv.Itoa(p)
	}
	return map[string]string{
		"hostname":               o.Target.Hostname,
		"port":                   port,
		"pathand":                o.Target.PathAnd,
		"concurrency":            strconv.Itoa(o.Concurrency),
		"response-header-server": o.ServerHeader,
		"request-tls-protocol":   o.TLSVersion,
		"request-length":         o.RequestLength,
	}
}
