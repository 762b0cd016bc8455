package project

import (
	"encoding/base64"
	"strconv"
	"strings"

	"loadcompose/internal/ab"
)

const (
	DefaultName        = "converted-ab-project"
	DefaultPath        = "Path1"
	DefaultTransaction = "Transaction1"
	DefaultPopulation  = "Population1"
	DefaultScenario    = "Scenario1"
)

// FromOptions builds the single-server, single-path project an ab
// invocation describes.
func FromOptions(o *ab.Options) *Project {
	server := serverFor(o.Target)

	req := &Request{
		URL:     o.Target.PathAnd,
		Server:  server.Name,
		Headers: headersFor(o),
	}
	if o.Method != "" && o.Method != ab.DefaultMethod {
		req.Method = o.Method
	}

	path := UserPath{
		Name: DefaultPath,
		Actions: Actions{Steps: []Step{{
			Transaction: &Transaction{
				Name:  DefaultTransaction,
				Steps: []Step{{Request: req}},
			},
		}}},
	}

	population := Population{
		Name:      DefaultPopulation,
		UserPaths: []PathShare{{Name: path.Name, Distribution: "100%"}},
	}

	scenario := Scenario{
		Name: DefaultScenario,
		Populations: []ScenarioPopulation{{
			Name: population.Name,
			ConstantLoad: &ConstantLoad{
				Users:    o.Concurrency,
				Duration: o.Duration,
			},
		}},
	}

	return &Project{
		Name:        DefaultName,
		Servers:     []Server{server},
		Scenarios:   []Scenario{scenario},
		Populations: []Population{population},
		UserPaths:   []UserPath{path},
	}
}

func serverFor(t ab.ParsedURL) Server {
	s := Server{
		Name:   strings.ReplaceAll(t.Hostname, ".", "_"),
		Scheme: t.Scheme,
		Host:   t.Hostname,
	}

	def := ab.DefaultPort(t.Scheme)
	if t.Port != 0 && t.Port != def {
		s.Name += "_" + strconv.Itoa(t.Port)
	}

	effective := t.Port
	if effective == 0 {
		effective = def
	}
	if effective != 0 && effective != def {
		s.Port = &effective
	}
	return s
}

func headersFor(o *ab.Options) []Header {
	var out []Header
	for _, h := range o.Headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			continue
		}
		out = append(out, Header{strings.TrimSpace(name): strings.TrimSpace(value)})
	}
	if len(o.Cookies) > 0 {
		out = append(out, Header{"Cookie": strings.Join(o.Cookies, "; ")})
	}
	if o.BasicAuth != "" {
		token := base64.StdEncoding.EncodeToString([]byte(o.BasicAuth))
		out = append(out, Header{"Authorization": "Basic " + token})
	}
	return out
}
