package project

// Project is the as-code load test description. Field order is the order
// keys appear in the written document.
type Project struct {
	Name        string       `yaml:"name" json:"name"`
	Servers     []Server     `yaml:"servers,omitempty" json:"servers,omitempty"`
	Scenarios   []Scenario   `yaml:"scenarios,omitempty" json:"scenarios,omitempty"`
	Populations []Population `yaml:"populations,omitempty" json:"populations,omitempty"`
	UserPaths   []UserPath   `yaml:"user_paths,omitempty" json:"user_paths,omitempty"`
	Includes    []string     `yaml:"includes,omitempty" json:"includes,omitempty"`
}

type Server struct {
	Name   string `yaml:"name" json:"name"`
	Scheme string `yaml:"scheme" json:"scheme"`
	Host   string `yaml:"host" json:"host"`
	Port   *int   `yaml:"port,omitempty" json:"port,omitempty"`
}

type UserPath struct {
	Name    string  `yaml:"name" json:"name"`
	Actions Actions `yaml:"actions" json:"actions"`
}

type Actions struct {
	Steps []Step `yaml:"steps" json:"steps"`
}

// Step holds exactly one of its fields.
type Step struct {
	Transaction *Transaction `yaml:"transaction,omitempty" json:"transaction,omitempty"`
	Request     *Request     `yaml:"request,omitempty" json:"request,omitempty"`
}

type Transaction struct {
	Name  string `yaml:"name" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Request targets a path on a server referenced by name.
type Request struct {
	URL     string   `yaml:"url" json:"url"`
	Server  string   `yaml:"server" json:"server"`
	Method  string   `yaml:"method,omitempty" json:"method,omitempty"`
	Headers []Header `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// Header is a single-entry map in the document, e.g. `- Accept: text/html`.
type Header map[string]string

type Population struct {
	Name      string      `yaml:"name" json:"name"`
	UserPaths []PathShare `yaml:"user_paths" json:"user_paths"`
}

type PathShare struct {
	Name         string `yaml:"name" json:"name"`
	Distribution string `yaml:"distribution" json:"distribution"`
}

type Scenario struct {
	Name        string               `yaml:"name" json:"name"`
	Populations []ScenarioPopulation `yaml:"populations" json:"populations"`
}

type ScenarioPopulation struct {
	Name         string        `yaml:"name" json:"name"`
	ConstantLoad *ConstantLoad `yaml:"constant_load,omitempty" json:"constant_load,omitempty"`
}

type ConstantLoad struct {
	Users    int    `yaml:"users" json:"users"`
	Duration string `yaml:"duration" json:"duration"`
}

// Server returns the server with the given name.
func (p *Project) Server(name string) (*Server, bool) {
	for i := range p.Servers {
		if p.Servers[i].Name == name {
			return &p.Servers[i], true
		}
	}
	return nil, false
}

func (p *Project) UserPath(name string) (*UserPath, bool) {
	for i := range p.UserPaths {
		if p.UserPaths[i].Name == name {
			return &p.UserPaths[i], true
		}
	}
	return nil, false
}

func (p *Project) Population(name string) (*Population, bool) {
	for i := range p.Populations {
		if p.Populations[i].Name == name {
			return &p.Populations[i], true
		}
	}
	return nil, false
}

// Scenario returns the named scenario, or the first one when name is empty.
func (p *Project) Scenario(name string) (*Scenario, bool) {
	if name == "" && len(p.Scenarios) > 0 {
		return &p.Scenarios[0], true
	}
	for i := range p.Scenarios {
		if p.Scenarios[i].Name == name {
			return &p.Scenarios[i], true
		}
	}
	return nil, false
}

// Requests flattens the request steps of a user path in execution order.
func (u *UserPath) Requests() []Request {
	var out []Request
	var walk func(steps []Step)
	walk = func(steps []Step) {
		for _, s := range steps {
			if s.Request != nil {
				out = append(out, *s.Request)
			}
			if s.Transaction != nil {
				walk(s.Transaction.Steps)
			}
		}
	}
	walk(u.Actions.Steps)
	return out
}
