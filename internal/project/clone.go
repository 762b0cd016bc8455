package project

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := &Project{Name: p.Name}

	if p.Servers != nil {
		c.Servers = make([]Server, len(p.Servers))
		for i, s := range p.Servers {
			if s.Port != nil {
				port := *s.Port
				s.Port = &port
			}
			c.Servers[i] = s
		}
	}
	if p.Scenarios != nil {
		c.Scenarios = make([]Scenario, len(p.Scenarios))
		for i, s := range p.Scenarios {
			c.Scenarios[i] = s.clone()
		}
	}
	if p.Populations != nil {
		c.Populations = make([]Population, len(p.Populations))
		for i, pop := range p.Populations {
			pop.UserPaths = append([]PathShare(nil), pop.UserPaths...)
			c.Populations[i] = pop
		}
	}
	if p.UserPaths != nil {
		c.UserPaths = make([]UserPath, len(p.UserPaths))
		for i, u := range p.UserPaths {
			c.UserPaths[i] = UserPath{Name: u.Name, Actions: Actions{Steps: cloneSteps(u.Actions.Steps)}}
		}
	}
	if p.Includes != nil {
		c.Includes = append([]string(nil), p.Includes...)
	}
	return c
}

func (s Scenario) clone() Scenario {
	out := Scenario{Name: s.Name}
	if s.Populations != nil {
		out.Populations = make([]ScenarioPopulation, len(s.Populations))
		for i, sp := range s.Populations {
			if sp.ConstantLoad != nil {
				load := *sp.ConstantLoad
				sp.ConstantLoad = &load
			}
			out.Populations[i] = sp
		}
	}
	return out
}

func cloneSteps(steps []Step) []Step {
	if steps == nil {
		return nil
	}
	out := make([]Step, len(steps))
	for i, s := range steps {
		if s.Transaction != nil {
			out[i].Transaction = &Transaction{Name: s.Transaction.Name, Steps: cloneSteps(s.Transaction.Steps)}
		}
		if s.Request != nil {
			r := *s.Request
			if r.Headers != nil {
				r.Headers = make([]Header, len(s.Request.Headers))
				for j, h := range s.Request.Headers {
					r.Headers[j] = Header{}
					for k, v := range h {
						r.Headers[j][k] = v
					}
				}
			}
			out[i].Request = &r
		}
	}
	return out
}
