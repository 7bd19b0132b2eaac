package types

// EnvFreeVars is anything that can report the free type variables visible
// in an inference environment, so Generalize can avoid over-quantifying.
type EnvFreeVars interface {
	FreeVars() []*TVar
}

// Generalize quantifies exactly those free variables of t that are not
// free in env (spec §4.1). Equality-admitting variables keep their flag
// when re-bound by Instantiate.
func (ts *TypeSystem) Generalize(env EnvFreeVars, t Type) Scheme {
	envVars := map[int]bool{}
	for _, v := range env.FreeVars() {
		envVars[v.ID] = true
	}
	var quantified []*TVar
	for _, v := range t.FreeVars() {
		if !envVars[v.ID] {
			quantified = append(quantified, v)
		}
	}
	return Scheme{Vars: quantified, Body: t}
}

// Instantiate replaces each quantified variable of s with a fresh variable,
// preserving the equality flag (spec §4.1).
func (ts *TypeSystem) Instantiate(s Scheme) Type {
	if len(s.Vars) == 0 {
		return s.Body
	}
	subst := make(Subst, len(s.Vars))
	for _, v := range s.Vars {
		subst[v.ID] = ts.FreshVar(v.Eq)
	}
	return s.Body.Apply(subst)
}
