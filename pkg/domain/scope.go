package domain

// Variable is a declaration inside a scope.
type Variable struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	// Init is the literal initial value. Nil leaves the variable unset.
	Init any `json:"init,omitempty" yaml:"init,omitempty" mapstructure:"init"`
}

// Scope is a named bag of variables.
// Persistent scopes are initialized once per instance; transient scopes are
// re-initialized for every firing.
type Scope struct {
	Name       string     `json:"name" yaml:"name" mapstructure:"name"`
	Persistent bool       `json:"persistent,omitempty" yaml:"persistent,omitempty" mapstructure:"persistent"`
	Variables  []Variable `json:"variables,omitempty" yaml:"variables,omitempty" mapstructure:"variables"`
}

// Initial returns the initial bindings of the scope.
func (s Scope) Initial() map[string]any {
	vars := make(map[string]any, len(s.Variables))
	for _, v := range s.Variables {
		vars[v.Name] = v.Init
	}
	return vars
}
