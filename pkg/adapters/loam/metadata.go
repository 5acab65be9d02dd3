package loam

// ActorMetadata is the frontmatter of an actor document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
// Structured sections stay generic here; they are decoded by the compiler,
// which owns the shorthand forms.
type ActorMetadata struct {
	Name        string `json:"name" mapstructure:"name"`
	Format      any    `json:"format" mapstructure:"format"`
	Description string `json:"description" mapstructure:"description"`

	Ports       []any    `json:"ports" mapstructure:"ports"`
	Scopes      []any    `json:"scopes" mapstructure:"scopes"`
	Conditions  []any    `json:"conditions" mapstructure:"conditions"`
	Transitions []any    `json:"transitions" mapstructure:"transitions"`
	States      []string `json:"states" mapstructure:"states"`
	Start       string   `json:"start" mapstructure:"start"`
}
