package models

// Collection describes one content collection the panel manages: where
// its document lives, which key its items sit under, and how new record
// ids are prefixed.
type Collection struct {
	Kind      string `yaml:"kind"`
	Label     string `yaml:"label"`
	Path      string `yaml:"path"`
	Container string `yaml:"container"`
	IDPrefix  string `yaml:"id_prefix"`
}
