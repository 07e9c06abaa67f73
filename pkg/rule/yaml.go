package rule

// yamlSignature is the on-disk form of one catalog entry.
type yamlSignature struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category"`
	Extension   string   `yaml:"extension,omitempty"`
	Pattern     string   `yaml:"pattern"`
	Description string   `yaml:"description,omitempty"`
	References  []string `yaml:"references,omitempty"`
}

// yamlCatalogFile represents the top-level structure of a catalog file.
type yamlCatalogFile struct {
	Signatures []yamlSignature `yaml:"signatures"`
}
