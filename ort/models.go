package ort

import "gopkg.in/yaml.v3"

// ScanDocument is the subset of an ORT analyzer result the curator reads.
type ScanDocument struct {
	Repository Repository `yaml:"repository"`
	Analyzer   Analyzer   `yaml:"analyzer"`

	// Digest is the xxh3 fingerprint of the raw document bytes.
	Digest string `yaml:"-"`
}

type Repository struct {
	VcsProcessed VcsInfo `yaml:"vcs_processed"`
}

type VcsInfo struct {
	Type     string `yaml:"type"`
	URL      string `yaml:"url"`
	Revision string `yaml:"revision"`
	Path     string `yaml:"path"`
}

type Analyzer struct {
	StartTime   string         `yaml:"start_time"`
	EndTime     string         `yaml:"end_time"`
	Environment Environment    `yaml:"environment"`
	Config      AnalyzerConfig `yaml:"config"`
	Result      AnalyzerResult `yaml:"result"`
}

type Environment struct {
	OrtVersion  string `yaml:"ort_version"`
	JavaVersion string `yaml:"java_version"`
	OS          string `yaml:"os"`
}

type AnalyzerConfig struct {
	AllowDynamicVersions   bool     `yaml:"allow_dynamic_versions"`
	EnabledPackageManagers []string `yaml:"enabled_package_managers"`
}

type AnalyzerResult struct {
	Projects []Project `yaml:"projects"`
	Packages []Package `yaml:"packages"`
	// Issues maps a project identifier to the problems recorded while analyzing it.
	Issues map[string][]Issue `yaml:"issues"`
}

type Project struct {
	ID                 string   `yaml:"id"`
	DefinitionFilePath string   `yaml:"definition_file_path"`
	DeclaredLicenses   []string `yaml:"declared_licenses"`
	HomepageURL        string   `yaml:"homepage_url"`
}

type Package struct {
	ID               string   `yaml:"id"`
	Purl             string   `yaml:"purl"`
	DeclaredLicenses []string `yaml:"declared_licenses"`
	Description      string   `yaml:"description"`
	HomepageURL      string   `yaml:"homepage_url"`
}

// UnmarshalYAML accepts both the flat package layout and the older
// `{package: {...}, curations: [...]}` wrapper.
func (p *Package) UnmarshalYAML(value *yaml.Node) error {
	type plain Package

	var wrapped struct {
		Package *plain `yaml:"package"`
	}
	if err := value.Decode(&wrapped); err != nil {
		return err
	}
	if wrapped.Package != nil {
		*p = Package(*wrapped.Package)
		return nil
	}

	var flat plain
	if err := value.Decode(&flat); err != nil {
		return err
	}
	*p = Package(flat)
	return nil
}

type Issue struct {
	Timestamp string `yaml:"timestamp"`
	Source    string `yaml:"source"`
	Message   string `yaml:"message"`
	Severity  string `yaml:"severity"`
}
