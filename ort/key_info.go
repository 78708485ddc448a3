package ort

// NotAvailable replaces scalar fields the scan document does not carry.
const NotAvailable = "N/A"

// Unknown replaces per-package and per-issue fields the scan document does not carry.
const Unknown = "Unknown"

// KeyInfo is the flat view of a scan document used to build the prompt.
type KeyInfo struct {
	RepositoryURL   string
	Revision        string
	OrtVersion      string
	ScanStart       string
	ScanEnd         string
	Projects        []Project
	Packages        []Package
	Issues          map[string][]Issue
	PackageManagers []string
}

// ExtractKeyInfo flattens the fields the report needs, substituting
// NotAvailable for missing scalars and empty collections for missing lists.
func ExtractKeyInfo(doc *ScanDocument) KeyInfo {
	if doc == nil {
		doc = &ScanDocument{}
	}

	analyzer := doc.Analyzer
	result := analyzer.Result

	info := KeyInfo{
		RepositoryURL:   orDefault(doc.Repository.VcsProcessed.URL, NotAvailable),
		Revision:        orDefault(doc.Repository.VcsProcessed.Revision, NotAvailable),
		OrtVersion:      orDefault(analyzer.Environment.OrtVersion, NotAvailable),
		ScanStart:       orDefault(analyzer.StartTime, NotAvailable),
		ScanEnd:         orDefault(analyzer.EndTime, NotAvailable),
		Projects:        result.Projects,
		Packages:        result.Packages,
		Issues:          result.Issues,
		PackageManagers: analyzer.Config.EnabledPackageManagers,
	}

	if info.Projects == nil {
		info.Projects = []Project{}
	}
	if info.Packages == nil {
		info.Packages = []Package{}
	}
	if info.Issues == nil {
		info.Issues = map[string][]Issue{}
	}
	if info.PackageManagers == nil {
		info.PackageManagers = []string{}
	}

	return info
}

// ShortRevision returns the first n characters of the revision.
func (k KeyInfo) ShortRevision(n int) string {
	runes := []rune(k.Revision)
	if len(runes) <= n {
		return k.Revision
	}
	return string(runes[:n])
}

// DisplayID returns the package identifier or Unknown.
func (p Package) DisplayID() string {
	return orDefault(p.ID, Unknown)
}

// DisplayLicenses returns the declared licenses or Unknown.
func (p Package) DisplayLicenses() []string {
	if len(p.DeclaredLicenses) == 0 {
		return []string{Unknown}
	}
	return p.DeclaredLicenses
}

// DisplayHomepage returns the homepage or NotAvailable.
func (p Package) DisplayHomepage() string {
	return orDefault(p.HomepageURL, NotAvailable)
}

func (i Issue) DisplaySeverity() string {
	return orDefault(i.Severity, Unknown)
}

func (i Issue) DisplaySource() string {
	return orDefault(i.Source, Unknown)
}

func (i Issue) DisplayMessage() string {
	return orDefault(i.Message, Unknown)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
