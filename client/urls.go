package client

// URLBuilder constructs public URLs for an artifact.
type URLBuilder interface {
	// Registry returns the artifact's page on the registry.
	Registry(name, version string) string
	// Download returns the direct download URL for a published version.
	Download(name, version string) string
	// Documentation returns the hosted API documentation URL.
	Documentation(name, version string) string
	// PURL returns the package URL identifier, e.g. pkg:gem/name@version.
	PURL(name, version string) string
}

// BuildURLs returns a map of all non-empty URLs for an artifact.
// Keys are "registry", "download", "docs", and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	result := make(map[string]string)
	if v := urls.Registry(name, version); v != "" {
		result["registry"] = v
	}
	if v := urls.Download(name, version); v != "" {
		result["download"] = v
	}
	if v := urls.Documentation(name, version); v != "" {
		result["docs"] = v
	}
	if v := urls.PURL(name, version); v != "" {
		result["purl"] = v
	}
	return result
}
