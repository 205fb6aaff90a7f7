package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jefflester/minitrino-sub001/internal/library"
	"github.com/jefflester/minitrino-sub001/internal/model"
)

// minClusterVersion is the oldest engine major version the library's
// modules are maintained against, for both distributions.
const minClusterVersion = 413

// enterpriseSuffix marks licensed engine versions ("443-e"). The
// enterprise distribution refuses to start without it.
const enterpriseSuffix = "-e"

// DependentClusterPrefix disambiguates companion clusters from the cluster
// that declared them.
const DependentClusterPrefix = "dep-"

// MajorVersion extracts the numeric major version: the first three digits
// of the version string ("443-e" -> 443).
func MajorVersion(version string) (int, error) {
	if len(version) < 3 {
		return 0, fmt.Errorf("version %q is too short", version)
	}
	major, err := strconv.Atoi(version[:3])
	if err != nil {
		return 0, fmt.Errorf("version %q does not start with a numeric major version", version)
	}
	return major, nil
}

// CheckClusterVersion enforces the per-distribution minimum version. The
// enterprise distribution additionally requires the licensed suffix.
func CheckClusterVersion(dist, version string) error {
	switch dist {
	case model.DistTrino, model.DistStarburst:
	default:
		return model.NewUserErrorHint(
			"set CLUSTER_DIST to trino or starburst",
			"unknown distribution %q", dist,
		)
	}

	major, err := MajorVersion(version)
	if err != nil {
		return model.NewUserError("invalid %s version %q: %v", dist, version, err)
	}
	if major < minClusterVersion {
		return model.NewUserError(
			"%s version %q is below the minimum supported version %d", dist, version, minClusterVersion,
		)
	}

	if dist == model.DistStarburst && !strings.HasSuffix(version, enterpriseSuffix) {
		return model.NewUserErrorHint(
			fmt.Sprintf("licensed versions carry the %q suffix, e.g. %q", enterpriseSuffix, version+enterpriseSuffix),
			"starburst version %q is missing the enterprise suffix", version,
		)
	}
	return nil
}

// CheckVersionRequirements enforces each module's optional [min] or
// [min, max] version window against the cluster version. A window with
// more than two entries is itself a configuration error.
func CheckVersionRequirements(modules []library.Module, clusterVersion int) error {
	for _, m := range modules {
		window := m.Metadata.Versions
		switch len(window) {
		case 0:
			continue
		case 1:
			if clusterVersion < window[0] {
				return model.NewUserError(
					"module %q requires cluster version >= %d (cluster: %d)", m.Name, window[0], clusterVersion,
				)
			}
		case 2:
			if clusterVersion < window[0] {
				return model.NewUserError(
					"module %q requires cluster version >= %d (cluster: %d)", m.Name, window[0], clusterVersion,
				)
			}
			if clusterVersion > window[1] {
				return model.NewUserError(
					"module %q requires cluster version <= %d (cluster: %d)", m.Name, window[1], clusterVersion,
				)
			}
		default:
			return model.NewUserError(
				"module %q declares an invalid version window %v: expected [min] or [min, max]", m.Name, window,
			)
		}
	}
	return nil
}

// CheckDependentClusters collects the companion clusters the selected
// modules require, renamed with the disambiguating prefix, deduplicated by
// renamed name. The caller provisions these before the cluster itself.
func CheckDependentClusters(modules []library.Module) []model.DependentCluster {
	var dependents []model.DependentCluster
	seen := make(map[string]bool)

	for _, m := range modules {
		for _, dc := range m.Metadata.DependentClusters {
			renamed := dc
			renamed.Name = DependentClusterPrefix + dc.Name
			if seen[renamed.Name] {
				continue
			}
			seen[renamed.Name] = true
			dependents = append(dependents, renamed)
		}
	}
	return dependents
}

// CheckDuplicateConfig scans rendered engine/JVM configuration for repeated
// property keys. For each file containing duplicates it produces exactly
// one warning Finding listing every duplicated key=value occurrence
// verbatim. Duplicates are never an error: the engine resolves its own
// precedence.
func CheckDuplicateConfig(files map[string]string) []Finding {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var findings []Finding
	for _, name := range names {
		if f, ok := duplicatesInFile(name, files[name]); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

// duplicatesInFile groups the file's properties by key and reports keys
// with more than one occurrence.
func duplicatesInFile(name, content string) (Finding, bool) {
	occurrences := make(map[string][]string)
	var keyOrder []string

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, _, found := strings.Cut(trimmed, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if len(occurrences[key]) == 0 {
			keyOrder = append(keyOrder, key)
		}
		occurrences[key] = append(occurrences[key], trimmed)
	}

	var lines []string
	for _, key := range keyOrder {
		if len(occurrences[key]) < 2 {
			continue
		}
		lines = append(lines, occurrences[key]...)
	}
	if len(lines) == 0 {
		return Finding{}, false
	}

	return Finding{
		Severity: SeverityWarning,
		Message: fmt.Sprintf(
			"duplicate configuration properties in %s:\n%s", name, strings.Join(lines, "\n"),
		),
	}, true
}
