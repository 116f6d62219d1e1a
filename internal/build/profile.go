package build

import (
	"fmt"
	"sort"
	"strings"
)

// Recognized project types.
type ProjectType string

const (
	Maven ProjectType = "MAVEN"
	NPM   ProjectType = "NPM"
	Pip   ProjectType = "PIP"
)

const (

	// Path inside the environment where the staged archive is placed.
	archivePath = "/app/code.zip"

	// Directory the archive is extracted into before the root search.
	sourceDir = "/app/src"

	// How deep below the extracted tree the marker file may sit.
	markerDepth = 2
)

// Describes how one project type is built: the container image to run in,
// environment overrides for the build process, and the ordered command
// sequence.
//
// Profiles are immutable table entries; callers receive copies and must
// not modify them.
type Profile struct {
	Type     ProjectType // Canonical project type name.
	Image    string      // Fully-qualified image reference.
	Env      []string    // Environment overrides for the build process.
	Commands []string    // Shell commands, executed front to back.
}

// Returns the command sequence as a single shell invocation.
func (p Profile) Script() string {
	return strings.Join(p.Commands, " && ")
}

// Maps each recognized project type to its build profile. The keys double
// as the intake allow-list.
var profiles = map[ProjectType]Profile{
	// The maven image bundles unzip, so Maven needs no setup command.
	Maven: {
		Type:     Maven,
		Image:    "docker.io/library/maven:3.8-openjdk-17",
		Commands: commandSequence("pom.xml", "mvn clean install -DskipTests"),
	},
	NPM: {
		Type:  NPM,
		Image: "docker.io/library/node:20-alpine",
		Env:   []string{"CI=true"},
		Commands: commandSequence("package.json", "npm install && npm run build",
			"apk add --no-cache unzip"),
	},
	Pip: {
		Type:  Pip,
		Image: "docker.io/library/python:3.11-slim",
		Env: []string{
			"DEBIAN_FRONTEND=noninteractive",
			"PIP_ROOT_USER_ACTION=ignore",
		},
		Commands: commandSequence("requirements.txt", "pip install --no-cache-dir -r requirements.txt",
			"apt-get update && apt-get install -y --no-install-recommends unzip && rm -rf /var/lib/apt/lists/*"),
	},
}

// Selects the build profile for a declared project type.
//
// Matching ignores case and surrounding whitespace. Types outside the
// profile table are rejected with [ErrUnsupportedType].
func SelectProfile(projectType string) (Profile, error) {
	t := ProjectType(strings.ToUpper(strings.TrimSpace(projectType)))
	p, ok := profiles[t]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnsupportedType, projectType)
	}
	return p, nil
}

// Reports whether the declared project type is on the allow-list.
func Supported(projectType string) bool {
	_, err := SelectProfile(projectType)
	return err == nil
}

// Returns the canonical project type names in stable order.
func Types() []string {
	names := make([]string, 0, len(profiles))
	for t := range profiles {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

// Assembles the command sequence for a profile.
//
// Optional setup commands (package installs) run first. The staged archive
// is then extracted into the source directory, the project root is located
// by its marker file, and the build command runs inside that root.
func commandSequence(marker, buildCommand string, setup ...string) []string {
	commands := make([]string, 0, len(setup)+3)
	commands = append(commands, setup...)
	commands = append(commands,
		"mkdir -p "+sourceDir,
		"cd /app && unzip -o code.zip -d src && echo 'Unzipped code.' && rm code.zip",
		locateAndBuild(marker, buildCommand),
	)
	return commands
}

// Emits the shell fragment that finds the project root and builds in it.
//
// The root is the directory holding the marker file, searched at most
// markerDepth levels below the extracted tree. When several directories
// carry the marker the shallowest wins, with lexical order breaking ties,
// so the choice does not depend on filesystem enumeration order. A missing
// marker aborts the build with a clear message instead of running the
// build tool in the wrong directory.
//
// The emptiness test and its fallback are grouped in braces so the ||
// binds to the test alone; otherwise a failure of any earlier command in
// the && chain would trip the fallback and be misreported as a missing
// marker.
func locateAndBuild(marker, buildCommand string) string {
	find := fmt.Sprintf(
		`ROOT=$(find . -maxdepth %d -name %s | awk -F/ '{printf "%%d %%s\n", NF, $0}' | sort -n | head -n 1 | cut -d' ' -f2-)`,
		markerDepth, marker,
	)
	guard := fmt.Sprintf(
		`{ [ -n "$ROOT" ] || { echo 'no project root found: %s not present within %d directory levels' >&2; exit 1; }; }`,
		marker, markerDepth,
	)

	return strings.Join([]string{
		"cd " + sourceDir,
		find,
		guard,
		`cd "$(dirname "$ROOT")"`,
		`echo "Building in directory: $(pwd)" && ls -la`,
		buildCommand,
	}, " && ")
}
