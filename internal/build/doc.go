// Package build selects build profiles and runs builds in ephemeral
// environments.
//
// A profile pairs a project type with the container image and shell
// command sequence that build it: extract the staged archive, locate the
// project root by its marker file, and run the type's build tool. The
// profile table is the single source of truth for which project types
// are accepted.
//
// The [Engine] executes one build per call: it provisions an environment
// from the profile's image, copies the archive in, runs the command
// sequence as one shell invocation, and renders everything that happened
// into a textual outcome. The engine never returns an error; rejected
// types, provisioning failures, and non-zero build exits all become
// outcomes. The environment is destroyed before the call returns, on
// every path.
//
// Container operations are delegated to the runtime package through the
// [Provisioner] and [Environment] interfaces.
//
// Example usage:
//
//	eng := build.NewEngine(build.NewContainerdProvisioner(rt))
//
//	outcome := eng.ExecuteBuild(ctx, "/tmp/staged/archive.zip", "MAVEN")
//	fmt.Println(outcome)
package build
