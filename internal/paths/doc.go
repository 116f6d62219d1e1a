// Provides platform-appropriate paths for the daemon.
//
// All paths follow XDG conventions on Linux and platform-native conventions
// on macOS and Windows, with "kilnd" as the subdirectory under each base
// path. The runtime directory holds the PID file; staged build archives
// live under the cache directory.
package paths
