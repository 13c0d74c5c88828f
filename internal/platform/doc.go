// Describes the platforms a native library is built for.
//
// A [Target] wraps an OCI platform descriptor with the architecture string
// used to name per-platform artifacts and a flag recording whether the
// platform is the machine running the build. Platform strings are parsed
// and normalized with containerd's platforms package, so "linux/x86_64"
// and "linux/amd64" name the same target.
//
// Example usage:
//
//	host := platform.Host()
//	t, err := platform.Parse("windows/amd64", host)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(t.ArchitectureString(), t.IsHost()) // windows-x64 false
package platform
