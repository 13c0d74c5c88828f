// Package build hosts a component's build graph and runs it.
//
// A [Project] is created from a manifest. Every declared platform gets a
// link step, a per-variant archive step packaging that platform's binary on
// its own, and a per-variant artifact in the [VariantGroup] output group.
// The primary archive is one more step. On its own the graph would emit one
// small archive per platform and publish each of them.
//
// Merging changes that. [Project.Merge] runs a merge configuration pass
// and applies the resulting plan: the per-variant artifacts leave every
// output group, the per-variant archive steps are disabled, the primary
// archive step is ordered after every link step, and each platform's
// binary is mapped into the primary archive under its resource path.
//
// [Project.Execute] then runs the goal step and its dependencies in order.
// Link commands run through a shell on the build machine. Archives are
// written as zip files with a JAR manifest. Mapped binaries are opened
// when the archive is written, never earlier.
//
// Example usage:
//
//	m, err := manifest.Load("uberjni.yaml")
//	if err != nil {
//	    return err
//	}
//	p, err := build.NewProject(m)
//	if err != nil {
//	    return err
//	}
//	if _, err := p.Merge(); err != nil {
//	    return err
//	}
//	result, err := p.Execute(ctx, p.Archive.Step)
//	if err != nil {
//	    return err
//	}
package build
