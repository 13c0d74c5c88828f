// Package merge folds per-platform native binaries into a single archive.
//
// A JNI library is built once per target platform. Each build produces a
// variant: a shared library from a link step, a resource path inside the
// archive, and a dedicated per-platform archive step. This package decides,
// for one configuration pass, how those variants become part of one primary
// archive instead of being shipped separately:
//
//   - every declared target platform resolves to exactly one variant;
//   - the per-platform archive artifacts are removed from publication;
//   - the per-platform archive steps are disabled;
//   - the primary archive depends on every variant's link step;
//   - each variant's binary is mapped to its resource path in the archive.
//
// Host variants contribute the file their own link step produces. Other
// variants contribute prebuilt runtime files supplied out of band. An empty
// prebuilt set contributes nothing and is not an error.
//
// [Configure] is a pure function. It prepares a [Plan] and never mutates
// its input, so a resolution failure leaves everything untouched. Applying
// the plan commits all mutations at once. Mappings are references to files
// (a producing step and a path), opened only when the archive is written.
//
// Example usage:
//
//	plan, err := merge.Configure(merge.Input{
//	    Component: "mylib",
//	    Targets:   targets,
//	    Variants:  variants,
//	    Archive:   archive,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := plan.Apply(groups, archive); err != nil {
//	    return err
//	}
package merge
