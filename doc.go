// Package folderhash fingerprints directory trees and brings one tree in line
// with another by copying.
//
// Every file is hashed by content and every directory by the hashes of its
// children, so two trees can be compared top-down and whole subtrees skipped
// as soon as their hashes match. A hash tree can be saved as a snapshot and
// compared later without walking the directory again.
//
// Key features:
//   - Deterministic Merkle hashes, independent of timestamps and permissions
//   - Built-in exclusion lists for build output and tooling directories
//   - Case-insensitive comparison of live directories, snapshots or trees in memory
//   - Additive synchronization: missing and different files are copied, nothing is deleted
//   - Staged compression into tar.gz, tar.zst or zip instead of touching the target
//
// Example usage:
//
//	client, err := folderhash.New()
//	if err != nil {
//	    return err
//	}
//
//	// Preview what would be copied
//	changes, err := client.Diff(ctx, folderhash.FromPath("release"), folderhash.FromPath("/srv/app"))
//	if err != nil {
//	    return err
//	}
//	report, _ := folderhash.RenderChanges(changes, folderhash.RenderReport)
//	fmt.Println(report)
//
//	// Package the changes instead of copying them
//	_, err = client.Apply(ctx, folderhash.FromPath("release"), folderhash.FromPath("/srv/app"),
//	    folderhash.WithCompression("patch.tar.gz"),
//	    folderhash.WithCompressionLevel(9),
//	)
package folderhash
