// Package manifest records which result blocks make up a run and publishes
// them atomically.
//
// # Atomic Protocol
//
// Save follows a two-phase commit:
//
//  1. Write the manifest blob to MANIFEST-NNNNNN.json (N is the version ID)
//  2. Point CURRENT at the new manifest
//
// On local stores step 2 is an atomic rename. On S3 the strong read-after-write
// guarantee makes the update visible immediately, and the DynamoDB commit
// store turns it into a conditional write so concurrent publishers cannot
// overwrite each other.
//
// Load reads CURRENT to find the active manifest, then decodes it.
//
// # Merging
//
// Merge concatenates the block files of a manifest in block order into one
// result CSV, verifying each block's CRC32C and writing the header once.
package manifest
