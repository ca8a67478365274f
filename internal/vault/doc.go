// Package vault implements the SecureVault file manager.
//
// A Manager owns the folder tree, the current folder, the search query and
// the sort order. File contents never reach a BlobStore in plaintext: every
// upload is encrypted with the session key and stored as a packed buffer
// (see package secrets), and every download unpacks and decrypts it again.
//
// # Folder Tree
//
// Folders are addressed by slash-separated paths rooted at "/". Each folder
// lists its files and the paths of its direct children. Deleting a folder
// removes every descendant together with the blobs of their files.
//
// # Persistence
//
// Snapshot and Restore convert the tree to and from a Manifest, which
// SaveManifest writes as manifest.toml next to the blob store. The session
// key is not part of the manifest.
//
// # Concurrency
//
// Manager methods are safe for concurrent use. Upload encrypts files in
// parallel up to the configured limit; each file succeeds or fails on its
// own and never aborts the rest of the batch.
package vault
