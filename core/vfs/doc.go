// Package vfs abstracts where cooked content is read from.
//
// The content pipeline only ever sees the FileSystem interface; what backs
// it is wired at startup:
//
//   - Local serves a directory on disk. Every path is immediately readable
//     and never serviced by the network.
//   - Network layers an object storage bucket (MinIO or S3 compatible,
//     via the MinIO Go client) over a local cache directory. A path counts
//     as serviced by the network until its cached copy exists; loaders poll
//     that condition at low priority while NetworkPrefetch downloads in the
//     background. Concurrent prefetches of one path share a download.
//   - Mem is an in-memory implementation for tools and tests, with explicit
//     control over which paths are "remote" and when they arrive.
//
// The ObjectClient interface isolates the MinIO client so remote
// interactions can be mocked (see core/vfs/mocks).
package vfs
