/*
Package blobstore is documented on the BlobStore interface in
blobstore.go; see S3BlobStore and MemoryBlobStore for the two
implementations.
*/
package blobstore
