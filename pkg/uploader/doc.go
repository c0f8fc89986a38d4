/*
Package uploader is documented on the Uploader type in uploader.go:
a single retried HTTP PUT to a presigned URL.
*/
package uploader
