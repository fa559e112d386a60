// Package publish uploads finished batch outputs and the batch manifest to an
// S3 bucket. Objects are keyed {prefix}/{batch id}/{file name}; the default
// AWS credential chain is used.
package publish
