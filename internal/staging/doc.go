// Package staging materializes matched pairs and leftover media into the
// two output collections, numbering entries in processing order and
// recording every decision in the run manifests.
package staging
