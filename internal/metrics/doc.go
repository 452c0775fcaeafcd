// Package metrics exposes run metrics as a Prometheus textfile.
//
// The CLI writes the file after export or import when --metrics-file is set,
// typically into the node_exporter textfile collector directory.
package metrics
