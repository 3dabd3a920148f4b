// Package processor contains the orchestration behind every gemtrans mode.
// It turns command line flags and configuration into a credential store, a
// translator and a controller, then runs a single translation, a batch
// file, the key management commands, or the GUI.
package processor
