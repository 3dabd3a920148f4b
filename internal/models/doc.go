// Package models lists the generative models available to the configured
// API key, so users can pick one for --model.
package models
