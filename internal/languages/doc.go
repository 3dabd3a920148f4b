// Package languages holds the fixed catalog of languages gemtrans can
// translate between. The catalog is built once at init and never mutated;
// lookups by code are O(1).
package languages
