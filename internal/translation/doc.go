// Package translation sends translation prompts to a generative-language
// service. The default backend talks to the Gemini REST API directly; the
// genai SDK and OpenAI chat completions are available as alternatives, and
// any backend can be wrapped in a circuit breaker.
package translation
