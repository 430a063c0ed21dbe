// Package llm provides the text and image generation collaborators used by
// the playground apps.
//
// # Overview
//
// Every page and command talks to a [Provider], never to a vendor SDK. A
// Provider is constructed once per process by [NewProvider] and passed to
// whatever needs it; there is no package-level client.
//
//	┌──────────────┐
//	│ llm package  │  ← Provider / ImageGenerator interfaces
//	│              │  ← Factory: NewProvider(), NewImageGenerator()
//	└──────┬───────┘
//	       │
//	       ├──────────────┬───────────────┬──────────────┐
//	┌──────▼──────┐ ┌─────▼──────┐ ┌──────▼──────┐ ┌─────▼──────┐
//	│ llm/ollama  │ │ langchaingo│ │ genai       │ │ llm/fake   │
//	│ (local)     │ │ openai,    │ │ gemini chat │ │ in-memory  │
//	│             │ │ anthropic  │ │ + imagen    │ │ test double│
//	└─────────────┘ └────────────┘ └─────────────┘ └────────────┘
//
// # Missing credentials
//
// NewProvider returns an error wrapping [ErrNotConfigured] when the selected
// provider has no API key. Callers treat that as "generation disabled" and
// keep running:
//
//	provider, err := llm.NewProvider(ctx, cfg, logger)
//	if errors.Is(err, llm.ErrNotConfigured) {
//	    // render a configuration hint instead of a form
//	}
//
// # Test doubles
//
// Tests and offline demos pick [fake.Provider] explicitly. Nothing in this
// package swaps implementations behind the caller's back.
package llm
