// Package findmyai is the FindMyAI backend: an AI-tool catalog API with a
// trending score calculator and an auto-importer for external catalogs.

// Entry points live under cmd/:

// - cmd/server: the REST API with the background trending scheduler
// - cmd/findmyai: operator CLI for trending, import and admin tasks
// - cmd/migrate: schema migrations
// - cmd/seed: development and test data

// Subpackages under internal/:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/repository: Catalog queries and writes
// - internal/auth: Authentication and authorization services
// - internal/trending: Trending score calculation and scheduling
// - internal/importer: Auto-import from Hugging Face, OpenRouter and GitHub
// - internal/enrichment: AI-generated tool profiles (OpenAI, Gemini)
// - internal/pagemeta: Website metadata scraping
// - internal/search: Elasticsearch search with SQL fallback
// - internal/storage: Logo mirroring to S3
// - internal/cache: Redis cache, rate-limit counters and locks
// - internal/middleware: HTTP middleware (auth, rate limiting, metrics, tracing)
// - internal/container: Service wiring shared by the server and the CLI

// See the individual package documentation for detailed API reference.
package findmyai
