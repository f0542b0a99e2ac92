// Package embedder turns batches of chunk texts into embedding vectors,
// resiliently, through one or more remote providers.
//
// # Providers
//
// A Provider is a thin capability: a name, a default model, and an Embed
// call. Two implementations exist:
//
//   - OpenAI (primary; default model text-embedding-3-small)
//   - Jina AI (secondary; default model jina-embeddings-v3)
//
// The Gateway holds an ordered list of configured providers. Which
// providers are configured, and their order, follows from credentials:
// an explicit EMBEDDING_PROVIDER override wins, otherwise OpenAI is
// preferred when its key is present, otherwise Jina. With no credentials
// at all, construction fails with types.ErrNoProviderConfigured before
// any network call is attempted.
//
// # Retry and failover
//
// Each provider gets up to MaxAttempts tries (default 6) for a batch.
// Only transient failures are retried: HTTP 429, any 5xx, or a quota
// error code. Between attempts the gateway backs off exponentially from
// 1s, doubling to a 20s cap, plus up to 250ms of jitter. A non-transient
// failure (bad key, malformed request) aborts immediately.
//
// When a provider exhausts its attempts the gateway fails over to the
// next configured provider using that provider's own default model. If
// every provider is exhausted, the last error propagates.
//
// # Ordering
//
// EmbedBatch guarantees result[i] is the embedding for texts[i]. Batch
// partitioning is the caller's concern; the ingestion orchestrator sends
// fixed-size batches sequentially to keep rate limits predictable.
package embedder
