// Package aiproxy provides a Go client for the AI Proxy gateway.
//
// The gateway fronts several model providers behind one OpenAI-compatible
// API and adds proxy keys, request logs and rate limits on top. This
// package wraps it with typed methods, a retrying JSON transport and an
// event-stream reader.
//
// # Installation
//
//	go get github.com/tomblancdev/aiproxy-go
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//	    "os"
//
//	    "github.com/tomblancdev/aiproxy-go"
//	)
//
//	func main() {
//	    client, err := aiproxy.NewClient(
//	        aiproxy.WithAPIKey(os.Getenv("AIPROXY_API_KEY")),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    completion, err := client.CreateChatCompletion(context.Background(), &aiproxy.ChatCompletionRequest{
//	        Model: "openai/gpt-4o-mini",
//	        Messages: []aiproxy.ChatMessage{
//	            {Role: aiproxy.RoleUser, Content: "Hello!"},
//	        },
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(completion.Content())
//	}
//
// # Client Configuration
//
// The client is configured with functional options:
//
//	client, err := aiproxy.NewClient(
//	    aiproxy.WithBaseURL("https://gateway.internal"),
//	    aiproxy.WithToken(sessionToken),
//	    aiproxy.WithTimeout(10*time.Second),
//	    aiproxy.WithRetries(5),
//	    aiproxy.WithLogger(hclog.Default()),
//	)
//
// Configuration is fixed at construction. [Client.WithCredentials] and
// [Client.With] return derived clients and leave the original unchanged.
//
// # Retries and Timeouts
//
// Buffered calls ([Client.Do] and everything built on it) are retried on
// server errors (status >= 500) and on network failures, up to
// MaxRetries times, waiting 1s, 2s, 4s, 8s and then 10s between attempts.
// Client errors (4xx) and client timeouts are returned at once. The
// timeout applies to each attempt separately.
//
// # Error Handling
//
// Failed calls return *[Error]:
//
//	key, err := client.GetKey(ctx, "key_123")
//	if err != nil {
//	    var apiErr *aiproxy.Error
//	    if errors.As(err, &apiErr) {
//	        switch {
//	        case apiErr.Status == http.StatusNotFound:
//	            // Handle missing key
//	        case aiproxy.IsTimeout(err):
//	            // Handle timeout
//	        }
//	    }
//	}
//
// A successful response that does not match the expected type yields a
// *[DecodeError] instead.
//
// # Streaming
//
// [Client.Stream] and [Client.StreamChatCompletion] read server-sent events
// incrementally. Streams are never retried and must be closed:
//
//	stream, err := client.StreamChatCompletion(ctx, req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for chunk, err := range stream.All() {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Print(chunk.Content())
//	}
//
// # Thread Safety
//
// The [Client] is safe for concurrent use by multiple goroutines. Streams
// are not; each belongs to the goroutine that opened it.
//
// # API Version Compatibility
//
// This SDK targets gateway API v1.4. Use [Client.Health] and
// [HealthResponse.Compatibility] to check the gateway version at runtime.
package aiproxy
