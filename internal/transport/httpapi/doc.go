// Package httpapi exposes the relay over HTTP so any client can stand in for
// the messaging platform.
//
// HTTP API
//
//	POST /v1/users/{id}/start
//	    Queue the welcome notice for {id}.
//
//	POST /v1/users/{id}/join
//	    Ask to be paired. Responds with the outcome, e.g. "queued" or "paired".
//
//	POST /v1/users/{id}/leave
//	    End the current session or leave the queue.
//
//	POST /v1/users/{id}/messages { "body": "..." }
//	    Relay a text message to {id}'s partner. Without a session the message
//	    is dropped and the outcome is "dropped".
//
//	GET /v1/users/{id}/inbox?limit=N
//	    Return up to N queued outbound messages for {id}, oldest first.
//
//	POST /v1/users/{id}/inbox/ack { "count": N }
//	    Drop the first N queued messages for {id}.
//
//	GET /v1/stats      queue length and active pairs
//	GET /healthz       liveness
//	GET /metrics       Prometheus metrics
//
// Responses are JSON. Non-2xx statuses carry {"error": "..."}.
package httpapi
