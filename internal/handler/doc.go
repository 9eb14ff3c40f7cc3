// Package handler contains the HTTP handlers for the mealdb API.
//
// WHAT IS A HANDLER?
// In Go, an HTTP handler is anything that implements http.Handler:
//
//	type Handler interface {
//	    ServeHTTP(ResponseWriter, *Request)
//	}
//
// Most of ours are methods with the http.HandlerFunc signature, which chi
// accepts directly.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the request (path params, query, JSON body)
//  2. Call a service with the caller's identity
//  3. Write the response (status, headers, JSON body)
//
// Handlers hold no business rules. Validation, ownership checks and
// hashing live in internal/service; handlers only translate HTTP to calls
// and errors back to status codes.
package handler
