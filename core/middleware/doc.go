// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key). An empty key disables it.
//   - rayid: tags every request with a ray id, stored in fiber locals and
//     echoed in the X-Ray-ID response header so logs can be correlated.
//
// Register rayid first so every later log line carries the id.
package middleware
