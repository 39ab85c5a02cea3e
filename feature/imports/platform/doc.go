// Package platform reads host vulnerability data from a security platform's
// paginated JSON API, either from an uploaded export page or by fetching all
// pages over HTTP.
package platform
