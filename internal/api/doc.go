// Package api holds the JSON request and response schemas shared by the REST
// server and the REST client. Request types validate themselves before they
// reach a service.
package api
