// Package api handles incoming HTTP requests, request validation and
// response formatting for the account endpoints. Handlers translate HTTP
// concerns into identity gateway calls and map the gateway's error kinds
// back to status codes.
package api
