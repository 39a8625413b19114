// Package domain contains the account and profile types shared by every
// layer of the service, together with the error taxonomy that the HTTP
// boundary translates into status codes. It has no knowledge of the identity
// provider or document store that back it.
package domain
