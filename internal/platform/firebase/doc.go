// Package firebase implements identity.Provider on top of Firebase
// Authentication. Account creation, token verification and deletion go
// through the Firebase Admin SDK; password sign-in and password reset emails
// go through the Identity Toolkit REST API, which the Admin SDK does not
// expose.
package firebase
