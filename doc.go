// Package authflow provides a single-user authentication flow: a process-wide
// session container, pluggable identity backends, a protected dashboard page
// and HTTP helpers to serve them with go-router.
//
// Session container:
//   - Provider owns the shared AuthState (current user, busy flag and session
//     phase). Construct one per process, call Mount once at start-up and pass
//     the instance to every consumer that needs login, register or logout.
//   - Operations are serialized. Login and Logout never return errors, they
//     report outcomes through the Notifier and move the user with the
//     Navigator. Register returns the failure after notifying.
//
// Identity backends:
//   - IdentityBackend is the capability set every backend implements. The
//     backend/mock package persists a fake user in a key-value store, the
//     provider/cognito and provider/auth0 packages talk to managed services.
//     The backend is picked at configuration time.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Provider to describe
//     session restore, login, registration and logout events. Sinks run
//     best-effort (errors are logged) so they never block the flow.
//
// Route filter:
//   - middleware/routefilter classifies requests against protected and
//     auth-flow route sets and always forwards them. Session state lives in
//     the Provider, not in the request, so the filter does not redirect.
package authflow
