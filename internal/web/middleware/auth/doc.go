// Package auth provides the session middleware of the web application.
//
// The middleware resolves the session id of a request (session cookie or
// "Authorization: Bearer" header), loads the session, re-reads the user from
// the database and stores the id of an active user in fiber.Locals under
// auth.LocalsUserID. It only fails a request (500) when the user cannot be
// loaded; otherwise routes decide themselves whether they need a user,
// through auth.RequirePermission or auth.RequireAuthenticated.
//
// Usage:
//
//	app.Use(authmiddleware.New(auth.NewLocalProvider(db)))
package auth
