// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth manages the bearer-token session against the identity
collaborator.

A Session caches the validated token in a file (0600) so it survives
restarts, and exposes it as a store.TokenSource for the Sheets and Drive
clients.

# Lifecycle

	session := auth.NewSession(cfg.TokenFile)
	connected, err := session.Restore(ctx)   // reuse cached token if still valid
	email, err := session.Connect(ctx, tok)  // validate and cache a fresh token
	session.Disconnect()                     // explicit sign-out
	session.Invalidate()                     // remote store rejected the token

Restore and Connect probe the token against the tokeninfo endpoint and
fetch the user's email from userinfo; a rejected token yields
ErrTokenExpired and is never cached. Invalidation clears the token but
never touches in-memory tally state.
*/
package auth
