// Package session is the client side of dashboard authentication.
//
// A Client owns the Session: it logs in, restores a stored session at start
// up, attaches the bearer token to outbound requests and recovers once from
// an expired access token by exchanging the refresh token. Everything else
// receives value snapshots through Client.Snapshot.
//
// Tokens are persisted in a TokenStore on top of any fiber.Storage, so the
// same client runs against memory, the gorm backed kvstore or a remote store.
//
//	store := session.NewTokenStore(kvstore.New(db, "session:"))
//	client := session.NewClient(apiURL, store,
//	    session.WithTimeout(30*time.Second),
//	    session.OnSessionExpired(func() { fmt.Println("please log in again") }),
//	)
//
//	req, _ := client.NewRequest(ctx, http.MethodGet, "/auth/me", nil)
//	resp, err := client.Do(req)
//	if errors.Is(err, session.ErrSessionExpired) {
//	    // back to the login screen
//	}
package session
