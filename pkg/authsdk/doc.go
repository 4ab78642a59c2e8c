/*
Package authsdk is a Go client for the tenancy service.

SDKClient covers the public endpoints: health checks and the session
endpoints. Login returns a Session, which carries the token pair and
attaches the access token to every protected call:

	client := authsdk.NewSDKClient("https://tenancy.example.com")

	session, err := client.Login(ctx, "ada@example.com", "correct horse")
	if err != nil {
		if authsdk.IsUnauthorized(err) {
			// wrong email or password
		}
		return err
	}
	defer session.Logout(ctx)

	me, err := session.Me(ctx)

Access tokens live for an hour. A Session reads the expiry from the token
and exchanges its refresh token for a new access token shortly before then.
The refresh token itself does not change.

Failures are returned as *APIError carrying the status code and the plain
text body the server sent.

Sessions are safe for concurrent use.
*/
package authsdk
