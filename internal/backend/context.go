package backend

import "context"

type accessTokenKey struct{}

// WithAccessToken attaches the signed-in user's access token so row-level
// security on the hosted service applies to data calls made with ctx.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessToken returns the token stored by WithAccessToken, if any.
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}
