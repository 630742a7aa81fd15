package firebase

import (
	"context"

	"google.golang.org/api/identitytoolkit/v3"
)

// IssueDevToken mints a custom token for uid and exchanges it for an ID token
// the API middleware accepts.
func (f *AuthClient) IssueDevToken(ctx context.Context, uid string) (string, error) {
	customToken, err := f.client.CustomToken(ctx, uid)
	if err != nil {
		return "", err
	}

	resp, err := f.toolkit.Relyingparty.VerifyCustomToken(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyCustomTokenRequest{
		Token:             customToken,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return "", err
	}

	return resp.IdToken, nil
}
