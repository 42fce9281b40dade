package oauth

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/oauth2"

	"github.com/lodestone-hq/vaultsync/internal/logger"
)

// DefaultPort is the localhost port the Dropbox flow listens on. The
// Dropbox app must have http://localhost:53682/callback registered as a
// redirect URI.
const DefaultPort = 53682

// waitTimeout bounds how long the flow waits for the user to approve
// the app in the browser.
const waitTimeout = 5 * time.Minute

// dropboxEndpoint is the OAuth2 endpoint pair for Dropbox.
var dropboxEndpoint = oauth2.Endpoint{
	AuthURL:  "https://www.dropbox.com/oauth2/authorize",
	TokenURL: "https://api.dropboxapi.com/oauth2/token",
}

// DropboxRefreshToken runs the browser authorisation flow for a Dropbox
// app and returns the long-lived refresh token. It starts a localhost
// callback server, sends the user to Dropbox with a PKCE challenge and
// token_access_type=offline, then exchanges the returned code.
func DropboxRefreshToken(ctx context.Context, appKey, appSecret string, out io.Writer) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", err
	}
	verifier := oauth2.GenerateVerifier()

	server := NewCallbackServer(DefaultPort, state)
	if err := server.Start(); err != nil {
		return "", fmt.Errorf("starting callback server: %w", err)
	}
	defer func() {
		if err := server.Stop(); err != nil {
			logger.Debug("stopping callback server: %v", err)
		}
	}()

	cfg := &oauth2.Config{
		ClientID:     appKey,
		ClientSecret: appSecret,
		Endpoint:     dropboxEndpoint,
		RedirectURL:  server.RedirectURI(),
	}

	authURL := cfg.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("token_access_type", "offline"),
	)

	fmt.Fprintf(out, "Opening your browser for Dropbox authorisation.\n")
	fmt.Fprintf(out, "If nothing opens, visit:\n\n  %s\n\n", authURL)
	if err := OpenBrowser(authURL); err != nil {
		logger.Debug("opening browser: %v", err)
	}

	code, err := server.WaitForCode(ctx, waitTimeout)
	if err != nil {
		return "", err
	}

	token, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("exchanging authorization code: %w", err)
	}
	if token.RefreshToken == "" {
		return "", fmt.Errorf("dropbox returned no refresh token")
	}

	return token.RefreshToken, nil
}
