// Package oauth runs the local browser authorisation flow that links
// vaultsync to a Dropbox app. A short-lived localhost HTTP server
// receives the redirect carrying the authorization code, which is then
// exchanged for the long-lived refresh token the note store uses.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// CallbackServer receives the OAuth redirect on localhost.
type CallbackServer struct {
	mu            sync.Mutex
	port          int
	expectedState string
	codeChan      chan string
	errChan       chan error
	server        *http.Server
	listener      net.Listener
}

// NewCallbackServer creates a callback server for the given port. The
// expectedState ties the callback to the authorisation request that
// started the flow.
func NewCallbackServer(port int, expectedState string) *CallbackServer {
	return &CallbackServer{
		port:          port,
		expectedState: expectedState,
		codeChan:      make(chan string, 1),
		errChan:       make(chan error, 1),
	}
}

// Start begins listening on the configured port. Port 0 picks a free
// port; Port() reports the one actually bound.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.listener = listener
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)
	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	return nil
}

// handleCallback answers the single redirect the provider sends back.
// Whatever happens, the browser gets a page telling the user where
// things stand; the outcome itself travels over the channels.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	code, failure, err := parseRedirect(r.URL.Query(), s.expectedState)
	if err != nil {
		select {
		case s.errChan <- err:
		default:
		}
		writePage(w, "Authorisation failed", failure)
		return
	}

	select {
	case s.codeChan <- code:
	default:
	}
	writePage(w, "Vaultsync is linked", "You can close this window and return to the terminal.")
}

// parseRedirect validates the redirect query. On failure it returns a
// browser-safe message alongside the error for the terminal side.
func parseRedirect(q url.Values, wantState string) (code, failure string, err error) {
	if errParam := q.Get("error"); errParam != "" {
		desc := q.Get("error_description")
		return "", html.EscapeString(desc), fmt.Errorf("authorisation refused: %s - %s", errParam, desc)
	}

	if state := q.Get("state"); state != wantState {
		return "", "Invalid state parameter.", fmt.Errorf("state mismatch: expected %s, got %s", wantState, state)
	}

	if code = q.Get("code"); code == "" {
		return "", "No authorization code received.", errors.New("no authorization code received")
	}

	return code, "", nil
}

// WaitForCode blocks until the authorization code arrives, the flow
// fails, the timeout elapses or ctx is cancelled.
func (s *CallbackServer) WaitForCode(ctx context.Context, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case code := <-s.codeChan:
		return code, nil
	case err := <-s.errChan:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorisation callback: %w", ctx.Err())
	}
}

// Stop shuts down the callback server.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (s *CallbackServer) Port() int {
	return s.port
}

// RedirectURI returns the redirect URI for this callback server. It must
// match a redirect URI registered with the provider exactly.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d/callback", s.port)
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>vaultsync</title>
<style>
  body { display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; background: #1e1e2e; font-family: -apple-system, "Segoe UI", sans-serif; }
  main { background: #181825; border: 1px solid #45475a; border-radius: 12px; padding: 48px 64px; text-align: center; }
  h1 { color: #cdd6f4; font-size: 24px; font-weight: 600; margin: 0 0 8px; }
  p { color: #6c7086; font-size: 16px; margin: 0; }
</style>
</head>
<body>
<main>
  <h1>%s</h1>
  <p>%s</p>
</main>
</body>
</html>
`

func writePage(w http.ResponseWriter, title, message string) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, pageTemplate, title, message)
}

// OpenBrowser opens the default browser to the given URL.
func OpenBrowser(url string) error {
	launchers := map[string][]string{
		"darwin":  {"open"},
		"linux":   {"xdg-open"},
		"windows": {"rundll32", "url.dll,FileProtocolHandler"},
	}

	argv, ok := launchers[runtime.GOOS]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return exec.Command(argv[0], append(argv[1:], url)...).Start()
}

// generateState creates a random state parameter for CSRF protection.
func generateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
