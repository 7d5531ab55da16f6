package cli

import (
	"fmt"
	"os/exec"
	"runtime"
)

// BrowserOpener opens URLs such as payment checkout pages.
type BrowserOpener interface {
	Open(url string) error
}

// systemBrowser opens URLs with the platform's default handler.
type systemBrowser struct {
	goos string
}

// Compile-time interface check.
var _ BrowserOpener = (*systemBrowser)(nil)

// NewSystemBrowser returns a BrowserOpener for the running platform.
func NewSystemBrowser() BrowserOpener {
	return &systemBrowser{goos: runtime.GOOS}
}

func (b *systemBrowser) command(url string) (string, []string) {
	switch b.goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// Open starts the handler without waiting for it to exit.
func (b *systemBrowser) Open(url string) error {
	name, args := b.command(url)
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}
