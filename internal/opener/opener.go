// Package opener hands links to the system browser and text to the clipboard.
package opener

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
)

// Opener opens a URL somewhere the user can see it.
type Opener interface {
	Open(rawURL string) error
}

// Clipboard receives exported text.
type Clipboard interface {
	WriteAll(text string) error
}

func init() {
	// Browser launchers print to the terminal, which the TUI owns.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// Browser opens URLs with the platform's default browser.
type Browser struct {
	launch func(string) error
}

// NewBrowser returns an Opener backed by the system browser.
func NewBrowser() *Browser {
	return &Browser{launch: browser.OpenURL}
}

// Open implements Opener. Only http, https and mailto links are opened.
func (b *Browser) Open(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse link %q: %w", rawURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto":
	default:
		return fmt.Errorf("refusing to open %q: unsupported scheme", rawURL)
	}
	if err := b.launch(u.String()); err != nil {
		return fmt.Errorf("open %s: %w", u.Host, err)
	}
	return nil
}

// OpenAll opens every URL and joins the failures.
func OpenAll(o Opener, urls []string) error {
	var errs []error
	for _, u := range urls {
		if err := o.Open(u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not available")
	}
	return clipboard.WriteAll(text)
}
