package rodwrapper

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

const screenshotMaxWidth = 1024

type Config struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
}

func DefaultConfig() Config {
	return Config{
		Headless:   true,
		SlowMotion: 300 * time.Millisecond,
		Timeout:    10 * time.Second,
	}
}

// Browser wraps a launched Chrome instance and the single page the
// agent works on. The launcher handle is kept so the Chrome process is
// actually killed on Close.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
}

func NewBrowser(ctx context.Context, cfg Config) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(url).
		SlowMotion(cfg.SlowMotion).
		MustConnect()

	return &Browser{
		browser:  browser,
		launcher: l,
		page:     browser.MustPage("about:blank"),
		timeout:  cfg.Timeout,
	}, nil
}

// Open navigates the working page to url and waits for it to settle.
func (b *Browser) Open(ctx context.Context, url string) error {
	page := b.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("page load wait failed: %w", err)
	}
	page.WaitIdle(5 * time.Second)
	return nil
}

func (b *Browser) Page() *rod.Page {
	return b.page
}

// Screenshot saves a debug capture of the current page, downscaled so
// the artifact stays small.
func (b *Browser) Screenshot(path string) error {
	imgBytes, err := b.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > screenshotMaxWidth {
		img = imaging.Resize(img, screenshotMaxWidth, 0, imaging.Lanczos)
	}

	if err := imaging.Save(img, path, imaging.JPEGQuality(75)); err != nil {
		return fmt.Errorf("save screenshot: %w", err)
	}
	return nil
}

func (b *Browser) Close() {
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}
