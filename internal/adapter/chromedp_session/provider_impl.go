package chromedp_session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/user/facility-scraper/internal/entity"
	"github.com/user/facility-scraper/internal/repository"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"

// Provider acquires session cookies by visiting the public search landing
// page in headless Chrome and harvesting whatever cookies the application
// sets. The caller gets an immutable snapshot.
type Provider struct {
	landingURL string
	timeout    time.Duration
	// settle is how long to stay on the page before reading cookies; the
	// application sets them from scripts that run after load.
	settle time.Duration
}

// NewProvider creates a session provider for the given landing page.
func NewProvider(landingURL string, timeout, settle time.Duration) repository.SessionProvider {
	return &Provider{
		landingURL: landingURL,
		timeout:    timeout,
		settle:     settle,
	}
}

// Acquire starts a browser, loads the landing page and returns the resulting
// cookie set. Automation failure or an empty cookie set yields
// ErrSessionUnavailable.
func (p *Provider) Acquire(ctx context.Context) (entity.Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	taskCtx, cancel = context.WithTimeout(taskCtx, p.timeout)
	defer cancel()

	slog.Info("Acquiring session cookies", "url", p.landingURL)

	cookies := make(map[string]string)
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(p.landingURL),
		chromedp.Sleep(p.settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			browserCookies, err := storage.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			for _, c := range browserCookies {
				cookies[c.Name] = c.Value
			}
			return nil
		}),
	)
	if err != nil {
		return entity.Session{}, fmt.Errorf("%w: %v", repository.ErrSessionUnavailable, err)
	}
	if len(cookies) == 0 {
		return entity.Session{}, repository.ErrSessionUnavailable
	}

	slog.Info("Session cookies acquired", "count", len(cookies))
	return entity.Session{Cookies: cookies, AcquiredAt: time.Now()}, nil
}
