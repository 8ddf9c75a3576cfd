package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
)

// BrowserTool drives a headless Chrome session for pages the plain scraper
// cannot handle (scripted content, logins). The browser starts lazily on
// the first action and is reused across steps.
type BrowserTool struct {
	mu            sync.Mutex
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func NewBrowserTool() *BrowserTool {
	return &BrowserTool{}
}

func (b *BrowserTool) Name() string {
	return "browser"
}

func (b *BrowserTool) Description() string {
	return "Control a headless browser: 'navigate' to a URL, extract page 'text', or take a 'screenshot'."
}

func (b *BrowserTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{"navigate", "text", "screenshot"},
				"description": "The browser action to perform.",
			},
			"url": map[string]any{
				"type":        "string",
				"description": "Target URL (only for 'navigate').",
			},
		},
		"required": []string{"action"},
	}
}

func (b *BrowserTool) ensureBrowser() error {
	if b.browserCtx != nil {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("headless", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)

	return chromedp.Run(b.browserCtx)
}

// Close shuts the browser down. Safe to call even if no action ever ran.
func (b *BrowserTool) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	b.browserCtx = nil
	b.allocCtx = nil
}

func (b *BrowserTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Action string `json:"action"`
		URL    string `json:"url"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	// The session is shared, so browser steps serialize even when the
	// executor dispatches them in the same batch.
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureBrowser(); err != nil {
		return "", fmt.Errorf("failed to start browser: %w", err)
	}

	actionCtx, cancel := context.WithCancel(b.browserCtx)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-actionCtx.Done():
		}
	}()

	switch args.Action {
	case "navigate":
		if args.URL == "" {
			return "Error: url is required for navigate", nil
		}
		if err := chromedp.Run(actionCtx, chromedp.Navigate(args.URL)); err != nil {
			return "", fmt.Errorf("navigation failed: %w", err)
		}
		return fmt.Sprintf("Navigated to %s", args.URL), nil

	case "text":
		var html string
		err := chromedp.Run(actionCtx,
			chromedp.ActionFunc(func(ctx context.Context) error {
				node, err := dom.GetDocument().Do(ctx)
				if err != nil {
					return err
				}
				html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
				return err
			}),
		)
		if err != nil {
			return "", fmt.Errorf("failed to read page: %w", err)
		}
		if len(html) > 50000 {
			html = html[:50000] + "\n... (truncated) ..."
		}
		return strings.TrimSpace(html), nil

	case "screenshot":
		var buf []byte
		if err := chromedp.Run(actionCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
			return "", fmt.Errorf("screenshot failed: %w", err)
		}
		return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf), nil

	default:
		return "Invalid action. Use 'navigate', 'text', or 'screenshot'.", nil
	}
}
