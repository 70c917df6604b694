package engine

import (
	"context"

	"github.com/use-agent/webstruct/models"
)

// Renderer loads a page in a real browser. scraper.Scraper implements it.
type Renderer interface {
	Render(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// BrowserEngine adapts a Renderer to the Engine interface. The stealth
// variant always injects the evasion scripts.
type BrowserEngine struct {
	renderer     Renderer
	forceStealth bool
	name         string
}

// NewBrowserEngine creates a BrowserEngine named "browser", or
// "browser-stealth" when forceStealth is set.
func NewBrowserEngine(r Renderer, forceStealth bool) *BrowserEngine {
	name := "browser"
	if forceStealth {
		name = "browser-stealth"
	}
	return &BrowserEngine{renderer: r, forceStealth: forceStealth, name: name}
}

func (e *BrowserEngine) Name() string { return e.name }

func (e *BrowserEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.renderer == nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, e.name+": browser is not available", nil)
	}

	// Clone the request so we don't mutate the caller's copy.
	r := *req
	if e.forceStealth {
		r.Stealth = true
	}

	result, err := e.renderer.Render(ctx, &r)
	if err != nil {
		return nil, err
	}
	result.EngineName = e.name
	return result, nil
}
