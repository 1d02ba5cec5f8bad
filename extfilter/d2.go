package extfilter

import (
	"context"
	"fmt"
	"sync"

	"oss.terrastruct.com/d2/d2graph"
	"oss.terrastruct.com/d2/d2layouts/d2dagrelayout"
	"oss.terrastruct.com/d2/d2lib"
	"oss.terrastruct.com/d2/d2renderers/d2svg"
	"oss.terrastruct.com/d2/d2themes/d2themescatalog"
	"oss.terrastruct.com/d2/lib/textmeasure"
)

// D2 renders the body of ':d2' filters as an inline SVG diagram.
// The SVG is produced by the embedded D2 processor, with the dagre layout.
type D2 struct {
	// ThemeID selects the D2 theme, the neutral default if zero
	ThemeID int64

	once     sync.Once
	ruler    *textmeasure.Ruler
	rulerErr error

	// The ruler can not be used concurrently
	mu sync.Mutex
}

func (d *D2) Name() string { return "D2" }

func (d *D2) Available() bool {
	d.init()
	return d.rulerErr == nil
}

func (d *D2) init() {
	d.once.Do(func() {
		d.ruler, d.rulerErr = textmeasure.NewRuler()
	})
}

func (d *D2) Render(text string) (string, error) {
	d.init()
	if d.rulerErr != nil {
		return "", fmt.Errorf("creating text ruler: %w", d.rulerErr)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	defaultLayout := func(ctx context.Context, g *d2graph.Graph) error {
		return d2dagrelayout.Layout(ctx, g, nil)
	}

	diagram, _, err := d2lib.Compile(context.Background(), text, &d2lib.CompileOptions{
		Layout: defaultLayout,
		Ruler:  d.ruler,
	})
	if err != nil {
		return "", fmt.Errorf("compiling diagram: %w", err)
	}

	themeID := d.ThemeID
	if themeID == 0 {
		themeID = d2themescatalog.NeutralDefault.ID
	}

	body, err := d2svg.Render(diagram, &d2svg.RenderOpts{
		Pad:     d2svg.DEFAULT_PADDING,
		ThemeID: themeID,
	})
	if err != nil {
		return "", fmt.Errorf("rendering diagram: %w", err)
	}

	return string(body), nil
}
