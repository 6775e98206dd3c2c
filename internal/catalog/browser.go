package catalog

import (
	"context"
	"sync"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/pkg/logging"
)

type Lister interface {
	List(ctx context.Context, productType string) mo.Result[[]models.Product]
}

type Query struct {
	Type string
	Text string
	Page int
}

// View is one rendered page. Pages == 0 means every page indicator is hidden.
type View struct {
	Items []models.Product
	Page  int
	Pages int
	Total int
}

// Browser holds the catalog fetched once and answers queries against it.
// Each Apply cancels the one before it.
type Browser struct {
	mu     sync.Mutex
	all    []models.Product
	cancel context.CancelFunc
}

func NewBrowser(products []models.Product) *Browser {
	return &Browser{all: products}
}

// Load fetches the full catalog once and replaces the in-memory list.
func (b *Browser) Load(ctx context.Context, l Lister) error {
	res := l.List(ctx, "")
	if res.IsError() {
		return res.Error()
	}
	b.mu.Lock()
	b.all = res.MustGet()
	b.mu.Unlock()
	logging.FromContext(ctx).Info("catalog_loaded", "count", len(res.MustGet()))
	return nil
}

func (b *Browser) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.all)
}

// Render computes a view synchronously. Page is clamped into range.
func (b *Browser) Render(q Query) View {
	b.mu.Lock()
	all := b.all
	b.mu.Unlock()
	return render(all, q)
}

func render(all []models.Product, q Query) View {
	matched := Filter(all, q.Type, q.Text)
	pages := PageCount(len(matched))
	page := q.Page
	switch {
	case pages == 0:
		page = 0
	case page < 1:
		page = 1
	case page > pages:
		page = pages
	}
	return View{
		Items: Page(matched, page),
		Page:  page,
		Pages: pages,
		Total: len(matched),
	}
}

// Apply supersedes any pending query and renders q in the background. The
// returned channel yields the view, or closes empty if a newer Apply or ctx
// cancellation won first.
func (b *Browser) Apply(ctx context.Context, q Query) <-chan View {
	cctx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.cancel = cancel
	all := b.all
	b.mu.Unlock()

	out := make(chan View, 1)
	go func() {
		defer close(out)
		v := render(all, q)
		if cctx.Err() != nil {
			return
		}
		out <- v
	}()
	return out
}

// Close cancels the pending query, if any.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}
