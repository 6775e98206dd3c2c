package checkout

import (
	"context"
	"errors"
	"fmt"
)

// Opener shows the external checkout page to the user.
type Opener interface {
	Open(ctx context.Context, url string) error
}

type OpenerFunc func(ctx context.Context, url string) error

func (f OpenerFunc) Open(ctx context.Context, url string) error { return f(ctx, url) }

// FirstOf tries each opener in turn, e.g. an in-app tab then the system browser.
func FirstOf(openers ...Opener) Opener {
	return OpenerFunc(func(ctx context.Context, url string) error {
		var errs []error
		for _, o := range openers {
			err := o.Open(ctx, url)
			if err == nil {
				return nil
			}
			errs = append(errs, err)
		}
		if len(errs) == 0 {
			return fmt.Errorf("no opener configured for %s", url)
		}
		return errors.Join(errs...)
	})
}
