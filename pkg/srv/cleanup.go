package srv

import "context"

// closer adapts a plain close function, such as (*sql.DB).Close, to Service.
type closer struct {
	close func() error
}

func (c *closer) Start(ctx context.Context) error {
	return nil
}

func (c *closer) Shutdown(ctx context.Context) error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

func NewCleanup(fn func() error) Service {
	return &closer{close: fn}
}
