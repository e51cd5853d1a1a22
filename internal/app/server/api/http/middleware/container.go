package middleware

import "github.com/danielgtaylor/huma/v2"

// Container копит middleware для очередной группы операций
type Container struct {
	items huma.Middlewares
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Add(mw ...func(huma.Context, func(huma.Context))) *Container {
	c.items = append(c.items, mw...)
	return c
}

// GetAllAndClear отдает накопленные middleware и очищает контейнер
func (c *Container) GetAllAndClear() huma.Middlewares {
	out := c.items
	c.items = nil
	if out == nil {
		out = huma.Middlewares{}
	}
	return out
}
