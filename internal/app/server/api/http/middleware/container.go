package middleware

import (
	"github.com/danielgtaylor/huma/v2"
)

// Container собирает мидлвари для группы операций
type Container struct {
	huma.Middlewares
}

func NewContainer() *Container {
	return &Container{
		Middlewares: make(huma.Middlewares, 0),
	}
}

// Add добавляет мидлварь, nil пропускается
func (mc *Container) Add(mw func(ctx huma.Context, next func(huma.Context))) *Container {
	if mw != nil {
		mc.Middlewares = append(mc.Middlewares, mw)
	}
	return mc
}

// Build возвращает копию списка, контейнер можно переиспользовать для следующей группы
func (mc *Container) Build() huma.Middlewares {
	out := make(huma.Middlewares, len(mc.Middlewares))
	copy(out, mc.Middlewares)
	return out
}

// GetAllAndClear возвращает все мидлвари и очищает внутренний список
func (mc *Container) GetAllAndClear() huma.Middlewares {
	result := mc.Middlewares
	mc.Middlewares = nil
	return result
}
