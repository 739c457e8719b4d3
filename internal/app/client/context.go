package client

import "context"

type appKey struct{}

// WithApp кладет приложение в контекст команды
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// FromContext достает приложение, положенное WithApp
func FromContext(ctx context.Context) (*App, bool) {
	app, ok := ctx.Value(appKey{}).(*App)
	return app, ok && app != nil
}
