package context

import (
	stdctx "context"

	"github.com/julienschmidt/httprouter"
	"shortr/internal/platform/auth"
)

type Key string

const (
	Claims Key = "claims"
	Params Key = "params"
)

func WithParams(ctx stdctx.Context, ps httprouter.Params) stdctx.Context {
	return stdctx.WithValue(ctx, Params, ps)
}

// RouteParam returns the named path parameter, or "" outside a routed request.
func RouteParam(ctx stdctx.Context, name string) string {
	ps, _ := ctx.Value(Params).(httprouter.Params)
	return ps.ByName(name)
}

func WithClaims(ctx stdctx.Context, claims *auth.Claims) stdctx.Context {
	return stdctx.WithValue(ctx, Claims, claims)
}

func ClaimsFrom(ctx stdctx.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(Claims).(*auth.Claims)
	return claims, ok && claims != nil
}
