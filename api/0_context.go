package api

import (
	"context"

	"github.com/fulldump/percoladb/service"
)

const ContextServicerKey = "9c1be472-64f2-11ee-8c99-0242ac120002"

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	return ctx.Value(ContextServicerKey).(service.Servicer)
}
