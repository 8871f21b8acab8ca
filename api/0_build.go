package api

import (
	"context"

	"github.com/fulldump/box"

	"github.com/fulldump/percoladb/service"
)

func Build(s service.Servicer, version string) *box.B {

	b := box.NewBox()

	b.Resource("/_indexes").
		WithActions(
			box.Get(listIndexes),
		)

	b.Resource("/{indexName}").
		WithActions(
			box.Put(createIndex),
			box.Get(getIndex),
			box.Delete(deleteIndex),
		)

	// Declared before the {typeName} sibling so the reserved namespace wins
	// the route.
	b.Resource("/{indexName}/_percolator/{queryId}").
		WithActions(
			box.Put(registerQuery),
			box.Delete(unregisterQuery),
		)

	b.Resource("/{indexName}/{typeName}/_percolate").
		WithActions(
			box.Get(percolate),
			box.Post(percolate),
		)

	b.WithInterceptors(
		injectServicer(s),
	)

	return b
}

func injectServicer(s service.Servicer) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			next(SetServicer(ctx, s))
		}
	}
}
