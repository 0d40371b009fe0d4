package service

import (
	"context"
	"runtime"

	"lintang/cityrouter/pkg/concurrent"
	"lintang/cityrouter/pkg/util"
)

type BatchRouteResult struct {
	Index   int
	Request ComputeRoutesRequest
	Routes  []RouteResult
	Err     error
}

type routeQuery struct {
	index int
	req   ComputeRoutesRequest
}

// ComputeRoutesBatch answers several route requests against the loaded simulation on a pool of
// workers. Results come back in request order; a failed request only sets its own Err.
func (uc *NavigationService) ComputeRoutesBatch(ctx context.Context, reqs []ComputeRoutesRequest, numWorkers int) []BatchRouteResult {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	workers := concurrent.NewWorkerPool[routeQuery, BatchRouteResult](numWorkers, len(reqs))
	for i, req := range reqs {
		workers.AddJob(routeQuery{index: i, req: req})
	}
	workers.Close()

	workers.Start(func(q routeQuery) BatchRouteResult {
		routes, err := uc.ComputeRoutes(ctx, q.req)
		return BatchRouteResult{Index: q.index, Request: q.req, Routes: routes, Err: err}
	})
	workers.Wait()

	results := make([]BatchRouteResult, 0, len(reqs))
	for res := range workers.CollectResults() {
		results = append(results, res)
	}
	return util.QuickSortG(results, func(a, b BatchRouteResult) int {
		return a.Index - b.Index
	})
}
