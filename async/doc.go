// Package async provides a generic Future for operations that must not
// block or fail synchronously at the call site.
//
//	fut := async.Go(ctx, func(ctx context.Context) (*Result, error) {
//	    return backend.Transcribe(ctx, req)
//	})
//	fut.OnComplete(func(r *Result, err error) { ... })
//	r, err := fut.Await(ctx)
package async
