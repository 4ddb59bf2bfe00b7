package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"
	"go.uber.org/zap"

	"github.com/Faultbox/enroth-render/internal/logger"
)

// PreloadResult summarizes a Preload run.
type PreloadResult struct {
	Decoded  int
	Failed   int
	Bytes    int64
	Duration time.Duration
	Err      error // every failure, joined
}

// Preload decodes names with up to workers goroutines so that later
// DecodeTexture calls from the render loop hit the cache. It stops starting
// new work when ctx is done.
func (d *TextureDecoder) Preload(ctx context.Context, names []string, workers int) PreloadResult {
	if workers < 1 {
		workers = 1
	}
	start := time.Now()
	swg := sizedwaitgroup.New(workers)

	var (
		mu   sync.Mutex
		res  PreloadResult
		errs []error
	)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		swg.Add()
		go func(name string) {
			defer swg.Done()
			p, err := d.DecodeTexture(name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			res.Decoded++
			res.Bytes += int64(len(p.Data))
		}(name)
	}
	swg.Wait()

	res.Duration = time.Since(start)
	res.Err = errors.Join(errs...)
	logger.Info("textures preloaded",
		zap.Int("decoded", res.Decoded),
		zap.Int("failed", res.Failed),
		zap.String("size", humanize.IBytes(uint64(res.Bytes))),
		zap.Duration("took", res.Duration),
	)
	return res
}
