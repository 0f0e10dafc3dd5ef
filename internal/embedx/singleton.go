package embedx

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

var (
	initGroup singleflight.Group

	codeOnce   sync.Once
	codeEngine *sidecarEngine

	docsOnce   sync.Once
	docsEngine *sidecarEngine
)

// CodeEngine returns the process-wide code embedding singleton (384-dim).
func CodeEngine() Engine {
	codeOnce.Do(func() {
		codeEngine = newSidecarEngine(KindCode, CodeModelName, CodeModelDimension, 8121)
	})
	return codeEngine
}

// DocsEngine returns the process-wide docs embedding singleton (768-dim).
func DocsEngine() Engine {
	docsOnce.Do(func() {
		docsEngine = newSidecarEngine(KindDocs, DocsModelName, DocsModelDimension, 8122)
	})
	return docsEngine
}

// Initialize performs (or waits for) a single idempotent initialization of
// the given engine, even under concurrent first-use from multiple index
// managers or search calls. Only one caller per engine kind actually
// downloads/spawns the sidecar process; the rest wait on its result.
func Initialize(ctx context.Context, kind Kind, onProgress ProgressFunc) error {
	var eng *sidecarEngine
	switch kind {
	case KindCode:
		CodeEngine()
		eng = codeEngine
	case KindDocs:
		DocsEngine()
		eng = docsEngine
	default:
		return fmt.Errorf("unknown embedding engine kind: %q", kind)
	}

	key := string(kind)
	_, err, _ := initGroup.Do(key, func() (any, error) {
		return nil, eng.initialize(ctx, onProgress)
	})
	return err
}

// CloseAll releases both engine singletons' resources. Intended for process
// shutdown and for tests that need a clean slate.
func CloseAll() {
	if codeEngine != nil {
		_ = codeEngine.Close()
	}
	if docsEngine != nil {
		_ = docsEngine.Close()
	}
}
