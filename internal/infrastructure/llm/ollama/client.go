package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/thinktj1991/llamareport-retrieval/internal/infrastructure/resilience"
)

// Client embeds corpus chunks and query text through the Ollama embeddings
// API. Large corpora are split into batches and embedded on a bounded
// worker pool; result order always matches input order.
type Client struct {
	baseURL    string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
	batchSize  int
	pool       *ants.Pool
}

type Options struct {
	Timeout            time.Duration
	BatchSize          int
	Concurrency        int
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, embedModel string) (*Client, error) {
	return NewWithOptions(baseURL, embedModel, Options{})
}

func NewWithOptions(baseURL, embedModel string, options Options) (*Client, error) {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	batchSize := options.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	concurrency := options.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, fmt.Errorf("create embed worker pool: %w", err)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
		batchSize:  batchSize,
		pool:       pool,
	}, nil
}

func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Release()
	}
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		offset, batch := start, texts[start:end]

		wg.Add(1)
		if err := c.pool.Submit(func() {
			defer wg.Done()
			embedded, err := c.embedBatch(ctx, batch)
			if err != nil {
				setErr(err)
				return
			}
			copy(vectors[offset:], embedded)
		}); err != nil {
			wg.Done()
			setErr(fmt.Errorf("submit embed batch: %w", err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	request := map[string]any{
		"model": c.embedModel,
		"input": texts,
	}
	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/embed", request, &response, "embed")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.embed", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("embed", err)
	}

	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed result mismatch: %d vectors for %d inputs",
			len(response.Embeddings), len(texts))
	}
	return response.Embeddings, nil
}
