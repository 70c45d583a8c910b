package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

const defaultBatchWorkers = 3

type descriptionGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (domain.GenerationResult, error)
}

type descriptionImprover interface {
	Run(ctx context.Context, description string, product domain.ProductInfo, tone domain.ToneStyle) (domain.ImprovementResult, error)
}

// BatchResult aggregates the terminal outcome of every item in a batch.
type BatchResult struct {
	Total     int                `json:"total"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Items     []domain.BatchItem `json:"items"`
}

// BatchGenerateUseCase fans a list of products out to a bounded worker
// pool. One failing item never aborts its siblings, and results come
// back in input order.
type BatchGenerateUseCase struct {
	generator  descriptionGenerator
	improver   descriptionImprover
	maxWorkers int
}

func NewBatchGenerateUseCase(generator descriptionGenerator, improver descriptionImprover, maxWorkers int) *BatchGenerateUseCase {
	if maxWorkers <= 0 {
		maxWorkers = defaultBatchWorkers
	}
	return &BatchGenerateUseCase{
		generator:  generator,
		improver:   improver,
		maxWorkers: maxWorkers,
	}
}

func (uc *BatchGenerateUseCase) Process(
	ctx context.Context,
	products []domain.ProductInfo,
	tone domain.ToneStyle,
	opts domain.GenerationOptions,
) (BatchResult, error) {
	if len(products) == 0 {
		return BatchResult{}, domain.WrapError(domain.ErrInvalidInput, "batch generate", errors.New("empty product list"))
	}

	items := make([]domain.BatchItem, len(products))
	for i, product := range products {
		items[i] = domain.BatchItem{
			ID:          uuid.NewString(),
			ProductName: product.Name,
			Status:      domain.BatchPending,
		}
	}

	sem := make(chan struct{}, uc.maxWorkers)
	var wg sync.WaitGroup
	for i := range products {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			items[idx].Status = domain.BatchProcessing
			uc.processItem(ctx, &items[idx], products[idx], tone, opts)
		}(i)
	}
	wg.Wait()

	result := BatchResult{Total: len(items), Items: items}
	for _, item := range items {
		if item.Status == domain.BatchCompleted {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	return result, nil
}

func (uc *BatchGenerateUseCase) processItem(
	ctx context.Context,
	item *domain.BatchItem,
	product domain.ProductInfo,
	tone domain.ToneStyle,
	opts domain.GenerationOptions,
) {
	generated, err := uc.generator.Generate(ctx, GenerateRequest{
		Product: product,
		Tone:    tone,
		Options: opts,
	})
	if err != nil {
		slog.Warn("batch_item_failed", "item_id", item.ID, "product", product.Name, "error", err)
		item.Status = domain.BatchFailed
		item.Error = err.Error()
		return
	}
	item.Result = &generated

	if opts.AutoImprove && uc.improver != nil {
		improved, err := uc.improver.Run(ctx, generated.ProductDescription, product, tone)
		if err != nil {
			slog.Warn("batch_item_failed", "item_id", item.ID, "product", product.Name, "error", err)
			item.Status = domain.BatchFailed
			item.Result = nil
			item.Error = err.Error()
			return
		}
		item.Improvement = &improved
	}

	item.Status = domain.BatchCompleted
}
