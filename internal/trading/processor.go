package trading

import (
	"context"
	"log"
	"sync"

	"github.com/atharvakonge/paper-trading-api/internal/models"
)

// TradeOutcome is what a queued trade resolves to.
type TradeOutcome struct {
	Result *models.TransactionResult
	Err    error
}

type tradeJob struct {
	ctx      context.Context
	userID   int64
	symbol   string
	amount   float64
	resultCh chan TradeOutcome
}

// TradeProcessor runs buys through a bounded worker pool. Combined with
// the service's per-user locks this keeps same-user trades serialized
// while different users execute in parallel.
type TradeProcessor struct {
	svc     *Service
	workers int
	queue   chan tradeJob
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewTradeProcessor creates a processor with the given worker count.
func NewTradeProcessor(svc *Service, workers int) *TradeProcessor {
	return &TradeProcessor{
		svc:     svc,
		workers: workers,
		queue:   make(chan tradeJob, 100),
		stopCh:  make(chan struct{}),
	}
}

// Start launches the worker pool.
func (tp *TradeProcessor) Start() {
	for i := 0; i < tp.workers; i++ {
		tp.wg.Add(1)
		go tp.worker(i)
	}
	log.Printf("started %d trade workers", tp.workers)
}

// Stop drains the workers and waits for them to exit.
func (tp *TradeProcessor) Stop() {
	close(tp.stopCh)
	tp.wg.Wait()
	log.Println("trade processor stopped")
}

func (tp *TradeProcessor) worker(id int) {
	defer tp.wg.Done()

	for {
		select {
		case <-tp.stopCh:
			return
		case job := <-tp.queue:
			result, err := tp.svc.Buy(job.ctx, job.userID, job.symbol, job.amount)
			if err != nil {
				log.Printf("worker %d: buy %s for user %d failed: %v", id, job.symbol, job.userID, err)
			}
			job.resultCh <- TradeOutcome{Result: result, Err: err}
		}
	}
}

// SubmitBuy queues a buy and blocks until a worker resolves it.
func (tp *TradeProcessor) SubmitBuy(ctx context.Context, userID int64, symbol string, amount float64) TradeOutcome {
	resultCh := make(chan TradeOutcome, 1)
	tp.queue <- tradeJob{
		ctx:      ctx,
		userID:   userID,
		symbol:   symbol,
		amount:   amount,
		resultCh: resultCh,
	}
	return <-resultCh
}
