package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: generates the PDF for a
// completed sale and, when the customer left an email, enqueues an
// email job with the attachment.

import (
	"context"
	"encoding/json"
	"fmt"

	"bizledger/internal/infra"
	"bizledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	SaleID        string  `json:"sale_id"`
	CustomerEmail *string `json:"customer_email,omitempty"`
}

type ReceiptWorker struct {
	sales      repository.SaleRepository
	dispatcher *Dispatcher
	storeName  string
	storage    string
}

func NewReceiptWorker(sales repository.SaleRepository, dispatcher *Dispatcher, storeName, storagePath string) *ReceiptWorker {
	return &ReceiptWorker{
		sales:      sales,
		dispatcher: dispatcher,
		storeName:  storeName,
		storage:    storagePath,
	}
}

func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Malformed payloads never succeed; don't requeue them.
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil
	}
	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("receipt_worker: invalid sale_id")
		return nil
	}

	sale, err := w.sales.FindByID(ctx, saleID)
	if err != nil {
		return fmt.Errorf("receipt_worker: load sale %s: %w", payload.SaleID, err)
	}

	pdfPath, err := infra.GenerateReceiptPDF(sale, w.storeName, w.storage)
	if err != nil {
		return fmt.Errorf("receipt_worker: generate pdf: %w", err)
	}
	log.Info().Str("pdf", pdfPath).Str("sale_id", payload.SaleID).Msg("receipt_worker: PDF generated")

	if payload.CustomerEmail != nil && *payload.CustomerEmail != "" {
		emailJob := EmailJobPayload{
			ToEmail: *payload.CustomerEmail,
			Subject: fmt.Sprintf("Your receipt — Sale #%d", sale.Number),
			Body:    fmt.Sprintf("Thank you for your purchase.\nTotal: $%s", sale.Total.StringFixed(2)),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *payload.CustomerEmail).Msg("receipt_worker: failed to enqueue email")
		}
	}
	return nil
}
