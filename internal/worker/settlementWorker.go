package worker

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/rcampos/loanbook/internal/handler"
	"github.com/rcampos/loanbook/internal/models"
	"github.com/rcampos/loanbook/internal/repository"
	"github.com/rcampos/loanbook/internal/stream"
)

// PaymentSettledWorker appends an activity log entry for every settlement
// event. The payment row itself was already written inside the settlement
// transaction; this is the human-readable trail.
func (wk *Worker) PaymentSettledWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: loanPaymentSettledGroupID,
		Topic:   LoanPaymentSettledTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}

	for {
		event := consumer.Poll(100)
		switch e := event.(type) {
		case *kafka.Message:
			var settled handler.SettledPayment
			if err := json.Unmarshal(e.Value, &settled); err != nil {
				wk.Logger.Error("malformed settlement event", "error", err)
				continue
			}

			wk.logSettlement(&settled)
		case kafka.Error:
			wk.Logger.Error("kafka error", "error", e)
		default:
		}
	}
}

func (wk *Worker) logSettlement(settled *handler.SettledPayment) {
	description := fmt.Sprintf("Payment of %.2f (%s) settled, balance now %.2f (%s)",
		settled.Amount, settled.Type, settled.NewBalance, settled.Status)

	_, err := wk.DB.Activity().Insert(&models.ActivityLog{
		UserID:      settled.LenderID,
		Entity:      repository.ActivityLogLoanEntity,
		EntityId:    settled.LoanID,
		Description: description,
	})

	if err != nil {
		wk.Logger.Error("error logging settlement activity", "error", err)
	}
}
