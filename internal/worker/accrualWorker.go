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

// InterestAccruedWorker appends an activity log entry for every accrual
// event, so the money trail survives outside the loans table itself.
func (wk *Worker) InterestAccruedWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: loanInterestAccruedGroupID,
		Topic:   LoanInterestAccruedTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}

	for {
		event := consumer.Poll(100)
		switch e := event.(type) {
		case *kafka.Message:
			var accrued handler.AccruedInterest
			if err := json.Unmarshal(e.Value, &accrued); err != nil {
				wk.Logger.Error("malformed accrual event", "error", err)
				continue
			}

			wk.logAccrual(&accrued)
		case kafka.Error:
			wk.Logger.Error("kafka error", "error", e)
		default:
		}
	}
}

func (wk *Worker) logAccrual(accrued *handler.AccruedInterest) {
	description := fmt.Sprintf("Accrued %.2f interest over %d day(s), balance now %.2f",
		accrued.InterestAdded, accrued.DaysProcessed, accrued.NewBalance)

	_, err := wk.DB.Activity().Insert(&models.ActivityLog{
		UserID:      accrued.LenderID,
		Entity:      repository.ActivityLogLoanEntity,
		EntityId:    accrued.LoanID,
		Description: description,
	})

	if err != nil {
		wk.Logger.Error("error logging accrual activity", "error", err)
	}
}
